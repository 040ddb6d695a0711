package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tmccall/roster-admin/pkg/core/model"
)

func newID() string {
	return uuid.New().String()
}

type roleResolver interface {
	GetRole(ctx context.Context, id string) (*model.Role, error)
}

// resolveRoles loads the role records behind an employee's role ids. A
// role id without a stored record is skipped; such roles carry no
// department scope.
func resolveRoles(ctx context.Context, database roleResolver, employee *model.Employee) ([]model.Role, error) {
	var roles []model.Role
	for _, id := range employee.RoleIDs {
		role, err := database.GetRole(ctx, id)
		if model.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch role %s: %w", id, err)
		}
		roles = append(roles, *role)
	}
	return roles, nil
}
