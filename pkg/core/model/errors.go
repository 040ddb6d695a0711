package model

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a state machine is asked to leave
// a terminal state. The entity is left unchanged.
var ErrInvalidTransition = errors.New("invalid transition")

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Kind string // "shift", "bid", "open bid", "swap request", "template", "roster", "employee"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NewNotFound builds a NotFoundError for the given entity kind and id.
func NewNotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
