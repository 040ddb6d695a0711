// Package auth is the thin authorization boundary. Permission checks
// decide which mutating actions are exposed to a user; they are consulted
// at the command surface, never inside the engine's eligibility
// predicates, which answer business-rule questions only.
package auth

// Feature keys guarding mutating actions.
const (
	FeatureExpressInterest = "bids.express"
	FeatureWithdrawBid     = "bids.withdraw"
	FeatureApproveBid      = "bids.approve"
	FeatureRejectBid       = "bids.reject"
	FeatureBatchBids       = "bids.batch"
	FeatureRequestSwap     = "swaps.request"
	FeatureApproveSwap     = "swaps.approve"
	FeatureRejectSwap      = "swaps.reject"
	FeaturePublishTemplate = "roster.publish"
	FeatureAssignEmployee  = "roster.assign"
	FeatureLockRoster      = "roster.lock"
	FeatureEditShiftTimes  = "roster.edit"
	FeatureMarkShift       = "roster.mark"
)

// PermissionChecker answers whether the current user may use a feature.
type PermissionChecker interface {
	HasPermission(featureKey string) bool
}

// CurrentUser identifies the acting user and their roles. It is passed
// explicitly; the engine reads no ambient global state.
type CurrentUser struct {
	ID    string
	Name  string
	Roles []string
}

// StaticChecker grants features per role name from configuration.
type StaticChecker struct {
	user    CurrentUser
	granted map[string]bool
}

// NewStaticChecker builds a checker for a user from a role -> feature-keys
// grant table. A "*" feature key grants everything.
func NewStaticChecker(user CurrentUser, grants map[string][]string) *StaticChecker {
	granted := make(map[string]bool)
	for _, role := range user.Roles {
		for _, key := range grants[role] {
			granted[key] = true
		}
	}
	return &StaticChecker{user: user, granted: granted}
}

// HasPermission reports whether any of the user's roles grants the feature.
func (c *StaticChecker) HasPermission(featureKey string) bool {
	return c.granted["*"] || c.granted[featureKey]
}

// User returns the identity the checker was built for.
func (c *StaticChecker) User() CurrentUser {
	return c.user
}
