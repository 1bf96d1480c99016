package authz

import (
	"errors"

	"immo/internal/domain/user"
)

var (
	// ErrForbidden: authenticated but not allowed to act on the resource.
	ErrForbidden = errors.New("authz: access denied")
	// ErrRoleNotAllowed: the operation class is closed to the actor's role.
	ErrRoleNotAllowed = errors.New("authz: role not allowed for this operation")
)

// Actor is the authenticated principal evaluated by every check.
type Actor struct {
	ID   user.ID
	Role user.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}

// CanMutate is the ownership predicate applied before every mutating
// operation: admins may always act, everyone else only on what they own.
func CanMutate(actor Actor, resourceOwner user.ID) bool {
	switch actor.Role {
	case user.RoleAdmin:
		return true
	case user.RoleOwner, user.RoleClient:
		return actor.ID == resourceOwner
	default:
		return false
	}
}

// RequireOwnership returns ErrForbidden unless CanMutate holds.
func RequireOwnership(actor Actor, resourceOwner user.ID) error {
	if !CanMutate(actor, resourceOwner) {
		return ErrForbidden
	}
	return nil
}

// RequireRole gates an operation class on a role allowlist. It runs
// before any ownership check where both apply.
func RequireRole(actor Actor, allowed ...user.Role) error {
	for _, role := range allowed {
		if actor.Role == role {
			return nil
		}
	}
	return ErrRoleNotAllowed
}
