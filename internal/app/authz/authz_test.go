package authz

import (
	"errors"
	"testing"

	"immo/internal/domain/user"
)

func TestCanMutate(t *testing.T) {
	cases := []struct {
		name  string
		actor Actor
		owner user.ID
		want  bool
	}{
		{"admin on foreign resource", Actor{ID: "admin-1", Role: user.RoleAdmin}, "owner-1", true},
		{"owner on own resource", Actor{ID: "owner-1", Role: user.RoleOwner}, "owner-1", true},
		{"owner on foreign resource", Actor{ID: "owner-1", Role: user.RoleOwner}, "owner-2", false},
		{"client on own resource", Actor{ID: "client-1", Role: user.RoleClient}, "client-1", true},
		{"client on foreign resource", Actor{ID: "client-1", Role: user.RoleClient}, "owner-1", false},
		{"unknown role", Actor{ID: "x", Role: "guest"}, "x", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanMutate(tc.actor, tc.owner); got != tc.want {
				t.Errorf("CanMutate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRequireOwnership(t *testing.T) {
	if err := RequireOwnership(Actor{ID: "u-1", Role: user.RoleOwner}, "u-1"); err != nil {
		t.Errorf("own resource should pass, got %v", err)
	}
	if err := RequireOwnership(Actor{ID: "u-1", Role: user.RoleOwner}, "u-2"); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign resource should fail with ErrForbidden, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	actor := Actor{ID: "u-1", Role: user.RoleClient}
	if err := RequireRole(actor, user.RoleClient, user.RoleAdmin); err != nil {
		t.Errorf("allowed role should pass, got %v", err)
	}
	if err := RequireRole(actor, user.RoleOwner, user.RoleAdmin); !errors.Is(err, ErrRoleNotAllowed) {
		t.Errorf("missing role should fail with ErrRoleNotAllowed, got %v", err)
	}
}
