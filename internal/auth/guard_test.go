package auth

import (
	"testing"

	"go-courier-booking-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func authState(role domain.Role) State {
	return State{
		Phase:   PhaseAuthenticated,
		Profile: &domain.Profile{ID: "u1", Email: "u@example.com", Role: role},
	}
}

func TestGuardUnauthenticated(t *testing.T) {
	g := NewGuard()
	idle := State{Phase: PhaseIdle}

	t.Run("Protected paths redirect to login", func(t *testing.T) {
		for _, path := range []string{"/", "/dashboard/user", "/dashboard/admin", "/dashboard/courier", "/anything"} {
			d := g.Decide(idle, path)
			assert.False(t, d.Allowed, "path %s", path)
			assert.Equal(t, "/login", d.Redirect, "path %s", path)
		}
	})

	t.Run("Public paths always allowed", func(t *testing.T) {
		assert.True(t, g.Decide(idle, "/login").Allowed)
		assert.True(t, g.Decide(idle, "/register").Allowed)
	})

	t.Run("Resolving and Error fail closed", func(t *testing.T) {
		for _, st := range []State{{Phase: PhaseResolving}, {Phase: PhaseError, Err: Unavailable(nil)}} {
			d := g.Decide(st, "/dashboard/user")
			assert.False(t, d.Allowed)
			assert.Equal(t, "/login", d.Redirect)
		}
	})
}

func TestGuardRoleRouting(t *testing.T) {
	g := NewGuard()

	tests := []struct {
		name     string
		role     domain.Role
		path     string
		allowed  bool
		redirect string
	}{
		{"courier on admin dashboard", domain.RoleCourier, "/dashboard/admin", false, "/dashboard/courier"},
		{"courier on own dashboard", domain.RoleCourier, "/dashboard/courier", true, ""},
		{"admin on root", domain.RoleAdmin, "/", false, "/dashboard/admin"},
		{"admin on user dashboard", domain.RoleAdmin, "/dashboard/user", false, "/dashboard/admin"},
		{"user on own dashboard", domain.RoleUser, "/dashboard/user", true, ""},
		{"user on courier dashboard", domain.RoleUser, "/dashboard/courier", false, "/dashboard/user"},
		{"user on own dashboard subpage", domain.RoleUser, "/dashboard/user/bookings", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := g.Decide(authState(tt.role), tt.path)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.redirect, d.Redirect)
		})
	}
}

func TestGuardAuthenticatedPublicPaths(t *testing.T) {
	g := NewGuard()

	t.Run("Register stays public with a session", func(t *testing.T) {
		d := g.Decide(authState(domain.RoleUser), "/register")
		assert.True(t, d.Allowed)
	})

	t.Run("Login bounces to own dashboard", func(t *testing.T) {
		d := g.Decide(authState(domain.RoleCourier), "/login")
		assert.False(t, d.Allowed)
		assert.Equal(t, "/dashboard/courier", d.Redirect)
	})
}

func TestGuardPathNormalization(t *testing.T) {
	g := NewGuard()

	d := g.Decide(authState(domain.RoleUser), "/dashboard/user/")
	assert.True(t, d.Allowed)

	d = g.Decide(State{Phase: PhaseIdle}, "")
	assert.Equal(t, "/login", d.Redirect)
}
