package auth

import (
	"strings"

	"go-courier-booking-backend/internal/domain"
)

// Decision is the route guard's verdict for a navigation.
type Decision struct {
	Allowed  bool
	Redirect string // target path when !Allowed
}

func allow() Decision {
	return Decision{Allowed: true}
}

func redirectTo(path string) Decision {
	return Decision{Redirect: path}
}

const (
	loginPath       = "/login"
	registerPath    = "/register"
	dashboardPrefix = "/dashboard/"
)

// Guard decides allow-or-redirect for every navigation before any
// dashboard data fetch starts, so unauthorized content never flashes.
type Guard struct{}

func NewGuard() *Guard {
	return &Guard{}
}

// Decide evaluates the policy in precedence order; the first matching
// rule wins:
//
//  1. /login and /register are always public.
//  2. Unauthenticated on a protected path redirects to /login.
//     Resolving and Error count as unauthenticated (fail closed).
//  3. Authenticated on /login or / redirects to the role's dashboard.
//  4. Authenticated on another role's dashboard redirects home.
//  5. Everything else is allowed.
func (g *Guard) Decide(state State, path string) Decision {
	path = normalizePath(path)

	if path == loginPath || path == registerPath {
		if state.Authenticated() && path == loginPath {
			return redirectTo(state.Role().DashboardPath())
		}
		return allow()
	}

	if !state.Authenticated() {
		if isProtected(path) {
			return redirectTo(loginPath)
		}
		return allow()
	}

	if path == "/" {
		return redirectTo(state.Role().DashboardPath())
	}

	if strings.HasPrefix(path, dashboardPrefix) {
		own := state.Role().DashboardPath()
		if path != own && !strings.HasPrefix(path, own+"/") {
			return redirectTo(own)
		}
	}

	return allow()
}

// isProtected reports whether unauthenticated access is disallowed.
// Everything except the public pages is protected, including the root:
// there is nothing to show a signed-out visitor but the login form.
func isProtected(path string) bool {
	return path != loginPath && path != registerPath
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

// DashboardFor maps a role to its dashboard path; exported for handlers
// that build redirects outside the guard.
func DashboardFor(role domain.Role) string {
	return role.DashboardPath()
}
