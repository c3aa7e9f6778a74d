package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go-courier-booking-backend/internal/auth"
	"go-courier-booking-backend/internal/delivery/http/response"
	"go-courier-booking-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// SessionCookieName is the opaque session id cookie. The cookie never
// holds tokens; those stay server-side.
const SessionCookieName = "sid"

// AuthMiddleware authenticates a request from either the session cookie
// or a bearer access token. Cookie sessions are the primary path for
// the browser frontend; bearer tokens serve API clients.
//
// The role always comes from the profile row, never from a JWT claim:
// claims can be stale or carry provider-internal values.
func AuthMiddleware(svc *auth.Service, verifier *auth.TokenVerifier, users domain.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sid, err := c.Cookie(SessionCookieName); err == nil && sid != "" {
			state := svc.StateFor(c.Request.Context(), sid)
			if state.Authenticated() {
				setIdentity(c, state.Profile)
				c.Next()
				return
			}
			if state.Loading() || state.Phase == auth.PhaseError {
				// Fail closed while the profile is unresolved.
				response.Error(c, http.StatusUnauthorized, "Session could not be verified", nil)
				c.Abort()
				return
			}
			// Idle: expired or cleared cookie, fall through to bearer.
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or session cookie required", nil)
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		subject, err := verifier.Verify(tokenString)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		profile, err := users.GetByID(c.Request.Context(), subject)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				response.Error(c, http.StatusUnauthorized, "User not found", nil)
			} else {
				response.Error(c, http.StatusServiceUnavailable, "Could not verify user", nil)
			}
			c.Abort()
			return
		}

		setIdentity(c, profile)
		c.Next()
	}
}

// RequireRole gates a route group to one role. Runs after
// AuthMiddleware.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(string(domain.KeyUserRole)) != string(role) {
			response.Error(c, http.StatusForbidden, string(role)+" access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func setIdentity(c *gin.Context, profile *domain.Profile) {
	c.Set(string(domain.KeyUserID), profile.ID)
	c.Set(string(domain.KeyUserEmail), profile.Email)
	c.Set(string(domain.KeyUserRole), string(profile.Role))
}
