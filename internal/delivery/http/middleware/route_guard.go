package middleware

import (
	"net/http"

	"go-courier-booking-backend/internal/auth"

	"github.com/gin-gonic/gin"
)

// RouteGuard applies the navigation rules to browser page paths and
// issues redirects server-side, so a protected page never flashes
// before the session is known. Requests it allows continue to the page
// handler with the current auth state attached.
func RouteGuard(svc *auth.Service, guard *auth.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, _ := c.Cookie(SessionCookieName)
		state := svc.StateFor(c.Request.Context(), sid)

		decision := guard.Decide(state, c.Request.URL.Path)
		if !decision.Allowed {
			c.Redirect(http.StatusFound, decision.Redirect)
			c.Abort()
			return
		}

		c.Set("AuthState", state)
		c.Next()
	}
}
