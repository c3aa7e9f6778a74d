package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-courier-booking-backend/internal/auth"
	"go-courier-booking-backend/internal/delivery/http/middleware"
	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init()
}

type staticResolver struct {
	profiles map[string]*domain.Profile
}

func (r *staticResolver) Resolve(_ context.Context, subjectID string) (*domain.Profile, error) {
	if p, ok := r.profiles[subjectID]; ok {
		return p, nil
	}
	return nil, auth.NotFound("Profile not found")
}

func newGuardedRouter(t *testing.T) (*gin.Engine, *auth.MemorySessionStore) {
	t.Helper()

	store := auth.NewMemorySessionStore(nil, time.Hour)
	resolver := &staticResolver{profiles: map[string]*domain.Profile{
		"courier-1": {ID: "courier-1", Role: domain.RoleCourier},
	}}
	svc := auth.NewService(store, resolver, nil, nil, time.Second)

	r := gin.New()
	pages := r.Group("")
	pages.Use(middleware.RouteGuard(svc, auth.NewGuard()))
	handler := func(c *gin.Context) { c.Status(http.StatusOK) }
	pages.GET("/", handler)
	pages.GET("/login", handler)
	pages.GET("/register", handler)
	pages.GET("/dashboard/*role", handler)

	return r, store
}

func get(r *gin.Engine, path, sid string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: sid})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouteGuardRedirects(t *testing.T) {
	r, store := newGuardedRouter(t)

	require.NoError(t, store.Save(context.Background(), domain.Session{
		ID:        "sid-1",
		Subject:   "courier-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	t.Run("No session on protected path redirects to login", func(t *testing.T) {
		w := get(r, "/dashboard/courier", "")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("Wrong role dashboard redirects to own dashboard", func(t *testing.T) {
		w := get(r, "/dashboard/admin", "sid-1")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/dashboard/courier", w.Header().Get("Location"))
	})

	t.Run("Own dashboard is allowed", func(t *testing.T) {
		w := get(r, "/dashboard/courier", "sid-1")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Authenticated login bounces to dashboard", func(t *testing.T) {
		w := get(r, "/login", "sid-1")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/dashboard/courier", w.Header().Get("Location"))
	})

	t.Run("Register stays reachable while signed in", func(t *testing.T) {
		w := get(r, "/register", "sid-1")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Unresolvable profile fails closed", func(t *testing.T) {
		require.NoError(t, store.Save(context.Background(), domain.Session{
			ID:        "sid-ghost",
			Subject:   "ghost",
			ExpiresAt: time.Now().Add(time.Hour),
		}))

		w := get(r, "/dashboard/courier", "sid-ghost")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})
}

func TestAuthMiddlewareRejectsAnonymous(t *testing.T) {
	store := auth.NewMemorySessionStore(nil, time.Hour)
	resolver := &staticResolver{profiles: map[string]*domain.Profile{}}
	svc := auth.NewService(store, resolver, nil, nil, time.Second)
	verifier := auth.NewTokenVerifier("test-secret", nil)

	r := gin.New()
	r.GET("/v1/profile", middleware.AuthMiddleware(svc, verifier, nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := get(r, "/v1/profile", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/admin",
		func(c *gin.Context) { c.Set(string(domain.KeyUserRole), "user"); c.Next() },
		middleware.RequireRole(domain.RoleAdmin),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	w := get(r, "/admin", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
