package usecase

import (
	"context"

	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/apperror"
)

// ctxString reads a request-scoped value set by the auth middleware.
// Gin stores keys as plain strings while tests use the typed key, so
// both are tried.
func ctxString(ctx context.Context, key domain.CtxKey) string {
	if v, ok := ctx.Value(string(key)).(string); ok && v != "" {
		return v
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func subjectFrom(ctx context.Context) (string, error) {
	id := ctxString(ctx, domain.KeyUserID)
	if id == "" {
		return "", apperror.Unauthorized("Authentication required")
	}
	return id, nil
}

func roleFrom(ctx context.Context) domain.Role {
	return domain.Role(ctxString(ctx, domain.KeyUserRole))
}

func requireRole(ctx context.Context, role domain.Role) error {
	if roleFrom(ctx) != role {
		return apperror.Forbidden(string(role) + " access required")
	}
	return nil
}
