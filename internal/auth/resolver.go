package auth

import (
	"context"
	"errors"

	"go-courier-booking-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

// Resolver looks up the role-bearing profile behind a session subject.
// Kept separate from the session store on purpose: subject identity and
// profile data are two sources of truth that fail independently.
type Resolver interface {
	Resolve(ctx context.Context, subjectID string) (*domain.Profile, error)
}

type profileResolver struct {
	users domain.UserRepository
}

func NewProfileResolver(users domain.UserRepository) Resolver {
	return &profileResolver{users: users}
}

// Resolve fetches the profile row for the subject. Idempotent; safe to
// call repeatedly, though callers should need it at most once per
// session-change event.
func (r *profileResolver) Resolve(ctx context.Context, subjectID string) (*domain.Profile, error) {
	if subjectID == "" {
		return nil, NotFound("No subject to resolve")
	}

	profile, err := r.users.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Registration succeeded at the session layer but the
			// profile insert failed or is still pending.
			return nil, NotFound("Profile not found for subject " + subjectID)
		}
		return nil, Unavailable(err)
	}
	return profile, nil
}
