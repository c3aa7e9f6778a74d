package domain

import (
	"context"
	"time"
)

// Role values are flat: admin is not a superset of user or courier.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleUser    Role = "user"
	RoleCourier Role = "courier"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleCourier:
		return true
	}
	return false
}

// DashboardPath returns the dashboard prefix owned by this role.
func (r Role) DashboardPath() string {
	return "/dashboard/" + string(r)
}

// Profile is the application-level user record, keyed by the Supabase
// auth subject UUID. Distinct from the auth collaborator's own identity
// record: the two can exist independently after a partial registration.
type Profile struct {
	ID           string    `json:"id"` // Supabase subject UUID
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Role         Role      `json:"role"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UserRepository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error
	Delete(ctx context.Context, id string) error
	// List returns non-admin profiles filtered by role ("" = all),
	// newest first, paginated.
	List(ctx context.Context, roles []Role, page, pageSize int) ([]Profile, int64, error)
}

type ProfileUsecase interface {
	Get(ctx context.Context, id string) (*Profile, error)
	Update(ctx context.Context, profile *Profile) (*Profile, error)
	SetProfileImage(ctx context.Context, id, imageURL string) error
}
