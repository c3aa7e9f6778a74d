package usecase

import (
	"context"
	"errors"
	"time"

	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
)

type profileUsecase struct {
	userRepo domain.UserRepository
}

func NewProfileUsecase(userRepo domain.UserRepository) domain.ProfileUsecase {
	return &profileUsecase{userRepo: userRepo}
}

func (u *profileUsecase) Get(ctx context.Context, id string) (*domain.Profile, error) {
	profile, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Profile not found")
		}
		return nil, apperror.Internal(err)
	}
	return profile, nil
}

// Update changes the caller's own contact fields; email and role are
// immutable here.
func (u *profileUsecase) Update(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, err
	}
	if profile.ID != subject {
		return nil, apperror.Forbidden("Cannot update another user's profile")
	}
	if profile.FullName == "" {
		return nil, apperror.BadRequest("Full name is required")
	}

	current, err := u.Get(ctx, subject)
	if err != nil {
		return nil, err
	}

	current.FullName = profile.FullName
	current.Phone = profile.Phone
	current.Address = profile.Address
	current.UpdatedAt = time.Now()

	if err := u.userRepo.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (u *profileUsecase) SetProfileImage(ctx context.Context, id, imageURL string) error {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return err
	}
	if id != subject {
		return apperror.Forbidden("Cannot update another user's profile")
	}

	current, err := u.Get(ctx, id)
	if err != nil {
		return err
	}
	current.ProfileImage = imageURL
	current.UpdatedAt = time.Now()
	return u.userRepo.Update(ctx, current)
}
