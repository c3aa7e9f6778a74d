package usecase

import (
	"context"
	"errors"
	"math"

	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/apperror"
	"go-courier-booking-backend/pkg/logger"
)

// SubjectDeleter removes an identity from the auth collaborator. Admin
// API key required, so only the admin usecase holds one.
type SubjectDeleter interface {
	DeleteUser(ctx context.Context, subjectID string) error
}

type adminUsecase struct {
	adminRepo domain.AdminRepository
	userRepo  domain.UserRepository
	subjects  SubjectDeleter
}

func NewAdminUsecase(adminRepo domain.AdminRepository, userRepo domain.UserRepository, subjects SubjectDeleter) domain.AdminUsecase {
	return &adminUsecase{adminRepo: adminRepo, userRepo: userRepo, subjects: subjects}
}

// GetStats returns dashboard statistics
func (u *adminUsecase) GetStats(ctx context.Context) (*domain.AdminStats, error) {
	if err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}

	stats, err := u.adminRepo.GetStats(ctx)
	if err != nil {
		return nil, apperror.Internal(errors.New("Failed to fetch statistics: " + err.Error()))
	}
	return stats, nil
}

// ListUsers returns paginated non-admin users
func (u *adminUsecase) ListUsers(ctx context.Context, role string, page, pageSize int) (*domain.PaginatedResult[domain.Profile], error) {
	if err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	var roles []domain.Role
	switch role {
	case "":
		// all non-admin roles
	case string(domain.RoleUser), string(domain.RoleCourier):
		roles = []domain.Role{domain.Role(role)}
	default:
		return nil, apperror.BadRequest("Role must be user or courier")
	}

	users, total, err := u.userRepo.List(ctx, roles, page, pageSize)
	if err != nil {
		return nil, apperror.Internal(errors.New("Failed to fetch users: " + err.Error()))
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	return &domain.PaginatedResult[domain.Profile]{
		Data:       users,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// DeleteUser removes the profile row first, then the auth subject. A
// missing profile row is logged and the subject delete still runs, so a
// half-registered account can be cleaned up. A failed subject delete is
// reported: the identity still exists and the caller must retry.
func (u *adminUsecase) DeleteUser(ctx context.Context, userID string) error {
	if err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if userID == "" {
		return apperror.BadRequest("User ID is required")
	}

	if err := u.userRepo.Delete(ctx, userID); err != nil {
		logger.Log.Warn("profile delete failed, continuing to subject delete",
			"user_id", userID, "error", err)
	}

	if err := u.subjects.DeleteUser(ctx, userID); err != nil {
		return apperror.Unavailable("Failed to delete auth identity", err)
	}
	return nil
}
