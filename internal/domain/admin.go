package domain

import "context"

type AdminStats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalCouriers int64 `json:"total_couriers"`
	TotalBookings int64 `json:"total_bookings"`
	OpenTasks     int64 `json:"open_tasks"`
}

type PaginatedResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

type AdminRepository interface {
	GetStats(ctx context.Context) (*AdminStats, error)
}

type AdminUsecase interface {
	GetStats(ctx context.Context) (*AdminStats, error)
	ListUsers(ctx context.Context, role string, page, pageSize int) (*PaginatedResult[Profile], error)
	// DeleteUser removes the profile row and then the auth subject.
	// A failed profile delete is logged and the subject delete still
	// runs; a failed subject delete aborts and reports.
	DeleteUser(ctx context.Context, userID string) error
}
