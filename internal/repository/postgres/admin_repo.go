package postgres

import (
	"context"

	"go-courier-booking-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type adminRepo struct {
	db *pgxpool.Pool
}

func NewAdminRepository(db *pgxpool.Pool) domain.AdminRepository {
	return &adminRepo{db: db}
}

// GetStats fetches dashboard statistics. Individual count failures fall
// back to zero so one broken table does not blank the whole dashboard.
func (r *adminRepo) GetStats(ctx context.Context) (*domain.AdminStats, error) {
	stats := &domain.AdminStats{}

	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'user'`).Scan(&stats.TotalUsers)
	if err != nil {
		stats.TotalUsers = 0
	}

	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'courier'`).Scan(&stats.TotalCouriers)
	if err != nil {
		stats.TotalCouriers = 0
	}

	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&stats.TotalBookings)
	if err != nil {
		stats.TotalBookings = 0
	}

	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE status <> 'completed'`).Scan(&stats.OpenTasks)
	if err != nil {
		stats.OpenTasks = 0
	}

	return stats, nil
}
