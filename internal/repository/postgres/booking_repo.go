package postgres

import (
	"context"

	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/apperror"

	"github.com/jackc/pgx/v5/pgxpool"
)

type bookingRepo struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) domain.BookingRepository {
	return &bookingRepo{db: db}
}

// Create inserts the booking and flips the slot to booked in one
// transaction so a cancelled insert never strands a taken slot.
func (r *bookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperror.Internal(err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO bookings (id, user_id, courier_id, time_slot_id, created_at)
         VALUES ($1, $2, $3, $4, $5)`,
		booking.ID, booking.UserID, booking.CourierID, booking.TimeSlotID, booking.CreatedAt,
	)
	if err != nil {
		return apperror.Internal(err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE time_slots SET is_booked = TRUE WHERE id = $1`, booking.TimeSlotID)
	if err != nil {
		return apperror.Internal(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *bookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT id, user_id, courier_id, time_slot_id, created_at
              FROM bookings WHERE id = $1`
	var booking domain.Booking
	err := r.db.QueryRow(ctx, query, id).Scan(
		&booking.ID, &booking.UserID, &booking.CourierID,
		&booking.TimeSlotID, &booking.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepo) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	query := `SELECT b.id, b.user_id, b.courier_id, b.time_slot_id, b.created_at,
                     ts.id, ts.courier_id, ts.day_of_week, ts.start_time, ts.end_time, ts.is_booked, ts.created_at,
                     u.full_name, u.phone
              FROM bookings b
              JOIN time_slots ts ON ts.id = b.time_slot_id
              JOIN users u ON u.id = b.courier_id
              WHERE b.user_id = $1
              ORDER BY b.created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		var b domain.Booking
		var slot domain.TimeSlot
		var contact domain.CourierContact
		err := rows.Scan(
			&b.ID, &b.UserID, &b.CourierID, &b.TimeSlotID, &b.CreatedAt,
			&slot.ID, &slot.CourierID, &slot.DayOfWeek, &slot.StartTime,
			&slot.EndTime, &slot.IsBooked, &slot.CreatedAt,
			&contact.FullName, &contact.Phone,
		)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		slot.Courier = &contact
		b.TimeSlot = &slot
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return bookings, nil
}

// Delete removes the booking and frees its slot in one transaction.
func (r *bookingRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperror.Internal(err)
	}
	defer tx.Rollback(ctx)

	var timeSlotID string
	err = tx.QueryRow(ctx,
		`DELETE FROM bookings WHERE id = $1 RETURNING time_slot_id`, id,
	).Scan(&timeSlotID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE time_slots SET is_booked = FALSE WHERE id = $1`, timeSlotID)
	if err != nil {
		return apperror.Internal(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *bookingRepo) CountAll(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&total)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return total, nil
}
