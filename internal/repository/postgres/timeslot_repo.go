package postgres

import (
	"context"

	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/apperror"

	"github.com/jackc/pgx/v5/pgxpool"
)

type timeSlotRepo struct {
	db *pgxpool.Pool
}

func NewTimeSlotRepository(db *pgxpool.Pool) domain.TimeSlotRepository {
	return &timeSlotRepo{db: db}
}

func (r *timeSlotRepo) Create(ctx context.Context, slot *domain.TimeSlot) error {
	query := `INSERT INTO time_slots (id, courier_id, day_of_week, start_time, end_time, is_booked, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query,
		slot.ID, slot.CourierID, slot.DayOfWeek, slot.StartTime,
		slot.EndTime, slot.IsBooked, slot.CreatedAt,
	)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *timeSlotRepo) GetByID(ctx context.Context, id string) (*domain.TimeSlot, error) {
	query := `SELECT id, courier_id, day_of_week, start_time, end_time, is_booked, created_at
              FROM time_slots WHERE id = $1`
	var slot domain.TimeSlot
	err := r.db.QueryRow(ctx, query, id).Scan(
		&slot.ID, &slot.CourierID, &slot.DayOfWeek, &slot.StartTime,
		&slot.EndTime, &slot.IsBooked, &slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListAvailable joins courier contact details so the booking screen can
// show who the slot belongs to without a second round trip.
func (r *timeSlotRepo) ListAvailable(ctx context.Context, dayOfWeek int) ([]domain.TimeSlot, error) {
	query := `SELECT ts.id, ts.courier_id, ts.day_of_week, ts.start_time, ts.end_time, ts.is_booked, ts.created_at,
                     u.full_name, u.phone
              FROM time_slots ts
              JOIN users u ON u.id = ts.courier_id
              WHERE ts.is_booked = FALSE AND ($1 = -1 OR ts.day_of_week = $1)
              ORDER BY ts.day_of_week, ts.start_time`
	rows, err := r.db.Query(ctx, query, dayOfWeek)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	slots := []domain.TimeSlot{}
	for rows.Next() {
		var slot domain.TimeSlot
		var contact domain.CourierContact
		err := rows.Scan(
			&slot.ID, &slot.CourierID, &slot.DayOfWeek, &slot.StartTime,
			&slot.EndTime, &slot.IsBooked, &slot.CreatedAt,
			&contact.FullName, &contact.Phone,
		)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		slot.Courier = &contact
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return slots, nil
}

func (r *timeSlotRepo) ListByCourier(ctx context.Context, courierID string) ([]domain.TimeSlot, error) {
	query := `SELECT id, courier_id, day_of_week, start_time, end_time, is_booked, created_at
              FROM time_slots
              WHERE courier_id = $1
              ORDER BY day_of_week, start_time`
	rows, err := r.db.Query(ctx, query, courierID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	slots := []domain.TimeSlot{}
	for rows.Next() {
		var slot domain.TimeSlot
		err := rows.Scan(
			&slot.ID, &slot.CourierID, &slot.DayOfWeek, &slot.StartTime,
			&slot.EndTime, &slot.IsBooked, &slot.CreatedAt,
		)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return slots, nil
}

func (r *timeSlotRepo) SetBooked(ctx context.Context, id string, booked bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE time_slots SET is_booked = $2 WHERE id = $1`, id, booked)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Time slot not found")
	}
	return nil
}

func (r *timeSlotRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM time_slots WHERE id = $1`, id)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Time slot not found")
	}
	return nil
}
