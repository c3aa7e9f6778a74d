package domain

import (
	"context"
	"time"
)

// TimeSlot is a recurring weekly availability window offered by a courier.
type TimeSlot struct {
	ID        string    `json:"id"`
	CourierID string    `json:"courier_id"`
	DayOfWeek int       `json:"day_of_week"` // 0-6, Sunday-Saturday
	StartTime string    `json:"start_time"`  // HH:mm
	EndTime   string    `json:"end_time"`    // HH:mm
	IsBooked  bool      `json:"is_booked"`
	CreatedAt time.Time `json:"created_at"`

	// Joined courier contact details for user-facing listings.
	Courier *CourierContact `json:"courier,omitempty"`
}

type CourierContact struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type TimeSlotRepository interface {
	Create(ctx context.Context, slot *TimeSlot) error
	GetByID(ctx context.Context, id string) (*TimeSlot, error)
	// ListAvailable returns unbooked slots with courier contact joined,
	// optionally filtered by day (-1 = any), ordered by day then start time.
	ListAvailable(ctx context.Context, dayOfWeek int) ([]TimeSlot, error)
	ListByCourier(ctx context.Context, courierID string) ([]TimeSlot, error)
	SetBooked(ctx context.Context, id string, booked bool) error
	Delete(ctx context.Context, id string) error
}

type TimeSlotUsecase interface {
	ListAvailable(ctx context.Context, dayOfWeek int) ([]TimeSlot, error)
	ListMine(ctx context.Context) ([]TimeSlot, error)
	Add(ctx context.Context, slot *TimeSlot) (*TimeSlot, error)
	Remove(ctx context.Context, id string) error
}
