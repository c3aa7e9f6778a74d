package domain

import (
	"context"
	"time"
)

type Booking struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CourierID  string    `json:"courier_id"`
	TimeSlotID string    `json:"time_slot_id"`
	CreatedAt  time.Time `json:"created_at"`

	// Joined slot details for listings.
	TimeSlot *TimeSlot `json:"time_slot,omitempty"`
}

type BookingRepository interface {
	// Create inserts the booking and marks the slot booked in one
	// transaction. Concurrent bookings of the same slot are last write
	// wins; no stronger guarantee is offered.
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByUser(ctx context.Context, userID string) ([]Booking, error)
	// Delete removes the booking and frees its slot.
	Delete(ctx context.Context, id string) error
	CountAll(ctx context.Context) (int64, error)
}

type BookingUsecase interface {
	Book(ctx context.Context, timeSlotID string) (*Booking, error)
	Cancel(ctx context.Context, bookingID string) error
	ListMine(ctx context.Context) ([]Booking, error)
}
