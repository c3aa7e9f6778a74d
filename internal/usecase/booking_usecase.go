package usecase

import (
	"context"
	"errors"
	"time"

	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type bookingUsecase struct {
	bookingRepo domain.BookingRepository
	slotRepo    domain.TimeSlotRepository
}

func NewBookingUsecase(bookingRepo domain.BookingRepository, slotRepo domain.TimeSlotRepository) domain.BookingUsecase {
	return &bookingUsecase{bookingRepo: bookingRepo, slotRepo: slotRepo}
}

func (u *bookingUsecase) Book(ctx context.Context, timeSlotID string) (*domain.Booking, error) {
	if err := requireRole(ctx, domain.RoleUser); err != nil {
		return nil, err
	}
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, err
	}
	if timeSlotID == "" {
		return nil, apperror.BadRequest("time_slot_id is required")
	}

	slot, err := u.slotRepo.GetByID(ctx, timeSlotID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Time slot not found")
		}
		return nil, apperror.Internal(err)
	}
	if slot.IsBooked {
		return nil, apperror.Conflict("Time slot is already booked")
	}

	booking := &domain.Booking{
		ID:         uuid.NewString(),
		UserID:     subject,
		CourierID:  slot.CourierID,
		TimeSlotID: slot.ID,
		CreatedAt:  time.Now(),
	}
	if err := u.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}
	booking.TimeSlot = slot
	return booking, nil
}

func (u *bookingUsecase) Cancel(ctx context.Context, bookingID string) error {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return err
	}

	booking, err := u.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NotFound("Booking not found")
		}
		return apperror.Internal(err)
	}
	if booking.UserID != subject && roleFrom(ctx) != domain.RoleAdmin {
		return apperror.Forbidden("Cannot cancel another user's booking")
	}
	return u.bookingRepo.Delete(ctx, bookingID)
}

func (u *bookingUsecase) ListMine(ctx context.Context) ([]domain.Booking, error) {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, err
	}
	return u.bookingRepo.ListByUser(ctx, subject)
}
