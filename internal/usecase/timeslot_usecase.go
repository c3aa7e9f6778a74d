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

type timeSlotUsecase struct {
	slotRepo domain.TimeSlotRepository
}

func NewTimeSlotUsecase(slotRepo domain.TimeSlotRepository) domain.TimeSlotUsecase {
	return &timeSlotUsecase{slotRepo: slotRepo}
}

func (u *timeSlotUsecase) ListAvailable(ctx context.Context, dayOfWeek int) ([]domain.TimeSlot, error) {
	if dayOfWeek < -1 || dayOfWeek > 6 {
		return nil, apperror.BadRequest("day_of_week must be between 0 and 6")
	}
	return u.slotRepo.ListAvailable(ctx, dayOfWeek)
}

func (u *timeSlotUsecase) ListMine(ctx context.Context) ([]domain.TimeSlot, error) {
	if err := requireRole(ctx, domain.RoleCourier); err != nil {
		return nil, err
	}
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, err
	}
	return u.slotRepo.ListByCourier(ctx, subject)
}

func (u *timeSlotUsecase) Add(ctx context.Context, slot *domain.TimeSlot) (*domain.TimeSlot, error) {
	if err := requireRole(ctx, domain.RoleCourier); err != nil {
		return nil, err
	}
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, err
	}

	if slot.DayOfWeek < 0 || slot.DayOfWeek > 6 {
		return nil, apperror.BadRequest("day_of_week must be between 0 and 6")
	}
	start, err := time.Parse("15:04", slot.StartTime)
	if err != nil {
		return nil, apperror.BadRequest("start_time must be HH:mm")
	}
	end, err := time.Parse("15:04", slot.EndTime)
	if err != nil {
		return nil, apperror.BadRequest("end_time must be HH:mm")
	}
	if !end.After(start) {
		return nil, apperror.BadRequest("end_time must be after start_time")
	}

	slot.ID = uuid.NewString()
	slot.CourierID = subject
	slot.IsBooked = false
	slot.CreatedAt = time.Now()

	if err := u.slotRepo.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (u *timeSlotUsecase) Remove(ctx context.Context, id string) error {
	if err := requireRole(ctx, domain.RoleCourier); err != nil {
		return err
	}
	subject, err := subjectFrom(ctx)
	if err != nil {
		return err
	}

	slot, err := u.slotRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NotFound("Time slot not found")
		}
		return apperror.Internal(err)
	}
	if slot.CourierID != subject {
		return apperror.Forbidden("Cannot remove another courier's time slot")
	}
	if slot.IsBooked {
		return apperror.Conflict("Time slot has an active booking")
	}
	return u.slotRepo.Delete(ctx, id)
}
