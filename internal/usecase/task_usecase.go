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

type taskUsecase struct {
	taskRepo domain.TaskRepository
	userRepo domain.UserRepository
}

func NewTaskUsecase(taskRepo domain.TaskRepository, userRepo domain.UserRepository) domain.TaskUsecase {
	return &taskUsecase{taskRepo: taskRepo, userRepo: userRepo}
}

// Assign creates a task for a courier. Admin only.
func (u *taskUsecase) Assign(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if task.Title == "" {
		return nil, apperror.BadRequest("Title is required")
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if !task.Priority.Valid() {
		return nil, apperror.BadRequest("Priority must be low, medium or high")
	}

	courier, err := u.userRepo.GetByID(ctx, task.CourierID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Courier not found")
		}
		return nil, apperror.Internal(err)
	}
	if courier.Role != domain.RoleCourier {
		return nil, apperror.BadRequest("Tasks can only be assigned to couriers")
	}

	task.ID = uuid.NewString()
	task.Status = domain.TaskPending
	task.CreatedAt = time.Now()

	if err := u.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (u *taskUsecase) ListMine(ctx context.Context) ([]domain.Task, error) {
	if err := requireRole(ctx, domain.RoleCourier); err != nil {
		return nil, err
	}
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, err
	}
	return u.taskRepo.ListByCourier(ctx, subject)
}

// UpdateStatus lets the assigned courier move their own task forward.
func (u *taskUsecase) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	if err := requireRole(ctx, domain.RoleCourier); err != nil {
		return err
	}
	subject, err := subjectFrom(ctx)
	if err != nil {
		return err
	}
	if !status.Valid() {
		return apperror.BadRequest("Status must be pending, in_progress or completed")
	}

	task, err := u.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NotFound("Task not found")
		}
		return apperror.Internal(err)
	}
	if task.CourierID != subject {
		return apperror.Forbidden("Cannot update another courier's task")
	}
	return u.taskRepo.UpdateStatus(ctx, id, status)
}

func (u *taskUsecase) Remove(ctx context.Context, id string) error {
	if err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	return u.taskRepo.Delete(ctx, id)
}
