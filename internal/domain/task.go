package domain

import (
	"context"
	"time"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// Task is an admin-assigned job for a courier.
type Task struct {
	ID          string       `json:"id"`
	CourierID   string       `json:"courier_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	Tags        []string     `json:"tags,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	// ListByCourier returns the courier's tasks ordered by due date.
	ListByCourier(ctx context.Context, courierID string) ([]Task, error)
	UpdateStatus(ctx context.Context, id string, status TaskStatus) error
	Delete(ctx context.Context, id string) error
}

type TaskUsecase interface {
	Assign(ctx context.Context, task *Task) (*Task, error)
	ListMine(ctx context.Context) ([]Task, error)
	UpdateStatus(ctx context.Context, id string, status TaskStatus) error
	Remove(ctx context.Context, id string) error
}
