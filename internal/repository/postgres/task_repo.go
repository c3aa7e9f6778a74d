package postgres

import (
	"context"

	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/apperror"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type taskRepo struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) domain.TaskRepository {
	return &taskRepo{db: db}
}

func (r *taskRepo) Create(ctx context.Context, task *domain.Task) error {
	query := `INSERT INTO tasks (id, courier_id, title, description, due_date, priority, status, tags, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query,
		task.ID, task.CourierID, task.Title, task.Description,
		task.DueDate, task.Priority, task.Status, pq.Array(task.Tags), task.CreatedAt,
	)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *taskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT id, courier_id, title, description, due_date, priority, status, tags, created_at
              FROM tasks WHERE id = $1`
	var task domain.Task
	err := r.db.QueryRow(ctx, query, id).Scan(
		&task.ID, &task.CourierID, &task.Title, &task.Description,
		&task.DueDate, &task.Priority, &task.Status,
		pq.Array(&task.Tags), &task.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepo) ListByCourier(ctx context.Context, courierID string) ([]domain.Task, error) {
	query := `SELECT id, courier_id, title, description, due_date, priority, status, tags, created_at
              FROM tasks
              WHERE courier_id = $1
              ORDER BY due_date NULLS LAST, created_at`
	rows, err := r.db.Query(ctx, query, courierID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		var task domain.Task
		err := rows.Scan(
			&task.ID, &task.CourierID, &task.Title, &task.Description,
			&task.DueDate, &task.Priority, &task.Status,
			pq.Array(&task.Tags), &task.CreatedAt,
		)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return tasks, nil
}

func (r *taskRepo) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Task not found")
	}
	return nil
}

func (r *taskRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Task not found")
	}
	return nil
}
