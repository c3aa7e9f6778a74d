package postgres

import (
	"context"
	"errors"

	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, profile *domain.Profile) error {
	query := `INSERT INTO users (id, email, full_name, phone, address, role, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		profile.ID, profile.Email, profile.FullName, profile.Phone,
		profile.Address, profile.Role, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.Conflict("User with this email already exists")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT id, email, full_name, phone, address, role, COALESCE(profile_image, ''), created_at, updated_at
              FROM users WHERE id = $1`
	var profile domain.Profile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID, &profile.Email, &profile.FullName, &profile.Phone,
		&profile.Address, &profile.Role, &profile.ProfileImage,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `SELECT id, email, full_name, phone, address, role, COALESCE(profile_image, ''), created_at, updated_at
              FROM users WHERE email = $1`
	var profile domain.Profile
	err := r.db.QueryRow(ctx, query, email).Scan(
		&profile.ID, &profile.Email, &profile.FullName, &profile.Phone,
		&profile.Address, &profile.Role, &profile.ProfileImage,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepo) Update(ctx context.Context, profile *domain.Profile) error {
	query := `UPDATE users
              SET full_name = $2, phone = $3, address = $4, profile_image = NULLIF($5, ''), updated_at = $6
              WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		profile.ID, profile.FullName, profile.Phone, profile.Address,
		profile.ProfileImage, profile.UpdatedAt,
	)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("User not found")
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("User not found")
	}
	return nil
}

func (r *userRepo) List(ctx context.Context, roles []domain.Role, page, pageSize int) ([]domain.Profile, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	if len(roles) == 0 {
		roles = []domain.Role{domain.RoleUser, domain.RoleCourier}
	}

	filter := make([]string, len(roles))
	for i, role := range roles {
		filter[i] = string(role)
	}

	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = ANY($1)`, pq.Array(filter),
	).Scan(&total)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}

	query := `SELECT id, email, full_name, phone, address, role, COALESCE(profile_image, ''), created_at, updated_at
              FROM users
              WHERE role = ANY($1)
              ORDER BY created_at DESC
              LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, pq.Array(filter), pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	defer rows.Close()

	profiles := make([]domain.Profile, 0, pageSize)
	for rows.Next() {
		var p domain.Profile
		err := rows.Scan(
			&p.ID, &p.Email, &p.FullName, &p.Phone, &p.Address,
			&p.Role, &p.ProfileImage, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, apperror.Internal(err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return profiles, total, nil
}
