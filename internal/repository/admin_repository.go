package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/nurseprep-backend/internal/model"
)

var (
	ErrDuplicateEmail = errors.New("admin with this email already exists")
	ErrAdminHasExams  = errors.New("admin still authors exams")
)

// AdminRepository handles admin data access.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// GetByID retrieves an admin by ID.
func (r *AdminRepository) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	a := &model.Admin{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, role, created_at, updated_at
		 FROM admins WHERE id = $1`, id,
	).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByEmail retrieves an admin by their unique email.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	a := &model.Admin{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, role, created_at, updated_at
		 FROM admins WHERE email = $1`, email,
	).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new admin.
func (r *AdminRepository) Create(ctx context.Context, a *model.Admin) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO admins (email, name, password_hash, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		a.Email, a.Name, a.PasswordHash, a.Role,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// ListPaginated retrieves admins newest first, optionally filtered by role.
func (r *AdminRepository) ListPaginated(ctx context.Context, role model.Role, limit, offset int) ([]model.Admin, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM admins WHERE ($1 = '' OR role = $1)`, string(role),
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, email, name, role, created_at, updated_at
		 FROM admins
		 WHERE ($1 = '' OR role = $1)
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		string(role), limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var admins []model.Admin
	for rows.Next() {
		var a model.Admin
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		admins = append(admins, a)
	}
	return admins, total, rows.Err()
}

// Update modifies an admin's email, name and role. A non-empty PasswordHash
// replaces the stored hash.
func (r *AdminRepository) Update(ctx context.Context, a *model.Admin) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE admins
		 SET email = $1, name = $2, role = $3,
		     password_hash = COALESCE(NULLIF($4, ''), password_hash),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5
		 RETURNING created_at, updated_at`,
		a.Email, a.Name, a.Role, a.PasswordHash, a.ID,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// CountByRole counts admins holding role.
func (r *AdminRepository) CountByRole(ctx context.Context, role model.Role) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins WHERE role = $1`, string(role)).Scan(&n)
	return n, err
}

// Delete removes an admin. Admins who still author exams cannot be removed.
func (r *AdminRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrAdminHasExams
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
