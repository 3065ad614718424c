package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/nurseprep-backend/internal/model"
)

var ErrDuplicateUsername = errors.New("student with this username already exists")

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

const studentColumns = `id, username, name, cohort, password_hash, created_at, updated_at`

func scanStudent(row pgx.Row, s *model.Student) error {
	return row.Scan(&s.ID, &s.Username, &s.Name, &s.Cohort, &s.PasswordHash, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	if err := scanStudent(r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id), s); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByUsername retrieves a student by their unique username.
func (r *StudentRepository) GetByUsername(ctx context.Context, username string) (*model.Student, error) {
	s := &model.Student{}
	if err := scanStudent(r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE username = $1`, username), s); err != nil {
		return nil, err
	}
	return s, nil
}

// ListPaginated retrieves students with pagination and optional cohort and
// name filters.
func (r *StudentRepository) ListPaginated(ctx context.Context, cohort, search string, limit, offset int) ([]model.Student, int, error) {
	where := ""
	var args []any
	if cohort != "" {
		args = append(args, cohort)
		where += ` AND cohort = $` + strconv.Itoa(len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += ` AND (name ILIKE $` + strconv.Itoa(len(args)) + ` OR username ILIKE $` + strconv.Itoa(len(args)) + `)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM students WHERE TRUE`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + studentColumns + ` FROM students WHERE TRUE` + where +
		` ORDER BY name LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (username, name, cohort, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		s.Username, s.Name, s.Cohort, s.PasswordHash,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateUsername
		}
		return err
	}
	return nil
}

// Update modifies a student's profile (excluding password).
func (r *StudentRepository) Update(ctx context.Context, s *model.Student) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET name = $1, cohort = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3`,
		s.Name, s.Cohort, s.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdatePassword updates a student's password hash.
func (r *StudentRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		passwordHash, id,
	)
	return err
}

// Delete removes a student by ID.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
