package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/nurseprep-backend/internal/model"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `e.id, e.title, e.author_id, e.qbank_id, e.duration_minutes, e.entry_token,
	e.allow_answer_check, e.status, e.created_at, e.updated_at,
	(SELECT COUNT(*) FROM questions q WHERE q.qbank_id = e.qbank_id)`

func scanExam(row pgx.Row, e *model.Exam) error {
	return row.Scan(&e.ID, &e.Title, &e.AuthorID, &e.QBankID, &e.DurationMinutes, &e.EntryToken,
		&e.AllowAnswerCheck, &e.Status, &e.CreatedAt, &e.UpdatedAt, &e.QuestionCount)
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	row := r.pool.QueryRow(ctx, `SELECT `+examColumns+` FROM exams e WHERE e.id = $1`, id)
	if err := scanExam(row, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListByAuthorPaginated retrieves exams filtered by author with pagination.
// Pass authorID=0 to list all exams (superadmin).
func (r *ExamRepository) ListByAuthorPaginated(ctx context.Context, authorID, limit, offset int) ([]model.Exam, int, error) {
	where := ""
	var args []any
	if authorID > 0 {
		args = append(args, authorID)
		where = ` WHERE e.author_id = $1`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM exams e`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + examColumns + ` FROM exams e` + where +
		fmt.Sprintf(` ORDER BY e.created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := scanExam(rows, &e); err != nil {
			return nil, 0, err
		}
		exams = append(exams, e)
	}
	return exams, total, rows.Err()
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (title, author_id, qbank_id, duration_minutes, entry_token, allow_answer_check, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		e.Title, e.AuthorID, e.QBankID, e.DurationMinutes, e.EntryToken, e.AllowAnswerCheck, e.Status,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Update writes the editable fields of a draft exam.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`UPDATE exams
		 SET title = $1, qbank_id = $2, duration_minutes = $3, entry_token = $4,
		     allow_answer_check = $5, updated_at = NOW()
		 WHERE id = $6
		 RETURNING updated_at`,
		e.Title, e.QBankID, e.DurationMinutes, e.EntryToken, e.AllowAnswerCheck, e.ID,
	).Scan(&e.UpdatedAt)
}

// UpdateStatus updates an exam's status.
func (r *ExamRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ExamStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	return err
}

// ListPublished returns all exams with PUBLISHED status.
// Used for cache prewarming on application startup.
func (r *ExamRepository) ListPublished(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+`
		 FROM exams e WHERE e.status = $1
		 ORDER BY e.created_at DESC`, model.ExamStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := scanExam(rows, &e); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}
