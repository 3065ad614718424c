package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/nurseprep-backend/internal/model"
)

// ExamResult combines student data with their exam session details.
type ExamResult struct {
	StudentID  int                 `json:"student_id"`
	Username   string              `json:"username"`
	Name       string              `json:"name"`
	Cohort     string              `json:"cohort"`
	Score      *int                `json:"score"`
	Total      *int                `json:"total"`
	Accuracy   *float64            `json:"accuracy"`
	Status     model.SessionStatus `json:"status"`
	StartedAt  *time.Time          `json:"started_at"`
	FinishedAt *time.Time          `json:"finished_at"`
}

// ExamSessionRepository handles exam session and stored answer data access.
type ExamSessionRepository struct {
	pool *pgxpool.Pool
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository(pool *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{pool: pool}
}

// GetByExamAndStudent retrieves a session for a specific exam-student combination.
func (r *ExamSessionRepository) GetByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	var review []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, student_id, started_at, finished_at, status, score, total, accuracy, review
		 FROM exam_sessions
		 WHERE exam_id = $1 AND student_id = $2`, examID, studentID,
	).Scan(&s.ID, &s.ExamID, &s.StudentID, &s.StartedAt, &s.FinishedAt, &s.Status,
		&s.Score, &s.Total, &s.Accuracy, &review)
	if err != nil {
		return nil, err
	}
	s.Review = review
	return s, nil
}

// Create inserts a new exam session (student joins the exam). A concurrent
// join for the same pair yields pgx.ErrNoRows.
func (r *ExamSessionRepository) Create(ctx context.Context, s *model.ExamSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_sessions (exam_id, student_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (exam_id, student_id) DO NOTHING
		 RETURNING id, started_at, status`,
		s.ExamID, s.StudentID, model.SessionStatusInProgress,
	).Scan(&s.ID, &s.StartedAt, &s.Status)
}

// Complete marks a session as completed with its graded review.
func (r *ExamSessionRepository) Complete(ctx context.Context, examID uuid.UUID, studentID int, review model.SessionReview) error {
	raw, err := json.Marshal(review)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET status = $1, score = $2, total = $3, accuracy = $4, review = $5, finished_at = NOW()
		 WHERE exam_id = $6 AND student_id = $7`,
		model.SessionStatusCompleted, review.Score, review.Total, review.Accuracy, raw, examID, studentID)
	return err
}

// ListByStudent retrieves all sessions for a given student.
func (r *ExamSessionRepository) ListByStudent(ctx context.Context, studentID int) ([]model.ExamSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, student_id, started_at, finished_at, status, score, total, accuracy
		 FROM exam_sessions
		 WHERE student_id = $1
		 ORDER BY started_at DESC`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.ExamSession
	for rows.Next() {
		var s model.ExamSession
		if err := rows.Scan(&s.ID, &s.ExamID, &s.StudentID, &s.StartedAt, &s.FinishedAt, &s.Status,
			&s.Score, &s.Total, &s.Accuracy); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ListByExam retrieves all student results for a specific exam, with optional
// filters and pagination.
func (r *ExamSessionRepository) ListByExam(ctx context.Context, examID uuid.UUID, page, perPage int, cohort string, status model.SessionStatus) ([]ExamResult, int64, error) {
	offset := (page - 1) * perPage

	baseQuery := `
		FROM exam_sessions es
		JOIN students s ON es.student_id = s.id
		WHERE es.exam_id = $1
	`
	args := []any{examID}

	if cohort != "" {
		args = append(args, cohort)
		baseQuery += fmt.Sprintf(" AND s.cohort = $%d", len(args))
	}
	if status != "" {
		args = append(args, status)
		baseQuery += fmt.Sprintf(" AND es.status = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT s.id, s.username, s.name, s.cohort,
		       es.score, es.total, es.accuracy, es.status, es.started_at, es.finished_at
		` + baseQuery + fmt.Sprintf(`
		ORDER BY s.cohort ASC, s.name ASC
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []ExamResult
	for rows.Next() {
		var res ExamResult
		if err := rows.Scan(
			&res.StudentID, &res.Username, &res.Name, &res.Cohort,
			&res.Score, &res.Total, &res.Accuracy, &res.Status, &res.StartedAt, &res.FinishedAt,
		); err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}

// ListAnswers returns the persisted answers of a student for an exam, keyed
// by question id.
func (r *ExamSessionRepository) ListAnswers(ctx context.Context, examID uuid.UUID, studentID int) (map[string]json.RawMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id, answer FROM student_answers
		 WHERE exam_id = $1 AND student_id = $2`, examID, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := make(map[string]json.RawMessage)
	for rows.Next() {
		var (
			qid uuid.UUID
			raw []byte
		)
		if err := rows.Scan(&qid, &raw); err != nil {
			return nil, err
		}
		answers[qid.String()] = raw
	}
	return answers, rows.Err()
}
