package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/quiz"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// SummaryCounts holds the stat cards shown at the top of the dashboard.
type SummaryCounts struct {
	Students       int `json:"total_students"`
	Exams          int `json:"total_exams"`
	QuestionBanks  int `json:"total_question_banks"`
	Questions      int `json:"total_questions"`
	ActiveSessions int `json:"active_sessions"`
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (*SummaryCounts, error) {
	var c SummaryCounts
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM exams),
			(SELECT COUNT(*) FROM question_banks),
			(SELECT COUNT(*) FROM questions),
			(SELECT COUNT(*) FROM exam_sessions WHERE status = $1)`,
		model.SessionStatusInProgress,
	).Scan(&c.Students, &c.Exams, &c.QuestionBanks, &c.Questions, &c.ActiveSessions)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetExamStatusCounts retrieves the distribution of exams by status.
func (r *DashboardRepository) GetExamStatusCounts(ctx context.Context) (map[model.ExamStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM exams GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.ExamStatus]int)
	for rows.Next() {
		var status model.ExamStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// GetQuestionTypeCounts retrieves how many authored questions exist per item format.
func (r *DashboardRepository) GetQuestionTypeCounts(ctx context.Context) (map[quiz.Type]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT question_type, COUNT(*) FROM questions GROUP BY question_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[quiz.Type]int)
	for rows.Next() {
		var t quiz.Type
		var count int
		if err := rows.Scan(&t, &count); err != nil {
			return nil, err
		}
		counts[t] = count
	}
	return counts, rows.Err()
}

// DashboardExamResult summarises completed sessions of one published exam.
type DashboardExamResult struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	CompletedCount  int       `json:"completed_count"`
	AverageAccuracy *float64  `json:"average_accuracy"`
}

// GetRecentExamResults retrieves the N published exams with the most recent
// submissions, with their completion count and mean accuracy.
func (r *DashboardRepository) GetRecentExamResults(ctx context.Context, limit int) ([]DashboardExamResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.title, COUNT(s.id), AVG(s.accuracy)
		 FROM exams e
		 JOIN exam_sessions s ON s.exam_id = e.id AND s.status = $1
		 WHERE e.status = $2
		 GROUP BY e.id, e.title
		 ORDER BY MAX(s.finished_at) DESC
		 LIMIT $3`,
		model.SessionStatusCompleted, model.ExamStatusPublished, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []DashboardExamResult{}
	for rows.Next() {
		var res DashboardExamResult
		if err := rows.Scan(&res.ID, &res.Title, &res.CompletedCount, &res.AverageAccuracy); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
