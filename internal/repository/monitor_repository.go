package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/nurseprep-backend/internal/config"
	"github.com/stemsi/nurseprep-backend/internal/model"
)

// MonitorRepository provides data access for the live exam monitor.
// It combines PostgreSQL (session state) and Redis (autosave buffers).
type MonitorRepository struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

// NewMonitorRepository creates a new MonitorRepository.
func NewMonitorRepository(pool *pgxpool.Pool, rdb *redis.Client) *MonitorRepository {
	return &MonitorRepository{pool: pool, rdb: rdb}
}

// GetInProgressStudentIDs returns all student IDs with an open session for the given exam.
func (r *MonitorRepository) GetInProgressStudentIDs(ctx context.Context, examID uuid.UUID) ([]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT student_id FROM exam_sessions WHERE exam_id = $1 AND status = $2`,
		examID, model.SessionStatusInProgress,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetAnsweredCounts returns the count of persisted answers for every student
// who has at least one answer recorded in the given exam.
func (r *MonitorRepository) GetAnsweredCounts(ctx context.Context, examID uuid.UUID) (map[int]int64, error) {
	result := make(map[int]int64)

	rows, err := r.pool.Query(ctx,
		`SELECT student_id, COUNT(*)
		 FROM student_answers
		 WHERE exam_id = $1
		 GROUP BY student_id`,
		examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var sid int
		var count int64
		if err := rows.Scan(&sid, &count); err != nil {
			return nil, err
		}
		result[sid] = count
	}

	return result, rows.Err()
}

// GetBufferedCounts returns the size of each student's autosave buffer.
// Answers land there before the autosave worker persists them.
func (r *MonitorRepository) GetBufferedCounts(ctx context.Context, examID uuid.UUID, studentIDs []int) (map[int]int64, error) {
	counts := make(map[int]int64, len(studentIDs))
	if len(studentIDs) == 0 {
		return counts, nil
	}

	pipe := r.rdb.Pipeline()
	cmds := make([]*redis.IntCmd, len(studentIDs))
	for i, sid := range studentIDs {
		cmds[i] = pipe.HLen(ctx, config.CacheKey.StudentAnswersKey(examID.String(), sid))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("hlen pipeline: %w", err)
	}

	for i, sid := range studentIDs {
		if n := cmds[i].Val(); n > 0 {
			counts[sid] = n
		}
	}
	return counts, nil
}
