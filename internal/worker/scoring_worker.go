package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/nurseprep-backend/internal/config"
	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/repository"
	"github.com/stemsi/nurseprep-backend/internal/service"
)

const (
	DefaultScoreBatchSize = 50
	ScoreBatchTimeout     = 2 * time.Second
	ScorePollTimeout      = 1 * time.Second
)

// ScoringWorker consumes persist_scores_queue and stores graded sessions.
type ScoringWorker struct {
	pool        *pgxpool.Pool
	rdb         *redis.Client
	sessionRepo *repository.ExamSessionRepository
	batchSize   int
	log         zerolog.Logger
}

func NewScoringWorker(
	pool *pgxpool.Pool,
	rdb *redis.Client,
	sessionRepo *repository.ExamSessionRepository,
	batchSize int,
	log zerolog.Logger,
) *ScoringWorker {
	if batchSize <= 0 {
		batchSize = DefaultScoreBatchSize
	}
	return &ScoringWorker{
		pool:        pool,
		rdb:         rdb,
		sessionRepo: sessionRepo,
		batchSize:   batchSize,
		log:         log.With().Str("component", "scoring_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ScoringWorker) Start(ctx context.Context) {
	w.log.Info().Int("batch_size", w.batchSize).Msg("ScoringWorker started")

	batch := make([]*model.ScoreJob, 0, w.batchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= w.batchSize || time.Since(lastFlush) >= ScoreBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ScorePollTimeout, config.WorkerKey.PersistScoresQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var job model.ScoreJob
			if err := json.Unmarshal([]byte(item[1]), &job); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &job)
		}
	}
}

// ----------------------------------------------------------------
// Batch update wrapper
// ----------------------------------------------------------------

func (w *ScoringWorker) flushSafe(ctx context.Context, batch []*model.ScoreJob) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkUpdateScores(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("size", len(batch)).Msg("Bulk score update failed, using fallback")

		done := make([]*model.ScoreJob, 0, len(batch))
		for _, job := range batch {
			if err := w.persistSingle(ctx, job); err != nil {
				w.log.Error().Err(err).
					Int("student_id", job.StudentID).
					Str("exam_id", job.ExamID).
					Msg("persistSingle failed, requeueing")
				w.requeue(ctx, job)
				continue
			}
			done = append(done, job)
		}
		w.afterPersist(ctx, done)
		return
	}

	w.afterPersist(ctx, batch)
}

// requeue pushes a score job back to the queue, logging when it cannot.
func (w *ScoringWorker) requeue(ctx context.Context, job *model.ScoreJob) {
	raw, err := json.Marshal(job)
	if err != nil {
		w.log.Error().Err(err).Int("student_id", job.StudentID).Msg("Dropping unencodable score job")
		return
	}
	if err := w.rdb.RPush(ctx, config.WorkerKey.PersistScoresQueue, raw).Err(); err != nil {
		w.log.Error().Err(err).
			Int("student_id", job.StudentID).
			Str("exam_id", job.ExamID).
			Msg("Requeue failed, score job lost")
	}
}

// afterPersist drops the Redis session buffers of stored sessions and
// notifies the live monitor.
func (w *ScoringWorker) afterPersist(ctx context.Context, jobs []*model.ScoreJob) {
	if len(jobs) == 0 {
		return
	}

	pipe := w.rdb.Pipeline()
	for _, job := range jobs {
		pipe.Del(ctx,
			config.CacheKey.StudentAnswersKey(job.ExamID, job.StudentID),
			config.CacheKey.StudentExamSessionStartKey(job.ExamID, job.StudentID),
		)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Warn().Err(err).Msg("Failed to clear session buffers")
	}

	for _, job := range jobs {
		score, total := job.Review.Score, job.Review.Total
		ev := model.MonitorEvent{
			Type:      model.MonitorEventScored,
			StudentID: job.StudentID,
			Score:     &score,
			Total:     &total,
		}
		if err := service.PublishMonitorEvent(ctx, w.rdb, job.ExamID, ev); err != nil {
			w.log.Debug().Err(err).Msg("Monitor publish failed")
		}
	}

	w.log.Info().Int("count", len(jobs)).Msg("Scores persisted")
}

// ----------------------------------------------------------------
// BULK PostgreSQL UPDATE using UNNEST + alias
// ----------------------------------------------------------------

// scoreColumns is a batch split into the parallel arrays fed to UNNEST.
type scoreColumns struct {
	examIDs     []uuid.UUID
	studentIDs  []int
	scores      []int
	totals      []int
	accuracies  []float64
	reviews     []string
	finishedAts []time.Time
}

func buildScoreColumns(batch []*model.ScoreJob, now time.Time) (*scoreColumns, error) {
	n := len(batch)
	cols := &scoreColumns{
		examIDs:     make([]uuid.UUID, 0, n),
		studentIDs:  make([]int, 0, n),
		scores:      make([]int, 0, n),
		totals:      make([]int, 0, n),
		accuracies:  make([]float64, 0, n),
		reviews:     make([]string, 0, n),
		finishedAts: make([]time.Time, 0, n),
	}

	for _, job := range batch {
		examID, err := uuid.Parse(job.ExamID)
		if err != nil {
			return nil, err
		}
		review, err := json.Marshal(job.Review)
		if err != nil {
			return nil, err
		}
		cols.examIDs = append(cols.examIDs, examID)
		cols.studentIDs = append(cols.studentIDs, job.StudentID)
		cols.scores = append(cols.scores, job.Review.Score)
		cols.totals = append(cols.totals, job.Review.Total)
		cols.accuracies = append(cols.accuracies, job.Review.Accuracy)
		cols.reviews = append(cols.reviews, string(review))
		cols.finishedAts = append(cols.finishedAts, now)
	}
	return cols, nil
}

func (w *ScoringWorker) bulkUpdateScores(ctx context.Context, batch []*model.ScoreJob) error {
	cols, err := buildScoreColumns(batch, time.Now())
	if err != nil {
		return err
	}

	query := `
		UPDATE exam_sessions AS s
		SET status = $8,
		    score = t.score,
		    total = t.total,
		    accuracy = t.accuracy,
		    review = t.review,
		    finished_at = t.finished_at
		FROM (
			SELECT
				u.exam_id,
				u.student_id,
				u.score,
				u.total,
				u.accuracy,
				u.review,
				u.finished_at
			FROM UNNEST(
				$1::uuid[],
				$2::int[],
				$3::int[],
				$4::int[],
				$5::float8[],
				$6::jsonb[],
				$7::timestamptz[]
			) AS u (exam_id, student_id, score, total, accuracy, review, finished_at)
		) AS t
		WHERE s.exam_id = t.exam_id
		  AND s.student_id = t.student_id
	`

	_, err = w.pool.Exec(ctx, query,
		cols.examIDs, cols.studentIDs, cols.scores, cols.totals,
		cols.accuracies, cols.reviews, cols.finishedAts,
		model.SessionStatusCompleted,
	)
	return err
}

// ----------------------------------------------------------------
// FALLBACK single update
// ----------------------------------------------------------------

func (w *ScoringWorker) persistSingle(ctx context.Context, job *model.ScoreJob) error {
	examID, err := uuid.Parse(job.ExamID)
	if err != nil {
		return err
	}
	return w.sessionRepo.Complete(ctx, examID, job.StudentID, job.Review)
}
