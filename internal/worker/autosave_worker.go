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
)

const (
	AnswerPollTimeout = 1 * time.Second
	AnswerRetryDelay  = 5 * time.Second
)

// AutosaveWorker consumes persist_answers_queue and UPSERTs answers to PostgreSQL.
type AutosaveWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewAutosaveWorker creates a new AutosaveWorker.
func NewAutosaveWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AutosaveWorker {
	return &AutosaveWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "autosave_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *AutosaveWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *AutosaveWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, AnswerPollTimeout, config.WorkerKey.PersistAnswersQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	job, err := decodeAnswerJob(result[1])
	if err != nil {
		w.log.Error().Err(err).Msg("Dropping malformed answer job")
		return
	}

	if err := w.persistAnswer(ctx, job); err != nil {
		w.requeue(ctx, job, result[1], err)
		time.Sleep(AnswerRetryDelay)
	}
}

// requeue pushes a failed job back to the queue for retry.
func (w *AutosaveWorker) requeue(ctx context.Context, job *answerRow, raw string, cause error) {
	w.log.Error().Err(cause).
		Int("student_id", job.studentID).
		Str("exam_id", job.examID.String()).
		Msg("Persist error, retrying in 5s")
	if err := w.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, raw).Err(); err != nil {
		w.log.Error().Err(err).
			Int("student_id", job.studentID).
			Str("exam_id", job.examID.String()).
			Msg("Requeue failed, answer job lost")
	}
}

// answerRow is an AnswerJob with its identifiers parsed.
type answerRow struct {
	examID     uuid.UUID
	studentID  int
	questionID uuid.UUID
	answer     json.RawMessage
}

func decodeAnswerJob(raw string) (*answerRow, error) {
	var job model.AnswerJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, err
	}
	examID, err := uuid.Parse(job.ExamID)
	if err != nil {
		return nil, err
	}
	questionID, err := uuid.Parse(job.QID)
	if err != nil {
		return nil, err
	}
	if len(job.Answer) == 0 || !json.Valid(job.Answer) {
		return nil, errors.New("answer is not valid JSON")
	}
	return &answerRow{examID: examID, studentID: job.StudentID, questionID: questionID, answer: job.Answer}, nil
}

func (w *AutosaveWorker) persistAnswer(ctx context.Context, r *answerRow) error {
	_, err := w.pool.Exec(ctx,
		`INSERT INTO student_answers (exam_id, student_id, question_id, answer)
		 VALUES ($1, $2, $3, $4::jsonb)
		 ON CONFLICT (exam_id, student_id, question_id) DO UPDATE
		 SET answer = EXCLUDED.answer, updated_at = NOW()`,
		r.examID, r.studentID, r.questionID, string(r.answer),
	)
	return err
}

// drain processes all remaining items in the queue before shutdown.
func (w *AutosaveWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistAnswersQueue).Result()
		if err != nil {
			break
		}

		job, err := decodeAnswerJob(result)
		if err != nil {
			w.log.Error().Err(err).Msg("Drain decode error")
			continue
		}

		if err := w.persistAnswer(ctx, job); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
