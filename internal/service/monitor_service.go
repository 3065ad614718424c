package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/nurseprep-backend/internal/config"
	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/repository"
)

// monitorRosterLimit caps the roster loaded into one snapshot.
const monitorRosterLimit = 1000

// MonitorService builds the live exam monitor for proctors.
type MonitorService struct {
	monitorRepo *repository.MonitorRepository
	sessionRepo *repository.ExamSessionRepository
	examRepo    *repository.ExamRepository
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(
	monitorRepo *repository.MonitorRepository,
	sessionRepo *repository.ExamSessionRepository,
	examRepo *repository.ExamRepository,
) *MonitorService {
	return &MonitorService{
		monitorRepo: monitorRepo,
		sessionRepo: sessionRepo,
		examRepo:    examRepo,
	}
}

// GetStudentProgress returns the answered count of every student in the exam.
// Persisted counts and autosave buffers are fetched in parallel; a buffer
// that is ahead of Postgres wins.
func (s *MonitorService) GetStudentProgress(ctx context.Context, examID uuid.UUID) (map[int]int64, error) {
	var (
		persisted   map[int]int64
		buffered    map[int]int64
		persistErr  error
		bufferedErr error
		wg          sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		persisted, persistErr = s.monitorRepo.GetAnsweredCounts(ctx, examID)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ids, err := s.monitorRepo.GetInProgressStudentIDs(ctx, examID)
		if err != nil {
			bufferedErr = err
			return
		}
		buffered, bufferedErr = s.monitorRepo.GetBufferedCounts(ctx, examID, ids)
	}()

	wg.Wait()

	// Persisted counts are required; buffers are best-effort.
	if persistErr != nil {
		return nil, persistErr
	}
	if bufferedErr == nil {
		for sid, n := range buffered {
			if n > persisted[sid] {
				persisted[sid] = n
			}
		}
	}
	return persisted, nil
}

// Snapshot returns the full roster of an exam with per-student progress.
func (s *MonitorService) Snapshot(ctx context.Context, examID uuid.UUID) (*model.MonitorSnapshot, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}

	results, _, err := s.sessionRepo.ListByExam(ctx, examID, 1, monitorRosterLimit, "", "")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	progress, err := s.GetStudentProgress(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("student progress: %w", err)
	}

	snap := &model.MonitorSnapshot{
		ExamID:         exam.ID.String(),
		Title:          exam.Title,
		Duration:       exam.DurationMinutes,
		TotalQuestions: exam.QuestionCount,
		TotalJoined:    len(results),
		Students:       make([]model.StudentProgress, 0, len(results)),
	}
	for _, res := range results {
		switch res.Status {
		case model.SessionStatusInProgress:
			snap.TotalInProgress++
		case model.SessionStatusCompleted:
			snap.TotalCompleted++
		}
		snap.Students = append(snap.Students, model.StudentProgress{
			StudentID:     res.StudentID,
			Username:      res.Username,
			Name:          res.Name,
			Cohort:        res.Cohort,
			Status:        res.Status,
			AnsweredCount: progress[res.StudentID],
			Score:         res.Score,
			Total:         res.Total,
			StartedAt:     res.StartedAt,
		})
	}
	return snap, nil
}

// PublishMonitorEvent pushes a session event to proctors attached to the
// exam's live monitor. Nobody listening is not an error.
func PublishMonitorEvent(ctx context.Context, rdb *redis.Client, examID string, ev model.MonitorEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return rdb.Publish(ctx, config.CacheKey.ExamMonitorChannel(examID), payload).Err()
}
