package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/nurseprep-backend/internal/config"
	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/repository"
	"github.com/stemsi/nurseprep-backend/internal/response"
)

// Domain Errors
var (
	ErrNotExamAuthor    = errors.New("not the author of this exam")
	ErrNoQuestions      = errors.New("exam has no questions, cannot publish/start")
	ErrExamNotDraft     = errors.New("exam status is not DRAFT")
	ErrExamNotPublished = errors.New("exam status is not PUBLISHED")
	ErrExamNotCached    = errors.New("exam not published or not cached")
)

// ExamService handles exam business logic and Redis caching.
type ExamService struct {
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "exam_service").Logger(),
	}
}

// GetByID retrieves an exam by its UUID.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return s.examRepo.GetByID(ctx, id)
}

// ListByAuthor retrieves exams, filtered by author unless authorID is 0.
func (s *ExamService) ListByAuthor(ctx context.Context, authorID, page, perPage int) ([]model.Exam, *response.Pagination, error) {
	page, perPage = clampPage(page, perPage)

	exams, total, err := s.examRepo.ListByAuthorPaginated(ctx, authorID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	return exams, response.NewPagination(page, perPage, total), nil
}

// Create inserts a new exam as DRAFT.
func (s *ExamService) Create(ctx context.Context, authorID int, req *model.CreateExamRequest) (*model.Exam, error) {
	if _, err := s.questionRepo.GetBank(ctx, req.QBankID); err != nil {
		return nil, fmt.Errorf("get question bank: %w", err)
	}

	exam := &model.Exam{
		Title:            req.Title,
		AuthorID:         authorID,
		QBankID:          req.QBankID,
		DurationMinutes:  req.DurationMinutes,
		EntryToken:       req.EntryToken,
		AllowAnswerCheck: req.AllowAnswerCheck,
		Status:           model.ExamStatusDraft,
	}
	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// Update modifies an existing draft exam. authorID 0 skips the ownership check.
func (s *ExamService) Update(ctx context.Context, authorID int, examID uuid.UUID, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if authorID != 0 && exam.AuthorID != authorID {
		return nil, ErrNotExamAuthor
	}
	if exam.Status != model.ExamStatusDraft {
		return nil, ErrExamNotDraft
	}

	req.Apply(exam)
	if err := s.examRepo.Update(ctx, exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// Publish validates every question, caches the paper and answer key in Redis
// and marks the exam PUBLISHED. authorID 0 skips the ownership check.
func (s *ExamService) Publish(ctx context.Context, examID uuid.UUID, authorID int) error {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return fmt.Errorf("get exam: %w", err)
	}

	if authorID != 0 && exam.AuthorID != authorID {
		return ErrNotExamAuthor
	}
	if exam.Status != model.ExamStatusDraft {
		return ErrExamNotDraft
	}

	if err := s.WarmExamCache(ctx, exam); err != nil {
		return err
	}

	if err := s.examRepo.UpdateStatus(ctx, examID, model.ExamStatusPublished); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	s.log.Info().Str("exam_id", examID.String()).Msg("Exam published")
	return nil
}

// RefreshCache re-caches the paper and answer key for a published exam.
// Called when the bank is edited after publish.
func (s *ExamService) RefreshCache(ctx context.Context, examID uuid.UUID, authorID int) error {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return fmt.Errorf("get exam: %w", err)
	}

	if authorID != 0 && exam.AuthorID != authorID {
		return ErrNotExamAuthor
	}
	if exam.Status != model.ExamStatusPublished {
		return ErrExamNotPublished
	}

	if err := s.WarmExamCache(ctx, exam); err != nil {
		return err
	}

	s.log.Info().Str("exam_id", examID.String()).Msg("Cache refreshed")
	return nil
}

// WarmExamCache loads an exam's questions from PostgreSQL, validates them and
// writes the student paper, answer key and settings to Redis.
func (s *ExamService) WarmExamCache(ctx context.Context, exam *model.Exam) error {
	questions, err := s.questionRepo.ListByBank(ctx, exam.QBankID)
	if err != nil {
		return fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	paper := model.ExamPaper{
		ExamID:           exam.ID,
		Title:            exam.Title,
		Duration:         exam.DurationMinutes,
		AllowAnswerCheck: exam.AllowAnswerCheck,
		Questions:        make([]model.QuestionForStudent, len(questions)),
	}
	for i := range questions {
		if err := ValidateQuestion(&questions[i], i); err != nil {
			return err
		}
		paper.Questions[i] = questions[i].StudentView()
	}

	paperJSON, err := json.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshal paper: %w", err)
	}
	keyJSON, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshal answer key: %w", err)
	}
	settingsJSON, err := json.Marshal(model.ExamSettings{
		AllowAnswerCheck: exam.AllowAnswerCheck,
		DurationMinutes:  exam.DurationMinutes,
	})
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	id := exam.ID.String()
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.ExamPaperKey(id), paperJSON, 0)
	pipe.Set(ctx, config.CacheKey.ExamAnswerKey(id), keyJSON, 0)
	pipe.Set(ctx, config.CacheKey.ExamSettingsKey(id), settingsJSON, 0)
	pipe.Set(ctx, config.CacheKey.ExamDurationKey(id), exam.DurationMinutes, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("exam_id", id).
		Int("questions", len(questions)).
		Msg("Cache warmed")
	return nil
}

// PrewarmAllCaches loads all published exams into Redis on application startup.
func (s *ExamService) PrewarmAllCaches(ctx context.Context) error {
	exams, err := s.examRepo.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("list published exams: %w", err)
	}

	if len(exams) == 0 {
		s.log.Info().Msg("No published exams to prewarm")
		return nil
	}

	s.log.Info().Int("count", len(exams)).Msg("Prewarming published exams...")

	warmed := 0
	for i := range exams {
		if err := s.WarmExamCache(ctx, &exams[i]); err != nil {
			s.log.Warn().
				Err(err).
				Str("exam_id", exams[i].ID.String()).
				Msg("Failed to warm exam, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(exams)).
		Msg("Prewarming complete")
	return nil
}

// GetExamPaper retrieves the cached student paper from Redis.
func (s *ExamService) GetExamPaper(ctx context.Context, examID uuid.UUID) (*model.ExamPaper, error) {
	var paper model.ExamPaper
	if err := s.getCached(ctx, config.CacheKey.ExamPaperKey(examID.String()), &paper); err != nil {
		return nil, err
	}
	return &paper, nil
}

// GetAnswerKey retrieves the full questions of a published exam, answers
// included, in paper order.
func (s *ExamService) GetAnswerKey(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	var questions []model.Question
	if err := s.getCached(ctx, config.CacheKey.ExamAnswerKey(examID.String()), &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// GetSettings retrieves the cached runtime flags of a published exam.
func (s *ExamService) GetSettings(ctx context.Context, examID uuid.UUID) (*model.ExamSettings, error) {
	var settings model.ExamSettings
	if err := s.getCached(ctx, config.CacheKey.ExamSettingsKey(examID.String()), &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *ExamService) getCached(ctx context.Context, key string, v any) error {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrExamNotCached
		}
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}
