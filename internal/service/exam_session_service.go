package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/nurseprep-backend/internal/config"
	"github.com/stemsi/nurseprep-backend/internal/metrics"
	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/quiz"
	"github.com/stemsi/nurseprep-backend/internal/repository"
	"github.com/stemsi/nurseprep-backend/internal/response"
)

// Session errors.
var (
	ErrExamNotAvailable    = errors.New("exam is not available for joining")
	ErrInvalidEntryToken   = errors.New("invalid entry token")
	ErrNoExamSession       = errors.New("no session for this exam")
	ErrSessionCompleted    = errors.New("exam session is already completed")
	ErrSessionNotCompleted = errors.New("exam session is not completed")
	ErrAnswerCheckDisabled = errors.New("answer checking is disabled for this exam")
	ErrQuestionNotInExam   = errors.New("question does not belong to this exam")
)

// submittedTTL keeps the submitted flag well past the longest exam window.
const submittedTTL = 24 * time.Hour

// ExamSessionService handles exam session business logic.
type ExamSessionService struct {
	sessionRepo  *repository.ExamSessionRepository
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	examService  *ExamService
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewExamSessionService creates a new ExamSessionService.
func NewExamSessionService(
	sessionRepo *repository.ExamSessionRepository,
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	examService *ExamService,
	rdb *redis.Client,
	log zerolog.Logger,
) *ExamSessionService {
	return &ExamSessionService{
		sessionRepo:  sessionRepo,
		examRepo:     examRepo,
		questionRepo: questionRepo,
		examService:  examService,
		rdb:          rdb,
		log:          log.With().Str("component", "exam_session_service").Logger(),
	}
}

// LobbyStatus represents the concrete state of an exam in the lobby.
type LobbyStatus string

const (
	LobbyStatusAvailable  LobbyStatus = "AVAILABLE"
	LobbyStatusInProgress LobbyStatus = "IN_PROGRESS"
	LobbyStatusCompleted  LobbyStatus = "COMPLETED"
)

// LobbyExam represents an exam as displayed in the student lobby.
type LobbyExam struct {
	model.Exam
	LobbyStatus   LobbyStatus          `json:"lobby_status"`
	SessionStatus *model.SessionStatus `json:"session_status,omitempty"`
	Score         *int                 `json:"score,omitempty"`
	Total         *int                 `json:"total,omitempty"`
	Accuracy      *float64             `json:"accuracy,omitempty"`
}

// GetLobby returns every published exam with the student's own session status.
func (s *ExamSessionService) GetLobby(ctx context.Context, studentID int) ([]LobbyExam, error) {
	exams, err := s.examRepo.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published exams: %w", err)
	}

	sessions, err := s.sessionRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessionMap := make(map[uuid.UUID]*model.ExamSession, len(sessions))
	for i := range sessions {
		sessionMap[sessions[i].ExamID] = &sessions[i]
	}

	lobby := make([]LobbyExam, 0, len(exams))
	for _, exam := range exams {
		exam.EntryToken = ""
		entry := LobbyExam{Exam: exam, LobbyStatus: LobbyStatusAvailable}

		if sess, ok := sessionMap[exam.ID]; ok {
			entry.SessionStatus = &sess.Status
			entry.LobbyStatus = LobbyStatusInProgress
			if sess.Status == model.SessionStatusCompleted {
				entry.LobbyStatus = LobbyStatusCompleted
				entry.Score = sess.Score
				entry.Total = sess.Total
				entry.Accuracy = sess.Accuracy
			}
		}
		lobby = append(lobby, entry)
	}
	return lobby, nil
}

// JoinExam validates the entry token and creates a session for the student.
// Joining again returns the existing session.
func (s *ExamSessionService) JoinExam(ctx context.Context, examID uuid.UUID, studentID int, entryToken string) (*model.ExamSession, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}

	if exam.Status != model.ExamStatusPublished {
		return nil, ErrExamNotAvailable
	}
	if exam.EntryToken != entryToken {
		return nil, ErrInvalidEntryToken
	}

	existing, err := s.sessionRepo.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing session: %w", err)
	}

	// Re-join from another device: make sure Redis has the start time.
	if existing != nil {
		s.cacheStartTime(ctx, existing)
		return existing, nil
	}

	session := &model.ExamSession{
		ExamID:    examID,
		StudentID: studentID,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Concurrent join detected
			existing, fetchErr := s.sessionRepo.GetByExamAndStudent(ctx, examID, studentID)
			if fetchErr != nil {
				return nil, fmt.Errorf("concurrent join detected, but fetch failed: %w", fetchErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.cacheStartTime(ctx, session)
	s.publish(ctx, examID, model.MonitorEvent{Type: model.MonitorEventJoined, StudentID: studentID})
	s.log.Info().
		Int("student_id", studentID).
		Str("exam_id", examID.String()).
		Msg("Student joined exam")
	return session, nil
}

func (s *ExamSessionService) publish(ctx context.Context, examID uuid.UUID, ev model.MonitorEvent) {
	if err := PublishMonitorEvent(ctx, s.rdb, examID.String(), ev); err != nil {
		s.log.Warn().Err(err).Str("event", string(ev.Type)).Msg("Failed to publish monitor event")
	}
}

func (s *ExamSessionService) cacheStartTime(ctx context.Context, sess *model.ExamSession) {
	startKey := config.CacheKey.StudentExamSessionStartKey(sess.ExamID.String(), sess.StudentID)
	if err := s.rdb.Set(ctx, startKey, sess.StartedAt.Unix(), 0).Err(); err != nil {
		// GetExamState falls back to Postgres.
		s.log.Warn().Err(err).Msg("Failed to cache start time")
	}
}

// VerifyActiveSession checks that a student has an IN_PROGRESS session that
// has not been submitted yet.
func (s *ExamSessionService) VerifyActiveSession(ctx context.Context, examID uuid.UUID, studentID int) error {
	sess, err := s.sessionRepo.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoExamSession
		}
		return fmt.Errorf("get session: %w", err)
	}
	if sess.Status == model.SessionStatusCompleted {
		return ErrSessionCompleted
	}

	submitted, err := s.rdb.Exists(ctx, config.CacheKey.StudentSubmittedKey(examID.String(), studentID)).Result()
	if err != nil {
		return fmt.Errorf("check submitted: %w", err)
	}
	if submitted > 0 {
		return ErrSessionCompleted
	}
	return nil
}

// GetPaper returns the student paper of an exam the student has joined.
func (s *ExamSessionService) GetPaper(ctx context.Context, examID uuid.UUID, studentID int) (*model.ExamPaper, error) {
	if err := s.VerifyActiveSession(ctx, examID, studentID); err != nil {
		return nil, err
	}
	return s.examService.GetExamPaper(ctx, examID)
}

// GetExamState retrieves the autosaved answers and remaining time of a session.
func (s *ExamSessionService) GetExamState(ctx context.Context, examID uuid.UUID, studentID int) (*model.ExamSessionState, error) {
	answers, err := s.loadAnswers(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}

	durationStr, err := s.rdb.Get(ctx, config.CacheKey.ExamDurationKey(examID.String())).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrExamNotCached
		}
		return nil, fmt.Errorf("get exam duration: %w", err)
	}
	durationMinutes, err := strconv.Atoi(durationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid duration format in redis: %w", err)
	}

	startTime, err := s.startTime(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}

	remaining := time.Until(startTime.Add(time.Duration(durationMinutes) * time.Minute))
	if remaining < 0 {
		remaining = 0
	}

	return &model.ExamSessionState{
		ExamID:           examID,
		StudentID:        studentID,
		AutosavedAnswers: answers,
		RemainingTime:    remaining.Seconds(),
	}, nil
}

// startTime reads the session start from Redis, healing the cache from
// Postgres on a miss.
func (s *ExamSessionService) startTime(ctx context.Context, examID uuid.UUID, studentID int) (time.Time, error) {
	startKey := config.CacheKey.StudentExamSessionStartKey(examID.String(), studentID)

	val, err := s.rdb.Get(ctx, startKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		sess, dbErr := s.sessionRepo.GetByExamAndStudent(ctx, examID, studentID)
		if dbErr != nil {
			if errors.Is(dbErr, pgx.ErrNoRows) {
				return time.Time{}, ErrNoExamSession
			}
			return time.Time{}, fmt.Errorf("get session: %w", dbErr)
		}
		s.cacheStartTime(ctx, sess)
		return sess.StartedAt, nil
	case err != nil:
		return time.Time{}, fmt.Errorf("redis error getting start time: %w", err)
	}

	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start time format in cache: %w", err)
	}
	return time.Unix(unix, 0), nil
}

// loadAnswers merges the persisted answers with the Redis autosave buffer.
// Redis wins because it is written first.
func (s *ExamSessionService) loadAnswers(ctx context.Context, examID uuid.UUID, studentID int) (map[string]json.RawMessage, error) {
	buffered, err := s.rdb.HGetAll(ctx, config.CacheKey.StudentAnswersKey(examID.String(), studentID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get autosaved answers: %w", err)
	}

	answers, err := s.sessionRepo.ListAnswers(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("list stored answers: %w", err)
	}
	for qid, raw := range buffered {
		answers[qid] = json.RawMessage(raw)
	}
	return answers, nil
}

// findQuestion returns the cached question qid of the exam.
func (s *ExamSessionService) findQuestion(ctx context.Context, examID uuid.UUID, qid string) (*model.Question, error) {
	questions, err := s.examService.GetAnswerKey(ctx, examID)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		if questions[i].ID.String() == qid {
			return &questions[i], nil
		}
	}
	return nil, ErrQuestionNotInExam
}

// SaveAnswer stores one answer in the Redis buffer and queues it for
// Postgres. The answer must decode as the question's type.
func (s *ExamSessionService) SaveAnswer(ctx context.Context, examID uuid.UUID, studentID int, qid string, raw json.RawMessage) error {
	if _, err := uuid.Parse(qid); err != nil {
		return ErrQuestionNotInExam
	}
	q, err := s.findQuestion(ctx, examID, qid)
	if err != nil {
		return err
	}
	if _, err := model.DecodeAnswer(q.QuestionType, raw); err != nil {
		return err
	}

	job, err := json.Marshal(model.AnswerJob{
		StudentID: studentID,
		ExamID:    examID.String(),
		QID:       qid,
		Answer:    raw,
	})
	if err != nil {
		return err
	}
	return bufferAnswer(ctx, s.rdb, examID.String(), studentID, qid, raw, job)
}

// saveAnswerScript buffers an answer and queues its persist job unless the
// session carries the submitted flag. It runs atomically against the SetNX in
// Submit, so every buffered answer is either graded or rejected.
//
// KEYS: submitted flag, answers hash, persist queue. ARGV: qid, answer, job.
var saveAnswerScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("HSET", KEYS[2], ARGV[1], ARGV[2])
redis.call("RPUSH", KEYS[3], ARGV[3])
return 1
`)

func bufferAnswer(ctx context.Context, rdb redis.Scripter, examID string, studentID int, qid string, raw, job []byte) error {
	keys := []string{
		config.CacheKey.StudentSubmittedKey(examID, studentID),
		config.CacheKey.StudentAnswersKey(examID, studentID),
		config.WorkerKey.PersistAnswersQueue,
	}
	saved, err := saveAnswerScript.Run(ctx, rdb, keys, qid, raw, job).Int()
	if err != nil {
		return fmt.Errorf("autosave: %w", err)
	}
	if saved == 0 {
		return ErrSessionCompleted
	}
	return nil
}

// CheckAnswer evaluates the student's current answer to one question. Only
// allowed when the exam enables answer checking.
func (s *ExamSessionService) CheckAnswer(ctx context.Context, examID uuid.UUID, studentID int, qid string) (*quiz.Verdict, error) {
	settings, err := s.examService.GetSettings(ctx, examID)
	if err != nil {
		return nil, err
	}
	if !settings.AllowAnswerCheck {
		return nil, ErrAnswerCheckDisabled
	}

	q, err := s.findQuestion(ctx, examID, qid)
	if err != nil {
		return nil, err
	}

	raw, err := s.rdb.HGet(ctx, config.CacheKey.StudentAnswersKey(examID.String(), studentID), qid).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get answer: %w", err)
	}

	v, err := EvaluateOne(q, raw)
	if err != nil {
		if errors.Is(err, quiz.ErrInvalidQuestionData) {
			metrics.ObserveInvalid(q.QuestionType)
		}
		return nil, err
	}
	return &v, nil
}

// SubmitResult is returned to the student after submission.
type SubmitResult struct {
	Score    int     `json:"score"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
	Percent  float64 `json:"percent"`
}

// Submit grades every answer of the session and queues the result for the
// scoring worker. A session can be submitted once.
func (s *ExamSessionService) Submit(ctx context.Context, examID uuid.UUID, studentID int) (*SubmitResult, error) {
	if err := s.VerifyActiveSession(ctx, examID, studentID); err != nil {
		return nil, err
	}

	questions, err := s.examService.GetAnswerKey(ctx, examID)
	if err != nil {
		return nil, err
	}

	// Answers are read after the flag is set so no autosave can land between
	// the read and the grade.
	submittedKey := config.CacheKey.StudentSubmittedKey(examID.String(), studentID)
	ok, err := s.rdb.SetNX(ctx, submittedKey, time.Now().Unix(), submittedTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("mark submitted: %w", err)
	}
	if !ok {
		return nil, ErrSessionCompleted
	}
	answers, err := s.loadAnswers(ctx, examID, studentID)
	if err != nil {
		s.rdb.Del(ctx, submittedKey)
		return nil, err
	}

	log := s.log.With().Int("student_id", studentID).Str("exam_id", examID.String()).Logger()
	graded, err := GradeSession(log, questions, answers)
	if err != nil {
		s.rdb.Del(ctx, submittedKey)
		return nil, fmt.Errorf("grade session: %w", err)
	}
	metrics.ObserveVerdicts(graded.Result.PerItem...)
	for _, t := range graded.InvalidTypes {
		metrics.ObserveInvalid(t)
	}

	job, err := json.Marshal(model.ScoreJob{
		StudentID: studentID,
		ExamID:    examID.String(),
		Review:    model.NewSessionReview(graded.Result),
	})
	if err != nil {
		s.rdb.Del(ctx, submittedKey)
		return nil, err
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistScoresQueue, job).Err(); err != nil {
		s.rdb.Del(ctx, submittedKey)
		return nil, fmt.Errorf("queue score: %w", err)
	}

	s.publish(ctx, examID, model.MonitorEvent{Type: model.MonitorEventSubmitted, StudentID: studentID})
	log.Info().
		Int("score", graded.Result.Score).
		Int("total", graded.Result.Total).
		Msg("Exam submitted and graded")

	return &SubmitResult{
		Score:    graded.Result.Score,
		Total:    graded.Result.Total,
		Accuracy: graded.Result.Accuracy,
		Percent:  graded.Result.Percent(),
	}, nil
}

// GetReview returns a completed session with every question, its answer key
// and rationale, the student's answer and the stored verdict.
func (s *ExamSessionService) GetReview(ctx context.Context, examID uuid.UUID, studentID int) (*model.SessionReviewResponse, error) {
	sess, err := s.sessionRepo.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoExamSession
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.Status != model.SessionStatusCompleted || len(sess.Review) == 0 {
		return nil, ErrSessionNotCompleted
	}

	var review model.SessionReview
	if err := json.Unmarshal(sess.Review, &review); err != nil {
		return nil, fmt.Errorf("unmarshal review: %w", err)
	}

	questions, err := s.examService.GetAnswerKey(ctx, examID)
	if err != nil {
		exam, examErr := s.examRepo.GetByID(ctx, examID)
		if examErr != nil {
			return nil, fmt.Errorf("get exam: %w", examErr)
		}
		if questions, err = s.questionRepo.ListByBank(ctx, exam.QBankID); err != nil {
			return nil, fmt.Errorf("list questions: %w", err)
		}
	}

	answers, err := s.sessionRepo.ListAnswers(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	verdicts := make(map[string]*quiz.Verdict, len(review.Items))
	for i := range review.Items {
		verdicts[review.Items[i].QuestionID] = &review.Items[i]
	}

	items := make([]model.ReviewItem, len(questions))
	for i, q := range questions {
		qid := q.ID.String()
		items[i] = model.ReviewItem{
			Question: q,
			Answer:   answers[qid],
			Verdict:  verdicts[qid],
		}
	}

	return &model.SessionReviewResponse{
		ExamID:   examID,
		Score:    review.Score,
		Total:    review.Total,
		Accuracy: review.Accuracy,
		Items:    items,
	}, nil
}

// GetExamResults retrieves paginated exam results with optional filters.
func (s *ExamSessionService) GetExamResults(ctx context.Context, examID uuid.UUID, page, perPage int, cohort string, status model.SessionStatus) ([]repository.ExamResult, *response.Pagination, error) {
	page, perPage = clampPage(page, perPage)

	results, total, err := s.sessionRepo.ListByExam(ctx, examID, page, perPage, cohort, status)
	if err != nil {
		return nil, nil, err
	}
	if results == nil {
		results = []repository.ExamResult{}
	}
	return results, response.NewPagination(page, perPage, int(total)), nil
}
