package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/quiz"
	"github.com/stemsi/nurseprep-backend/internal/repository"
	"github.com/stemsi/nurseprep-backend/internal/response"
)

var ErrNotQBankAuthor = errors.New("not the author of this question bank")

// QuestionValidationError reports the first malformed question of an
// authoring request. Index is the position in the request, -1 for a single
// question.
type QuestionValidationError struct {
	Index int
	Err   *quiz.InvalidQuestionError
}

func (e *QuestionValidationError) Error() string {
	if e.Index < 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("questions[%d]: %s", e.Index, e.Err.Error())
}

func (e *QuestionValidationError) Unwrap() error { return e.Err }

// Fields renders the error for the response envelope.
func (e *QuestionValidationError) Fields() map[string]string {
	key := e.Err.Field
	if e.Index >= 0 {
		key = fmt.Sprintf("questions[%d].%s", e.Index, e.Err.Field)
	}
	return map[string]string{key: e.Err.Reason}
}

// ValidateQuestion maps q into the grading model and checks it. The returned
// error is a *QuestionValidationError when the data is malformed.
func ValidateQuestion(q *model.Question, index int) error {
	err := quiz.Validate(q.ToQuiz())
	if err == nil {
		return nil
	}
	var iqe *quiz.InvalidQuestionError
	if errors.As(err, &iqe) {
		return &QuestionValidationError{Index: index, Err: iqe}
	}
	return err
}

// QuestionService handles question bank authoring.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// ListQBanks retrieves question banks with pagination.
func (s *QuestionService) ListQBanks(ctx context.Context, page, perPage int, search string) ([]model.QuestionBank, *response.Pagination, error) {
	page, perPage = clampPage(page, perPage)

	banks, total, err := s.questionRepo.ListBanksPaginated(ctx, search, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if banks == nil {
		banks = []model.QuestionBank{}
	}
	return banks, response.NewPagination(page, perPage, total), nil
}

// GetQBank retrieves a question bank.
func (s *QuestionService) GetQBank(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	return s.questionRepo.GetBank(ctx, id)
}

// CreateQBank creates an empty question bank owned by authorID.
func (s *QuestionService) CreateQBank(ctx context.Context, authorID int, req *model.CreateQuestionBankRequest) (*model.QuestionBank, error) {
	bank := &model.QuestionBank{
		AuthorID:    &authorID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.questionRepo.CreateBank(ctx, bank); err != nil {
		return nil, err
	}
	return bank, nil
}

// canWrite reports whether the admin may author questions in the bank.
func canWrite(bank *model.QuestionBank, adminID int, writeAll bool) bool {
	return writeAll || (bank.AuthorID != nil && *bank.AuthorID == adminID)
}

// ListQuestions retrieves all questions of a bank, answers included.
func (s *QuestionService) ListQuestions(ctx context.Context, qbankID uuid.UUID) ([]model.Question, error) {
	questions, err := s.questionRepo.ListByBank(ctx, qbankID)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, nil
}

// AddQuestion validates and appends one question to a bank.
func (s *QuestionService) AddQuestion(ctx context.Context, adminID int, writeAll bool, qbankID uuid.UUID, req *model.QuestionRequest) (*model.Question, error) {
	bank, err := s.questionRepo.GetBank(ctx, qbankID)
	if err != nil {
		return nil, err
	}
	if !canWrite(bank, adminID, writeAll) {
		return nil, ErrNotQBankAuthor
	}

	q := req.ToModel(qbankID)
	if err := ValidateQuestion(&q, -1); err != nil {
		return nil, err
	}
	if err := s.questionRepo.Create(ctx, &q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return &q, nil
}

// ReplaceQuestions validates every question and then swaps the bank's
// contents in one transaction. Nothing is written if any question is invalid.
func (s *QuestionService) ReplaceQuestions(ctx context.Context, adminID int, writeAll bool, qbankID uuid.UUID, req *model.ReplaceQuestionsRequest) ([]model.Question, error) {
	bank, err := s.questionRepo.GetBank(ctx, qbankID)
	if err != nil {
		return nil, err
	}
	if !canWrite(bank, adminID, writeAll) {
		return nil, ErrNotQBankAuthor
	}

	questions, err := BuildQuestions(qbankID, req.Questions)
	if err != nil {
		return nil, err
	}
	if err := s.questionRepo.ReplaceAll(ctx, qbankID, questions); err != nil {
		return nil, fmt.Errorf("replace questions: %w", err)
	}

	s.log.Info().
		Str("qbank_id", qbankID.String()).
		Int("count", len(questions)).
		Msg("Question bank replaced")
	return questions, nil
}

// ValidateQuestions checks a batch without persisting it.
func (s *QuestionService) ValidateQuestions(req *model.ReplaceQuestionsRequest) error {
	_, err := BuildQuestions(uuid.Nil, req.Questions)
	return err
}

// DeleteQuestion removes one question from a bank.
func (s *QuestionService) DeleteQuestion(ctx context.Context, adminID int, writeAll bool, questionID uuid.UUID) error {
	q, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return err
	}
	bank, err := s.questionRepo.GetBank(ctx, q.QBankID)
	if err != nil {
		return err
	}
	if !canWrite(bank, adminID, writeAll) {
		return ErrNotQBankAuthor
	}
	return s.questionRepo.Delete(ctx, questionID)
}

// BuildQuestions converts and validates authoring requests. Order numbers
// left at zero follow request order.
func BuildQuestions(qbankID uuid.UUID, reqs []model.QuestionRequest) ([]model.Question, error) {
	questions := make([]model.Question, len(reqs))
	for i := range reqs {
		questions[i] = reqs[i].ToModel(qbankID)
		if questions[i].OrderNum == 0 {
			questions[i].OrderNum = i + 1
		}
		if err := ValidateQuestion(&questions[i], i); err != nil {
			return nil, err
		}
	}
	return questions, nil
}
