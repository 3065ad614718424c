package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuestionData marks an authoring defect: a correct-answer
	// reference that does not resolve against the question's own items.
	ErrInvalidQuestionData = errors.New("invalid question data")

	// ErrAnswerTypeMismatch is returned when an answer shape does not belong
	// to the question's variant.
	ErrAnswerTypeMismatch = errors.New("answer type does not match question type")
)

// InvalidQuestionError describes which part of a question is malformed.
type InvalidQuestionError struct {
	QuestionID string
	Type       Type
	Field      string
	Reason     string
}

func (e *InvalidQuestionError) Error() string {
	return fmt.Sprintf("invalid question data: question %q (%s): %s: %s", e.QuestionID, e.Type, e.Field, e.Reason)
}

func (e *InvalidQuestionError) Unwrap() error { return ErrInvalidQuestionData }

func invalid(q Question, field, format string, args ...any) error {
	return &InvalidQuestionError{
		QuestionID: q.ID,
		Type:       q.Type,
		Field:      field,
		Reason:     fmt.Sprintf(format, args...),
	}
}
