package validator

import (
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type questionTypeRequest struct {
	QuestionType string `json:"question_type" binding:"required,question_type" validate:"required,question_type"`
	Prompt       string `json:"prompt" validate:"required"`
}

func TestRegister_QuestionTypeRule(t *testing.T) {
	v := govalidator.New()
	Register(v)

	require.NoError(t, v.Struct(questionTypeRequest{QuestionType: "drag_drop_priority", Prompt: "p"}))

	err := v.Struct(questionTypeRequest{QuestionType: "essay"})
	require.Error(t, err)

	fields := TranslateErrors(err)
	assert.Equal(t, "question_type must be a supported question type", fields["question_type"])
	assert.Equal(t, "prompt is a required field", fields["prompt"])
}

func TestTranslateErrors_NonValidationError(t *testing.T) {
	fields := TranslateErrors(assert.AnError)
	assert.Equal(t, map[string]string{"detail": assert.AnError.Error()}, fields)
}
