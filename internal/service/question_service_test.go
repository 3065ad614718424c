package service

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/quiz"
)

func questionRequest(t *testing.T, typ quiz.Type, payload string) model.QuestionRequest {
	t.Helper()
	req := model.QuestionRequest{QuestionType: string(typ), Prompt: "prompt"}
	require.NoError(t, json.Unmarshal([]byte(payload), &req.Payload))
	return req
}

func TestBuildQuestions_AssignsOrderAndValidates(t *testing.T) {
	bank := uuid.New()
	reqs := []model.QuestionRequest{
		questionRequest(t, quiz.TypeSingle, `{"options":["a","b"],"correct_options":[0]}`),
		questionRequest(t, quiz.TypePriorityAction, `{"actions":[{"id":"a1","text":"Raise HOB"}],"correct_action_id":"a1"}`),
	}
	reqs[1].OrderNum = 9

	qs, err := BuildQuestions(bank, reqs)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, 1, qs[0].OrderNum)
	assert.Equal(t, 9, qs[1].OrderNum)
	assert.Equal(t, bank, qs[0].QBankID)
}

func TestBuildQuestions_ReportsFirstInvalidQuestion(t *testing.T) {
	reqs := []model.QuestionRequest{
		questionRequest(t, quiz.TypeSingle, `{"options":["a","b"],"correct_options":[1]}`),
		questionRequest(t, quiz.TypeMatrix, `{
			"matrix_rows":[{"id":"r1","label":"Fever","correct_column_id":"c3"}],
			"matrix_columns":[{"id":"c1","label":"Pneumonia"}]
		}`),
	}

	_, err := BuildQuestions(uuid.New(), reqs)
	require.Error(t, err)
	assert.ErrorIs(t, err, quiz.ErrInvalidQuestionData)

	var qve *QuestionValidationError
	require.ErrorAs(t, err, &qve)
	assert.Equal(t, 1, qve.Index)
	assert.Contains(t, qve.Fields(), "questions[1].matrix_rows")
}

func TestValidateQuestion_SingleHasBareField(t *testing.T) {
	q := model.Question{ID: uuid.New(), QuestionType: quiz.TypeInput}
	err := ValidateQuestion(&q, -1)

	var qve *QuestionValidationError
	require.ErrorAs(t, err, &qve)
	assert.Contains(t, qve.Fields(), "correct_answer_input")
}
