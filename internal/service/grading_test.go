package service

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/quiz"
)

func storedQuestion(t *testing.T, typ quiz.Type, payload string) model.Question {
	t.Helper()
	q := model.Question{ID: uuid.New(), QuestionType: typ, Prompt: "prompt"}
	require.NoError(t, json.Unmarshal([]byte(payload), &q.Payload))
	return q
}

func TestGradeSession(t *testing.T) {
	single := storedQuestion(t, quiz.TypeSingle, `{"options":["a","b","c"],"correct_options":[2]}`)
	ordering := storedQuestion(t, quiz.TypeOrdering, `{
		"ordering_items":[{"id":"verify","label":"v"},{"id":"vitals","label":"b"},{"id":"check","label":"c"},{"id":"start","label":"s"}],
		"correct_order":["verify","vitals","check","start"]
	}`)
	input := storedQuestion(t, quiz.TypeInput, `{"correct_answer_input":"125","tolerance":1,"unit":"mL/hr"}`)
	broken := storedQuestion(t, quiz.TypePriorityAction, `{"actions":[{"id":"a1","text":"x"}],"correct_action_id":"a9"}`)

	answers := map[string]json.RawMessage{
		single.ID.String():   json.RawMessage(`{"selected_index":2}`),
		ordering.ID.String(): json.RawMessage(`{"order":["verify","vitals","check","start"]}`),
		input.ID.String():    json.RawMessage(`{"text":"124.5 mL/hr"}`),
		broken.ID.String():   json.RawMessage(`{"selected_action_id":"a1"}`),
	}

	graded, err := GradeSession(zerolog.Nop(), []model.Question{single, ordering, input, broken}, answers)
	require.NoError(t, err)

	assert.Equal(t, 3, graded.Result.Score)
	assert.Equal(t, 3, graded.Result.Total)
	assert.Equal(t, 1.0, graded.Result.Accuracy)
	assert.Equal(t, []string{broken.ID.String()}, graded.Result.Invalid)
	assert.Equal(t, []quiz.Type{quiz.TypePriorityAction}, graded.InvalidTypes)
}

func TestGradeSession_MalformedAnswerIsMissing(t *testing.T) {
	single := storedQuestion(t, quiz.TypeSingle, `{"options":["a","b"],"correct_options":[0]}`)

	graded, err := GradeSession(zerolog.Nop(), []model.Question{single}, map[string]json.RawMessage{
		single.ID.String(): json.RawMessage(`{"selected":"a"}`),
	})
	require.NoError(t, err)
	require.Len(t, graded.Result.PerItem, 1)
	assert.False(t, graded.Result.PerItem[0].Answered)
	assert.Equal(t, 0, graded.Result.Score)
	assert.Equal(t, 1, graded.Result.Total)
}

func TestGradeSession_NoAnswers(t *testing.T) {
	single := storedQuestion(t, quiz.TypeSingle, `{"options":["a","b"],"correct_options":[0]}`)

	graded, err := GradeSession(zerolog.Nop(), []model.Question{single}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, graded.Result.Score)
	assert.Equal(t, 1, graded.Result.Total)
	assert.Equal(t, 0.0, graded.Result.Accuracy)
}

func TestEvaluateOne(t *testing.T) {
	sata := storedQuestion(t, quiz.TypeSATA, `{
		"options":[{"id":"a","label":"Fever"},{"id":"b","label":"Chills"},{"id":"c","label":"Rash"}],
		"correct_options":["a","b"]
	}`)

	v, err := EvaluateOne(&sata, json.RawMessage(`{"selected":["b","a"]}`))
	require.NoError(t, err)
	assert.True(t, v.IsCorrect)

	v, err = EvaluateOne(&sata, json.RawMessage(`{"selected":["a","c"]}`))
	require.NoError(t, err)
	assert.False(t, v.IsCorrect)
	require.NotNil(t, v.Counts)
	assert.Equal(t, 1, v.Counts.Correct)
	assert.Equal(t, 1, v.Counts.Incorrect)

	_, err = EvaluateOne(&sata, json.RawMessage(`{"order":["a"]}`))
	assert.ErrorIs(t, err, model.ErrMalformedAnswer)
}
