package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/quiz"
)

func TestDecodeAnswerJob(t *testing.T) {
	examID := uuid.New()
	qid := uuid.New()

	raw, err := json.Marshal(model.AnswerJob{
		StudentID: 7,
		ExamID:    examID.String(),
		QID:       qid.String(),
		Answer:    json.RawMessage(`{"order":["a","b"]}`),
	})
	require.NoError(t, err)

	row, err := decodeAnswerJob(string(raw))
	require.NoError(t, err)
	assert.Equal(t, examID, row.examID)
	assert.Equal(t, qid, row.questionID)
	assert.Equal(t, 7, row.studentID)
	assert.JSONEq(t, `{"order":["a","b"]}`, string(row.answer))
}

func TestDecodeAnswerJob_Rejects(t *testing.T) {
	valid := uuid.New().String()
	tests := map[string]string{
		"not json":       `{`,
		"bad exam id":    `{"student_id":1,"exam_id":"x","q_id":"` + valid + `","answer":1}`,
		"bad q_id":       `{"student_id":1,"exam_id":"` + valid + `","q_id":"x","answer":1}`,
		"missing answer": `{"student_id":1,"exam_id":"` + valid + `","q_id":"` + valid + `"}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := decodeAnswerJob(raw)
			assert.Error(t, err)
		})
	}
}

func TestBuildScoreColumns(t *testing.T) {
	examID := uuid.New()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	batch := []*model.ScoreJob{
		{StudentID: 1, ExamID: examID.String(), Review: model.SessionReview{
			Score: 3, Total: 4, Accuracy: 0.75,
			Items: []quiz.Verdict{{QuestionID: "q1", Answered: true, IsCorrect: true}},
		}},
		{StudentID: 2, ExamID: examID.String(), Review: model.SessionReview{Score: 0, Total: 4}},
	}

	cols, err := buildScoreColumns(batch, now)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{examID, examID}, cols.examIDs)
	assert.Equal(t, []int{1, 2}, cols.studentIDs)
	assert.Equal(t, []int{3, 0}, cols.scores)
	assert.Equal(t, []int{4, 4}, cols.totals)
	assert.Equal(t, []float64{0.75, 0}, cols.accuracies)
	assert.Equal(t, []time.Time{now, now}, cols.finishedAts)
	require.Len(t, cols.reviews, 2)

	var stored model.SessionReview
	require.NoError(t, json.Unmarshal([]byte(cols.reviews[0]), &stored))
	assert.Equal(t, 3, stored.Score)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "q1", stored.Items[0].QuestionID)
}

func TestBuildScoreColumns_BadExamID(t *testing.T) {
	_, err := buildScoreColumns([]*model.ScoreJob{{StudentID: 1, ExamID: "nope"}}, time.Now())
	assert.Error(t, err)
}

// unreachableRedis fails every command without retrying.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestAutosaveWorker_RequeueLogsJobAndFailure(t *testing.T) {
	var buf bytes.Buffer
	w := &AutosaveWorker{rdb: unreachableRedis(t), log: zerolog.New(&buf)}

	examID := uuid.New()
	job := &answerRow{examID: examID, studentID: 7, questionID: uuid.New(), answer: json.RawMessage(`1`)}
	w.requeue(context.Background(), job, `{"student_id":7}`, errors.New("db down"))

	out := buf.String()
	assert.Contains(t, out, `"student_id":7`)
	assert.Contains(t, out, `"exam_id":"`+examID.String()+`"`)
	assert.Contains(t, out, "Persist error, retrying in 5s")
	assert.Contains(t, out, "Requeue failed, answer job lost")
}

func TestScoringWorker_RequeueLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	w := &ScoringWorker{rdb: unreachableRedis(t), log: zerolog.New(&buf)}

	examID := uuid.NewString()
	w.requeue(context.Background(), &model.ScoreJob{StudentID: 9, ExamID: examID})

	out := buf.String()
	assert.Contains(t, out, "Requeue failed, score job lost")
	assert.Contains(t, out, `"student_id":9`)
	assert.Contains(t, out, `"exam_id":"`+examID+`"`)
}
