package service

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/quiz"
)

// GradedSession is the outcome of grading one student's answers.
type GradedSession struct {
	Result quiz.Result
	// InvalidTypes holds the type of every question left out of the score.
	InvalidTypes []quiz.Type
}

// GradeSession decodes the stored answers and aggregates them against the
// exam's questions in paper order. Malformed answers are graded as missing.
// Malformed questions are skipped and reported, never fatal.
func GradeSession(log zerolog.Logger, questions []model.Question, answers map[string]json.RawMessage) (GradedSession, error) {
	items := make([]quiz.Item, len(questions))
	types := make(map[string]quiz.Type, len(questions))

	for i := range questions {
		q := &questions[i]
		qid := q.ID.String()
		types[qid] = q.QuestionType

		ans, err := model.DecodeAnswer(q.QuestionType, answers[qid])
		if err != nil {
			log.Warn().Err(err).Str("question_id", qid).Msg("Malformed answer graded as missing")
			ans = nil
		}
		items[i] = quiz.Item{Question: q.ToQuiz(), Answer: ans}
	}

	res, err := quiz.Aggregate(items)
	if err != nil && !errors.Is(err, quiz.ErrInvalidQuestionData) {
		return GradedSession{}, err
	}
	if err != nil {
		log.Error().Err(err).Strs("question_ids", res.Invalid).Msg("Questions skipped during grading")
	}

	graded := GradedSession{Result: res}
	for _, id := range res.Invalid {
		graded.InvalidTypes = append(graded.InvalidTypes, types[id])
	}
	return graded, nil
}

// EvaluateOne grades a single stored answer.
func EvaluateOne(q *model.Question, raw json.RawMessage) (quiz.Verdict, error) {
	ans, err := model.DecodeAnswer(q.QuestionType, raw)
	if err != nil {
		return quiz.Verdict{}, err
	}
	return quiz.Evaluate(q.ToQuiz(), ans)
}
