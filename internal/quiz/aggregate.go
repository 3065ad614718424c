package quiz

import "errors"

// Item pairs a question with the student's frozen answer.
type Item struct {
	Question Question
	Answer   Answer
}

// Result is the score of one exam session.
type Result struct {
	Score    int       `json:"score"`
	Total    int       `json:"total"`
	Accuracy float64   `json:"accuracy"`
	PerItem  []Verdict `json:"per_item"`

	// Invalid lists the ids of questions that could not be graded because
	// their data is malformed. They count toward neither Score nor Total.
	Invalid []string `json:"invalid,omitempty"`
}

// Aggregate evaluates every item in order and folds the verdicts into a
// session score: one point per correct question, and one point per correct
// sub-question of a case study. Accuracy is Score/Total, or 0 when nothing
// was graded.
//
// Questions with invalid data are left out of the score and reported both in
// Result.Invalid and in the returned error, which joins every
// InvalidQuestionError. Any other error aborts aggregation.
func Aggregate(items []Item) (Result, error) {
	res := Result{PerItem: make([]Verdict, 0, len(items))}
	var invalidErrs []error

	for _, it := range items {
		v, err := Evaluate(it.Question, it.Answer)
		if err != nil {
			if errors.Is(err, ErrInvalidQuestionData) {
				invalidErrs = append(invalidErrs, err)
				res.Invalid = append(res.Invalid, it.Question.ID)
				continue
			}
			return Result{}, err
		}
		res.PerItem = append(res.PerItem, v)
		res.Score += v.Points()
		res.Total += v.GradedItems()
	}

	if res.Total > 0 {
		res.Accuracy = float64(res.Score) / float64(res.Total)
	}
	return res, errors.Join(invalidErrs...)
}

// Percent is Accuracy scaled to 0..100.
func (r Result) Percent() float64 {
	return r.Accuracy * 100
}
