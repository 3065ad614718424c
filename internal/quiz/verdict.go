package quiz

// Counts carries the partial-credit detail of a verdict. For multiple and SATA
// questions Correct is |selected ∩ correct|, Incorrect is |selected \ correct|
// and Total is |correct|. For per-item variants they count graded items.
type Counts struct {
	Correct   int `json:"correct_count"`
	Incorrect int `json:"incorrect_count"`
	Total     int `json:"total_correct"`
}

// ItemVerdict is the outcome for one element, row, group, item, finding or
// characteristic of a question.
type ItemVerdict struct {
	ID        string `json:"id"`
	Answered  bool   `json:"answered"`
	IsCorrect bool   `json:"is_correct"`
}

// Verdict is the evaluator's output for one question.
type Verdict struct {
	QuestionID string        `json:"question_id"`
	Type       Type          `json:"type"`
	Answered   bool          `json:"answered"`
	IsCorrect  bool          `json:"is_correct"`
	Counts     *Counts       `json:"counts,omitempty"`
	Items      []ItemVerdict `json:"items,omitempty"`

	// PlacementOutOfBounds is set on drag-and-drop verdicts whose follow-up
	// zone holds fewer or more items than the question allows.
	PlacementOutOfBounds bool `json:"placement_out_of_bounds,omitempty"`

	// SubVerdicts holds one verdict per case study sub-question, in
	// questionOrder sequence.
	SubVerdicts []Verdict `json:"sub_verdicts,omitempty"`
}

// GradedItems is the number of points the verdict is worth: one per question,
// or one per sub-question for case studies.
func (v Verdict) GradedItems() int {
	if v.Type == TypeCaseStudy {
		return len(v.SubVerdicts)
	}
	return 1
}

// Points is the number of graded items answered correctly.
func (v Verdict) Points() int {
	if v.Type == TypeCaseStudy {
		n := 0
		for _, sv := range v.SubVerdicts {
			if sv.IsCorrect {
				n++
			}
		}
		return n
	}
	if v.IsCorrect {
		return 1
	}
	return 0
}
