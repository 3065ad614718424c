package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int           { return &i }
func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func singleQuestion() Question {
	return Question{
		ID:     "q-single",
		Type:   TypeSingle,
		Prompt: "Which finding requires immediate action?",
		Payload: IndexedChoice{
			Options: []string{"HR 88", "SpO2 86%", "Temp 37.4", "RR 18"},
			Correct: []int{1},
		},
	}
}

func TestEvaluate_Single(t *testing.T) {
	q := singleQuestion()

	tests := []struct {
		name     string
		answer   Answer
		answered bool
		correct  bool
	}{
		{name: "correct", answer: IndexAnswer{SelectedIndex: intPtr(1)}, answered: true, correct: true},
		{name: "index zero is an answer", answer: IndexAnswer{SelectedIndex: intPtr(0)}, answered: true, correct: false},
		{name: "nil index is unanswered", answer: IndexAnswer{}, answered: false, correct: false},
		{name: "nil answer", answer: nil, answered: false, correct: false},
		{name: "pointer answer", answer: &IndexAnswer{SelectedIndex: intPtr(1)}, answered: true, correct: true},
		{name: "nil pointer answer", answer: (*IndexAnswer)(nil), answered: false, correct: false},
		{name: "out of range index", answer: IndexAnswer{SelectedIndex: intPtr(9)}, answered: true, correct: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Evaluate(q, tc.answer)
			require.NoError(t, err)
			assert.Equal(t, tc.answered, v.Answered)
			assert.Equal(t, tc.correct, v.IsCorrect)
			assert.Equal(t, "q-single", v.QuestionID)
		})
	}
}

func TestEvaluate_SingleMembershipSurvivesSeveralKeys(t *testing.T) {
	q := singleQuestion()
	q.Payload = IndexedChoice{Options: []string{"a", "b", "c"}, Correct: []int{0, 2}}

	v, err := Evaluate(q, IndexAnswer{SelectedIndex: intPtr(2)})
	require.NoError(t, err)
	assert.True(t, v.IsCorrect)
}

func TestEvaluate_Multiple(t *testing.T) {
	q := Question{
		ID:   "q-multi",
		Type: TypeMultiple,
		Payload: IndexedChoice{
			Options: []string{"Elevate legs", "Apply oxygen", "Start IV", "Ambulate", "Call rapid response"},
			Correct: []int{1, 2, 4},
		},
	}

	tests := []struct {
		name     string
		selected []int
		correct  bool
		counts   Counts
		answered bool
	}{
		{name: "exact set", selected: []int{1, 2, 4}, correct: true, counts: Counts{Correct: 3, Incorrect: 0, Total: 3}, answered: true},
		{name: "any order", selected: []int{4, 1, 2}, correct: true, counts: Counts{Correct: 3, Incorrect: 0, Total: 3}, answered: true},
		{name: "duplicates are ignored", selected: []int{1, 1, 2, 4, 4}, correct: true, counts: Counts{Correct: 3, Incorrect: 0, Total: 3}, answered: true},
		{name: "missing one", selected: []int{1, 2}, correct: false, counts: Counts{Correct: 2, Incorrect: 0, Total: 3}, answered: true},
		{name: "extra one", selected: []int{0, 1, 2, 4}, correct: false, counts: Counts{Correct: 3, Incorrect: 1, Total: 3}, answered: true},
		{name: "empty", selected: nil, correct: false, counts: Counts{Correct: 0, Incorrect: 0, Total: 3}, answered: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Evaluate(q, IndexSetAnswer{Selected: tc.selected})
			require.NoError(t, err)
			assert.Equal(t, tc.correct, v.IsCorrect)
			assert.Equal(t, tc.answered, v.Answered)
			require.NotNil(t, v.Counts)
			assert.Equal(t, tc.counts, *v.Counts)
		})
	}
}

func TestEvaluate_SATA(t *testing.T) {
	q := Question{
		ID:   "q-sata",
		Type: TypeSATA,
		Payload: Choice{
			Options: []Option{{ID: "a", Label: "Fever"}, {ID: "b", Label: "Chills"}, {ID: "c", Label: "Flank pain"}, {ID: "d", Label: "Bradycardia"}},
			Correct: []string{"a", "b", "c"},
		},
	}

	v, err := Evaluate(q, IDSetAnswer{Selected: []string{"c", "a", "b"}})
	require.NoError(t, err)
	assert.True(t, v.IsCorrect)

	v, err = Evaluate(q, IDSetAnswer{Selected: []string{"a", "b", "d"}})
	require.NoError(t, err)
	assert.False(t, v.IsCorrect)
	assert.Equal(t, Counts{Correct: 2, Incorrect: 1, Total: 3}, *v.Counts)
}

func TestEvaluate_MultipleAndSATAAcceptCorrectSetInAnyOrder(t *testing.T) {
	perms := [][]string{
		{"a", "b", "c"}, {"a", "c", "b"}, {"b", "a", "c"},
		{"b", "c", "a"}, {"c", "a", "b"}, {"c", "b", "a"},
	}
	q := Question{
		ID:   "q",
		Type: TypeSATA,
		Payload: Choice{
			Options: []Option{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
			Correct: []string{"a", "b", "c"},
		},
	}
	for _, p := range perms {
		v, err := Evaluate(q, IDSetAnswer{Selected: p})
		require.NoError(t, err)
		assert.True(t, v.IsCorrect, "selection %v", p)
	}
}

func TestEvaluate_DiagramAndCloze(t *testing.T) {
	payload := ElementSet{Elements: []Element{
		{ID: "site", Options: []string{"Deltoid", "Vastus lateralis", "Ventrogluteal"}, CorrectAnswer: "Ventrogluteal"},
		{ID: "angle", Options: []string{"15 degrees", "45 degrees", "90 degrees"}, CorrectAnswer: "90 degrees"},
	}}

	for _, typ := range []Type{TypeDiagram, TypeCloze} {
		q := Question{ID: "q-" + string(typ), Type: typ, Payload: payload}

		t.Run(string(typ)+" all correct", func(t *testing.T) {
			v, err := Evaluate(q, SelectionAnswer{Selections: map[string]string{"site": "Ventrogluteal", "angle": "90 degrees"}})
			require.NoError(t, err)
			assert.True(t, v.IsCorrect)
			assert.Equal(t, Counts{Correct: 2, Incorrect: 0, Total: 2}, *v.Counts)
		})

		t.Run(string(typ)+" case sensitive", func(t *testing.T) {
			v, err := Evaluate(q, SelectionAnswer{Selections: map[string]string{"site": "ventrogluteal", "angle": "90 degrees"}})
			require.NoError(t, err)
			assert.False(t, v.IsCorrect)
		})

		t.Run(string(typ)+" no trimming", func(t *testing.T) {
			v, err := Evaluate(q, SelectionAnswer{Selections: map[string]string{"site": "Ventrogluteal ", "angle": "90 degrees"}})
			require.NoError(t, err)
			assert.False(t, v.IsCorrect)
		})

		t.Run(string(typ)+" missing element is incorrect", func(t *testing.T) {
			v, err := Evaluate(q, SelectionAnswer{Selections: map[string]string{"site": "Ventrogluteal"}})
			require.NoError(t, err)
			assert.False(t, v.IsCorrect)
			require.Len(t, v.Items, 2)
			assert.True(t, v.Items[0].IsCorrect)
			assert.False(t, v.Items[1].Answered)
			assert.False(t, v.Items[1].IsCorrect)
		})
	}
}

func TestEvaluate_Matrix(t *testing.T) {
	q := Question{
		ID:   "q-matrix",
		Type: TypeMatrix,
		Payload: Matrix{
			Rows: []MatrixRow{
				{ID: "r1", Label: "Crackles", CorrectColumnID: "hf"},
				{ID: "r2", Label: "Wheezing", CorrectColumnID: "asthma"},
				{ID: "r3", Label: "JVD", CorrectColumnID: "hf"},
			},
			Columns: []MatrixColumn{{ID: "hf", Label: "Heart failure"}, {ID: "asthma", Label: "Asthma"}},
		},
	}

	v, err := Evaluate(q, SelectionAnswer{Selections: map[string]string{"r1": "hf", "r2": "asthma", "r3": "hf"}})
	require.NoError(t, err)
	assert.True(t, v.IsCorrect)

	v, err = Evaluate(q, SelectionAnswer{Selections: map[string]string{"r1": "hf", "r2": "hf", "r3": "hf"}})
	require.NoError(t, err)
	assert.False(t, v.IsCorrect)
	assert.Equal(t, Counts{Correct: 2, Incorrect: 1, Total: 3}, *v.Counts)
}

func orderingQuestion() Question {
	return Question{
		ID:   "q-order",
		Type: TypeOrdering,
		Payload: Ordering{
			Items: []Option{
				{ID: "verify", Label: "Verify order and consent"},
				{ID: "vitals", Label: "Obtain baseline vital signs"},
				{ID: "check", Label: "Double-check blood product with second nurse"},
				{ID: "start", Label: "Start transfusion slowly"},
			},
			CorrectOrder: []string{"verify", "vitals", "check", "start"},
		},
	}
}

func permutations(xs []string) [][]string {
	if len(xs) <= 1 {
		return [][]string{append([]string(nil), xs...)}
	}
	var out [][]string
	for i := range xs {
		rest := make([]string, 0, len(xs)-1)
		rest = append(rest, xs[:i]...)
		rest = append(rest, xs[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]string{xs[i]}, p...))
		}
	}
	return out
}

func TestEvaluate_OrderingOnlyExactSequence(t *testing.T) {
	q := orderingQuestion()
	correct := q.Payload.(Ordering).CorrectOrder

	perms := permutations(correct)
	require.Len(t, perms, 24)
	for _, p := range perms {
		v, err := Evaluate(q, OrderAnswer{Order: p})
		require.NoError(t, err)
		assert.Equal(t, assert.ObjectsAreEqual(p, correct), v.IsCorrect, "order %v", p)
	}
}

func TestEvaluate_OrderingPartialSequence(t *testing.T) {
	v, err := Evaluate(orderingQuestion(), OrderAnswer{Order: []string{"verify", "vitals", "check"}})
	require.NoError(t, err)
	assert.True(t, v.Answered)
	assert.False(t, v.IsCorrect)
}

func TestEvaluate_Input(t *testing.T) {
	numeric := Question{ID: "q-dose", Type: TypeInput, Payload: Input{CorrectAnswer: "31", Tolerance: floatPtr(1), Unit: "mL/hr"}}
	text := Question{ID: "q-route", Type: TypeInput, Payload: Input{CorrectAnswer: "intravenously"}}
	exact := Question{ID: "q-exact", Type: TypeInput, Payload: Input{CorrectAnswer: "2.5"}}
	decimal := Question{ID: "q-dec", Type: TypeInput, Payload: Input{CorrectAnswer: "2.3", Tolerance: floatPtr(0.1)}}

	tests := []struct {
		name    string
		q       Question
		input   string
		correct bool
	}{
		{name: "30 within tolerance", q: numeric, input: "30", correct: true},
		{name: "31 exact", q: numeric, input: "31", correct: true},
		{name: "32 within tolerance", q: numeric, input: "32", correct: true},
		{name: "29 outside tolerance", q: numeric, input: "29", correct: false},
		{name: "33 outside tolerance", q: numeric, input: "33", correct: false},
		{name: "surrounding whitespace", q: numeric, input: "  31.5 ", correct: true},
		{name: "unit suffix ignored", q: numeric, input: "32 mL/hr", correct: true},
		{name: "non numeric against numeric key", q: numeric, input: "thirty-one", correct: false},
		{name: "text case-insensitive", q: text, input: "Intravenously", correct: true},
		{name: "text trimmed", q: text, input: "  intravenously\n", correct: true},
		{name: "text abbreviation", q: text, input: "IV", correct: false},
		{name: "default tolerance is exact", q: exact, input: "2.50", correct: true},
		{name: "default tolerance rejects near", q: exact, input: "2.51", correct: false},
		{name: "float rounding absorbed", q: decimal, input: "2.4", correct: true},
		{name: "float outside", q: decimal, input: "2.41", correct: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Evaluate(tc.q, TextAnswer{Text: strPtr(tc.input)})
			require.NoError(t, err)
			assert.True(t, v.Answered)
			assert.Equal(t, tc.correct, v.IsCorrect)
		})
	}

	v, err := Evaluate(numeric, TextAnswer{})
	require.NoError(t, err)
	assert.False(t, v.Answered)
	assert.False(t, v.IsCorrect)
}

func TestEvaluate_SentenceCompletion(t *testing.T) {
	q := Question{
		ID:   "q-sentence",
		Type: TypeSentenceCompletion,
		Payload: SentenceCompletion{
			Template: "The client is at risk for {{g1}} as evidenced by {{g2}}.",
			Groups: []DropdownGroup{
				{ID: "g1", Options: []string{"hypokalemia", "hyperkalemia"}, CorrectAnswer: "hyperkalemia"},
				{ID: "g2", Options: []string{"peaked T waves", "U waves"}, CorrectAnswer: "peaked T waves"},
			},
		},
	}

	v, err := Evaluate(q, SelectionAnswer{Selections: map[string]string{"g1": "hyperkalemia", "g2": "peaked T waves"}})
	require.NoError(t, err)
	assert.True(t, v.IsCorrect)

	v, err = Evaluate(q, SelectionAnswer{Selections: map[string]string{"g1": "hyperkalemia", "g2": "U waves"}})
	require.NoError(t, err)
	assert.False(t, v.IsCorrect)
}

func dragDropQuestion() Question {
	return Question{
		ID:   "q-dd",
		Type: TypeDragDropPriority,
		Payload: DragDropPriority{
			Items: []PriorityItem{
				{ID: "i1", Label: "BP 82/50", RequiresFollowup: true},
				{ID: "i2", Label: "HR 124", RequiresFollowup: true},
				{ID: "i3", Label: "Urine output 15 mL/hr", RequiresFollowup: true},
				{ID: "i4", Label: "New confusion", RequiresFollowup: true},
				{ID: "i5", Label: "Temp 37.2", RequiresFollowup: false},
				{ID: "i6", Label: "Pain 2/10", RequiresFollowup: false},
			},
			MinPriorityItems: intPtr(3),
			MaxPriorityItems: intPtr(5),
		},
	}
}

func TestEvaluate_DragDropPriority(t *testing.T) {
	q := dragDropQuestion()

	t.Run("follow-up items placed exactly", func(t *testing.T) {
		v, err := Evaluate(q, PlacementAnswer{
			PriorityItems: []string{"i1", "i2", "i3", "i4"},
			MonitorItems:  []string{"i5", "i6"},
		})
		require.NoError(t, err)
		assert.True(t, v.IsCorrect)
		assert.False(t, v.PlacementOutOfBounds)
		require.Len(t, v.Items, 6)
		for _, it := range v.Items {
			assert.True(t, it.IsCorrect, it.ID)
		}
	})

	t.Run("one item in the wrong zone", func(t *testing.T) {
		v, err := Evaluate(q, PlacementAnswer{
			PriorityItems: []string{"i1", "i2", "i3", "i5"},
			MonitorItems:  []string{"i4", "i6"},
		})
		require.NoError(t, err)
		assert.False(t, v.IsCorrect)
		assert.Equal(t, Counts{Correct: 4, Incorrect: 2, Total: 6}, *v.Counts)
	})

	t.Run("unplaced non-urgent item counts as monitored", func(t *testing.T) {
		v, err := Evaluate(q, PlacementAnswer{
			PriorityItems: []string{"i1", "i2", "i3", "i4"},
		})
		require.NoError(t, err)
		assert.True(t, v.IsCorrect)
		assert.False(t, v.Items[5].Answered)
		assert.True(t, v.Items[5].IsCorrect)
	})

	t.Run("unplaced follow-up item is incorrect", func(t *testing.T) {
		v, err := Evaluate(q, PlacementAnswer{
			PriorityItems: []string{"i1", "i2", "i3"},
			MonitorItems:  []string{"i5", "i6"},
		})
		require.NoError(t, err)
		assert.False(t, v.IsCorrect)
		assert.False(t, v.Items[3].IsCorrect)
		assert.Equal(t, Counts{Correct: 5, Incorrect: 1, Total: 6}, *v.Counts)
	})

	t.Run("item in both zones is graded by the priority zone", func(t *testing.T) {
		v, err := Evaluate(q, PlacementAnswer{
			PriorityItems: []string{"i1", "i2", "i3", "i4"},
			MonitorItems:  []string{"i1", "i5", "i6"},
		})
		require.NoError(t, err)
		assert.True(t, v.Items[0].IsCorrect)
		assert.True(t, v.IsCorrect)
	})

	t.Run("empty placement is not correct", func(t *testing.T) {
		v, err := Evaluate(q, PlacementAnswer{})
		require.NoError(t, err)
		assert.False(t, v.Answered)
		assert.False(t, v.IsCorrect)
	})

	t.Run("too many follow-up placements are flagged", func(t *testing.T) {
		v, err := Evaluate(q, PlacementAnswer{
			PriorityItems: []string{"i1", "i2", "i3", "i4", "i5", "i6"},
		})
		require.NoError(t, err)
		assert.False(t, v.IsCorrect)
		assert.True(t, v.PlacementOutOfBounds)
	})

	t.Run("too few follow-up placements are flagged", func(t *testing.T) {
		v, err := Evaluate(q, PlacementAnswer{
			PriorityItems: []string{"i1"},
			MonitorItems:  []string{"i2", "i3", "i4", "i5", "i6"},
		})
		require.NoError(t, err)
		assert.True(t, v.PlacementOutOfBounds)
	})

	t.Run("unknown id spoils an otherwise correct placement", func(t *testing.T) {
		v, err := Evaluate(q, PlacementAnswer{
			PriorityItems: []string{"i1", "i2", "i3", "i4"},
			MonitorItems:  []string{"i5", "i6", "bogus"},
		})
		require.NoError(t, err)
		assert.False(t, v.IsCorrect)
	})
}

func classifyQuestion(allowMultiple bool) Question {
	return Question{
		ID:   "q-classify",
		Type: TypeCompareClassify,
		Payload: CompareClassify{
			Conditions: []Option{{ID: "dka", Label: "DKA"}, {ID: "hhs", Label: "HHS"}},
			Characteristics: []Characteristic{
				{ID: "c1", Label: "Kussmaul respirations", AppliesTo: []string{"dka"}},
				{ID: "c2", Label: "Glucose > 600", AppliesTo: []string{"hhs"}},
				{ID: "c3", Label: "Dehydration", AppliesTo: []string{"dka", "hhs"}},
			},
			AllowMultiple: allowMultiple,
		},
	}
}

func TestEvaluate_CompareClassifySingleCondition(t *testing.T) {
	q := classifyQuestion(false)

	v, err := Evaluate(q, ClassificationAnswer{Classification: map[string][]string{
		"c1": {"dka"}, "c2": {"hhs"}, "c3": {"hhs"},
	}})
	require.NoError(t, err)
	assert.True(t, v.IsCorrect, "any applicable condition is credited")

	v, err = Evaluate(q, ClassificationAnswer{Classification: map[string][]string{
		"c1": {"dka"}, "c2": {"hhs"}, "c3": {"dka", "hhs"},
	}})
	require.NoError(t, err)
	assert.False(t, v.IsCorrect, "more than one condition is not allowed")

	v, err = Evaluate(q, ClassificationAnswer{Classification: map[string][]string{
		"c1": {"hhs"}, "c2": {"hhs"}, "c3": {"dka"},
	}})
	require.NoError(t, err)
	assert.False(t, v.IsCorrect)
	assert.Equal(t, Counts{Correct: 2, Incorrect: 1, Total: 3}, *v.Counts)
}

func TestEvaluate_CompareClassifyAllowMultiple(t *testing.T) {
	q := classifyQuestion(true)

	v, err := Evaluate(q, ClassificationAnswer{Classification: map[string][]string{
		"c1": {"dka"}, "c2": {"hhs"}, "c3": {"hhs", "dka"},
	}})
	require.NoError(t, err)
	assert.True(t, v.IsCorrect)

	v, err = Evaluate(q, ClassificationAnswer{Classification: map[string][]string{
		"c1": {"dka"}, "c2": {"hhs"}, "c3": {"hhs"},
	}})
	require.NoError(t, err)
	assert.False(t, v.IsCorrect, "every applicable condition must be chosen")
}

func TestEvaluate_Findings(t *testing.T) {
	findings := FindingSet{Findings: []Finding{
		{ID: "f1", Text: "Lochia rubra on day 2", Flag: true},
		{ID: "f2", Text: "Fundus boggy and deviated", Flag: false},
		{ID: "f3", Text: "Afterpains while breastfeeding", Flag: true},
	}}

	for _, typ := range []Type{TypeExpectedNotExpected, TypeIndicatedNotIndicated} {
		q := Question{ID: "q-" + string(typ), Type: typ, Payload: findings}

		v, err := Evaluate(q, MarkAnswer{Marks: map[string]bool{"f1": true, "f2": false, "f3": true}})
		require.NoError(t, err)
		assert.True(t, v.IsCorrect, typ)

		v, err = Evaluate(q, MarkAnswer{Marks: map[string]bool{"f1": true, "f2": false}})
		require.NoError(t, err)
		assert.False(t, v.IsCorrect, "unmarked finding is incorrect")

		v, err = Evaluate(q, MarkAnswer{Marks: map[string]bool{"f1": true, "f2": true, "f3": true}})
		require.NoError(t, err)
		assert.False(t, v.IsCorrect)
	}
}

func TestEvaluate_PriorityAction(t *testing.T) {
	q := Question{
		ID:   "q-priority",
		Type: TypePriorityAction,
		Payload: PriorityAction{
			Actions: []Action{
				{ID: "a1", Text: "Notify provider", PriorityRank: 3},
				{ID: "a2", Text: "Stop the transfusion", PriorityRank: 1},
				{ID: "a3", Text: "Keep the IV line open with saline", PriorityRank: 2},
			},
			CorrectActionID: "a2",
		},
	}

	v, err := Evaluate(q, ActionAnswer{SelectedActionID: strPtr("a2")})
	require.NoError(t, err)
	assert.True(t, v.IsCorrect)

	v, err = Evaluate(q, ActionAnswer{SelectedActionID: strPtr("a3")})
	require.NoError(t, err)
	assert.False(t, v.IsCorrect, "only the first action is graded")

	v, err = Evaluate(q, ActionAnswer{})
	require.NoError(t, err)
	assert.False(t, v.Answered)
}

func caseStudyQuestion() Question {
	return Question{
		ID:       "q-case",
		Type:     TypeCaseStudy,
		Scenario: "A 68-year-old client is admitted with community-acquired pneumonia.",
		Payload: CaseStudy{SubQuestions: []SubQuestion{
			{
				ID:            "sq2",
				QuestionOrder: 2,
				Kind:          SubKindSATA,
				Options:       []Option{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
				CorrectAnswer: []string{"a", "b", "c"},
			},
			{
				ID:            "sq1",
				QuestionOrder: 1,
				Kind:          SubKindSingle,
				Options:       []Option{{ID: "a"}, {ID: "b"}, {ID: "c"}},
				CorrectAnswer: []string{"b"},
			},
		}},
	}
}

func TestEvaluate_CaseStudyGradesEachSubQuestionInOrder(t *testing.T) {
	v, err := Evaluate(caseStudyQuestion(), CaseStudyAnswer{Responses: map[string][]string{
		"sq1": {"b"},
		"sq2": {"c", "a"},
	}})
	require.NoError(t, err)

	require.Len(t, v.SubVerdicts, 2)
	assert.Equal(t, "sq1", v.SubVerdicts[0].QuestionID)
	assert.Equal(t, TypeSingle, v.SubVerdicts[0].Type)
	assert.True(t, v.SubVerdicts[0].IsCorrect)
	assert.Equal(t, "sq2", v.SubVerdicts[1].QuestionID)
	assert.False(t, v.SubVerdicts[1].IsCorrect)
	assert.Equal(t, Counts{Correct: 2, Incorrect: 0, Total: 3}, *v.SubVerdicts[1].Counts)
	assert.Equal(t, 1, v.Points())
	assert.Equal(t, 2, v.GradedItems())
}

func TestEvaluate_CaseStudyHasNoOverallPass(t *testing.T) {
	v, err := Evaluate(caseStudyQuestion(), CaseStudyAnswer{Responses: map[string][]string{
		"sq1": {"b"},
		"sq2": {"a", "b", "c"},
	}})
	require.NoError(t, err)
	assert.True(t, v.Answered)
	assert.False(t, v.IsCorrect)
	assert.Equal(t, Counts{Correct: 2, Incorrect: 0, Total: 2}, *v.Counts)
	assert.Equal(t, 2, v.Points())
}

func TestEvaluate_CaseStudySingleRejectsSeveralSelections(t *testing.T) {
	v, err := Evaluate(caseStudyQuestion(), CaseStudyAnswer{Responses: map[string][]string{
		"sq1": {"a", "b"},
	}})
	require.NoError(t, err)
	assert.True(t, v.SubVerdicts[0].Answered)
	assert.False(t, v.SubVerdicts[0].IsCorrect)
	assert.False(t, v.SubVerdicts[1].Answered)
}

func TestEvaluate_EmptyAnswersNeverError(t *testing.T) {
	questions := []Question{
		singleQuestion(),
		orderingQuestion(),
		dragDropQuestion(),
		classifyQuestion(false),
		caseStudyQuestion(),
	}
	for _, q := range questions {
		v, err := Evaluate(q, nil)
		require.NoError(t, err, q.ID)
		assert.False(t, v.Answered, q.ID)
		assert.False(t, v.IsCorrect, q.ID)

		v, err = Evaluate(q, NewAnswer(q.Type))
		require.NoError(t, err, q.ID)
		assert.False(t, v.IsCorrect, q.ID)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	q := dragDropQuestion()
	a := PlacementAnswer{PriorityItems: []string{"i1", "i2", "i3", "i4"}, MonitorItems: []string{"i5", "i6"}}

	first, err := Evaluate(q, a)
	require.NoError(t, err)
	second, err := Evaluate(q, a)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEvaluate_AnswerTypeMismatch(t *testing.T) {
	_, err := Evaluate(singleQuestion(), IDSetAnswer{Selected: []string{"a"}})
	assert.ErrorIs(t, err, ErrAnswerTypeMismatch)
}

func TestEvaluate_InvalidQuestionIsSurfaced(t *testing.T) {
	q := orderingQuestion()
	q.Payload = Ordering{
		Items:        q.Payload.(Ordering).Items,
		CorrectOrder: []string{"verify", "vitals", "check", "ghost"},
	}

	_, err := Evaluate(q, OrderAnswer{Order: []string{"verify", "vitals", "check", "start"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidQuestionData)

	var iqe *InvalidQuestionError
	require.ErrorAs(t, err, &iqe)
	assert.Equal(t, "q-order", iqe.QuestionID)
	assert.Equal(t, "correct_order", iqe.Field)

	_, err = Evaluate(q, nil)
	assert.ErrorIs(t, err, ErrInvalidQuestionData, "unanswered malformed question still reports")
}
