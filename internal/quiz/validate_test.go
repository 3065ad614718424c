package quiz

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AcceptsWellFormedQuestions(t *testing.T) {
	questions := []Question{
		singleQuestion(),
		orderingQuestion(),
		dragDropQuestion(),
		classifyQuestion(false),
		classifyQuestion(true),
		caseStudyQuestion(),
		{ID: "q-input", Type: TypeInput, Payload: Input{CorrectAnswer: "31", Tolerance: floatPtr(1)}},
		{ID: "q-pa", Type: TypePriorityAction, Payload: PriorityAction{Actions: []Action{{ID: "a"}}, CorrectActionID: "a"}},
		{ID: "q-find", Type: TypeIndicatedNotIndicated, Payload: FindingSet{Findings: []Finding{{ID: "f1"}}}},
	}
	for _, q := range questions {
		assert.NoError(t, Validate(q), q.ID)
	}
}

func TestValidate_RejectsMalformedQuestions(t *testing.T) {
	tests := []struct {
		name  string
		q     Question
		field string
	}{
		{
			name:  "unknown type",
			q:     Question{ID: "x", Type: "essay", Payload: Input{CorrectAnswer: "a"}},
			field: "type",
		},
		{
			name:  "missing payload",
			q:     Question{ID: "x", Type: TypeSingle},
			field: "payload",
		},
		{
			name:  "payload for another variant",
			q:     Question{ID: "x", Type: TypeOrdering, Payload: Input{CorrectAnswer: "a"}},
			field: "payload",
		},
		{
			name:  "single index out of range",
			q:     Question{ID: "x", Type: TypeSingle, Payload: IndexedChoice{Options: []string{"a", "b"}, Correct: []int{2}}},
			field: "correct_options",
		},
		{
			name:  "multiple negative index",
			q:     Question{ID: "x", Type: TypeMultiple, Payload: IndexedChoice{Options: []string{"a", "b"}, Correct: []int{-1}}},
			field: "correct_options",
		},
		{
			name: "sata correct id missing",
			q: Question{ID: "x", Type: TypeSATA, Payload: Choice{
				Options: []Option{{ID: "a"}, {ID: "b"}},
				Correct: []string{"a", "z"},
			}},
			field: "options",
		},
		{
			name: "sata duplicate option id",
			q: Question{ID: "x", Type: TypeSATA, Payload: Choice{
				Options: []Option{{ID: "a"}, {ID: "a"}},
				Correct: []string{"a"},
			}},
			field: "options",
		},
		{
			name: "cloze correct answer not an option",
			q: Question{ID: "x", Type: TypeCloze, Payload: ElementSet{Elements: []Element{
				{ID: "e1", Options: []string{"a", "b"}, CorrectAnswer: "c"},
			}}},
			field: "elements",
		},
		{
			name: "matrix row points at missing column",
			q: Question{ID: "x", Type: TypeMatrix, Payload: Matrix{
				Rows:    []MatrixRow{{ID: "r1", CorrectColumnID: "c9"}},
				Columns: []MatrixColumn{{ID: "c1"}},
			}},
			field: "matrix_rows",
		},
		{
			name: "ordering is not a permutation",
			q: Question{ID: "x", Type: TypeOrdering, Payload: Ordering{
				Items:        []Option{{ID: "a"}, {ID: "b"}},
				CorrectOrder: []string{"a", "a"},
			}},
			field: "correct_order",
		},
		{
			name: "ordering too short",
			q: Question{ID: "x", Type: TypeOrdering, Payload: Ordering{
				Items:        []Option{{ID: "a"}, {ID: "b"}},
				CorrectOrder: []string{"a"},
			}},
			field: "correct_order",
		},
		{
			name:  "input empty answer",
			q:     Question{ID: "x", Type: TypeInput, Payload: Input{CorrectAnswer: "  "}},
			field: "correct_answer_input",
		},
		{
			name:  "input negative tolerance",
			q:     Question{ID: "x", Type: TypeInput, Payload: Input{CorrectAnswer: "5", Tolerance: floatPtr(-1)}},
			field: "tolerance",
		},
		{
			name:  "input infinite tolerance",
			q:     Question{ID: "x", Type: TypeInput, Payload: Input{CorrectAnswer: "5", Tolerance: floatPtr(math.Inf(1))}},
			field: "tolerance",
		},
		{
			name:  "input tolerance on text answer",
			q:     Question{ID: "x", Type: TypeInput, Payload: Input{CorrectAnswer: "oral", Tolerance: floatPtr(1)}},
			field: "tolerance",
		},
		{
			name: "sentence group answer not an option",
			q: Question{ID: "x", Type: TypeSentenceCompletion, Payload: SentenceCompletion{Groups: []DropdownGroup{
				{ID: "g1", Options: []string{"a"}, CorrectAnswer: "b"},
			}}},
			field: "dropdown_groups",
		},
		{
			name: "drag drop min above max",
			q: Question{ID: "x", Type: TypeDragDropPriority, Payload: DragDropPriority{
				Items:            []PriorityItem{{ID: "a", RequiresFollowup: true}},
				MinPriorityItems: intPtr(2),
				MaxPriorityItems: intPtr(1),
			}},
			field: "max_priority_items",
		},
		{
			name: "drag drop follow-up count outside bounds",
			q: Question{ID: "x", Type: TypeDragDropPriority, Payload: DragDropPriority{
				Items:            []PriorityItem{{ID: "a", RequiresFollowup: true}, {ID: "b"}},
				MinPriorityItems: intPtr(2),
			}},
			field: "drag_drop_items",
		},
		{
			name: "classify unknown condition",
			q: Question{ID: "x", Type: TypeCompareClassify, Payload: CompareClassify{
				Conditions:      []Option{{ID: "dka"}},
				Characteristics: []Characteristic{{ID: "c1", AppliesTo: []string{"hhs"}}},
			}},
			field: "characteristics",
		},
		{
			name: "classify characteristic applies to nothing",
			q: Question{ID: "x", Type: TypeCompareClassify, Payload: CompareClassify{
				Conditions:      []Option{{ID: "dka"}},
				Characteristics: []Characteristic{{ID: "c1"}},
			}},
			field: "characteristics",
		},
		{
			name:  "findings duplicate id",
			q:     Question{ID: "x", Type: TypeExpectedNotExpected, Payload: FindingSet{Findings: []Finding{{ID: "f"}, {ID: "f"}}}},
			field: "findings",
		},
		{
			name: "priority action correct id missing",
			q: Question{ID: "x", Type: TypePriorityAction, Payload: PriorityAction{
				Actions:         []Action{{ID: "a1"}},
				CorrectActionID: "a2",
			}},
			field: "correct_action_id",
		},
		{
			name: "case study duplicate question order",
			q: Question{ID: "x", Type: TypeCaseStudy, Payload: CaseStudy{SubQuestions: []SubQuestion{
				{ID: "s1", QuestionOrder: 1, Kind: SubKindSingle, Options: []Option{{ID: "a"}}, CorrectAnswer: []string{"a"}},
				{ID: "s2", QuestionOrder: 1, Kind: SubKindSingle, Options: []Option{{ID: "a"}}, CorrectAnswer: []string{"a"}},
			}}},
			field: "sub_questions",
		},
		{
			name: "case study single with two correct",
			q: Question{ID: "x", Type: TypeCaseStudy, Payload: CaseStudy{SubQuestions: []SubQuestion{
				{ID: "s1", QuestionOrder: 1, Kind: SubKindSingle, Options: []Option{{ID: "a"}, {ID: "b"}}, CorrectAnswer: []string{"a", "b"}},
			}}},
			field: "sub_questions[s1]",
		},
		{
			name: "case study unknown kind",
			q: Question{ID: "x", Type: TypeCaseStudy, Payload: CaseStudy{SubQuestions: []SubQuestion{
				{ID: "s1", QuestionOrder: 1, Kind: "matrix", Options: []Option{{ID: "a"}}, CorrectAnswer: []string{"a"}},
			}}},
			field: "sub_questions[s1]",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.q)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidQuestionData)

			var iqe *InvalidQuestionError
			require.ErrorAs(t, err, &iqe)
			assert.Equal(t, tc.field, iqe.Field)
			assert.Equal(t, "x", iqe.QuestionID)
		})
	}
}

func TestType_Valid(t *testing.T) {
	for _, typ := range Types {
		assert.True(t, typ.Valid(), typ)
	}
	assert.False(t, Type("").Valid())
	assert.False(t, Type("SATA").Valid())
	assert.Len(t, Types, 15)
}
