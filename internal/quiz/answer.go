package quiz

// Answer is a student's response to one question. A nil Answer, or an answer
// whose Empty method returns true, means the question was not answered.
type Answer interface {
	Empty() bool
}

// IndexAnswer answers a single question. A nil SelectedIndex is unanswered;
// index 0 is the first option.
type IndexAnswer struct {
	SelectedIndex *int
}

func (a IndexAnswer) Empty() bool { return a.SelectedIndex == nil }

// IndexSetAnswer answers a multiple question.
type IndexSetAnswer struct {
	Selected []int
}

func (a IndexSetAnswer) Empty() bool { return len(a.Selected) == 0 }

// IDSetAnswer answers a SATA question.
type IDSetAnswer struct {
	Selected []string
}

func (a IDSetAnswer) Empty() bool { return len(a.Selected) == 0 }

// SelectionAnswer maps an element, row or dropdown group id to the chosen
// value. It answers diagram, cloze, matrix and sentence completion questions.
type SelectionAnswer struct {
	Selections map[string]string
}

func (a SelectionAnswer) Empty() bool { return len(a.Selections) == 0 }

// Selected returns the choice recorded for id, if any.
func (a SelectionAnswer) Selected(id string) (string, bool) {
	v, ok := a.Selections[id]
	return v, ok
}

// OrderAnswer answers an ordering question with the full id sequence.
type OrderAnswer struct {
	Order []string
}

func (a OrderAnswer) Empty() bool { return len(a.Order) == 0 }

// TextAnswer answers an input question.
type TextAnswer struct {
	Text *string
}

func (a TextAnswer) Empty() bool { return a.Text == nil }

// PlacementAnswer answers a drag-and-drop priority question.
type PlacementAnswer struct {
	PriorityItems []string
	MonitorItems  []string
}

func (a PlacementAnswer) Empty() bool {
	return len(a.PriorityItems) == 0 && len(a.MonitorItems) == 0
}

// ClassificationAnswer maps characteristic ids to the chosen condition ids.
type ClassificationAnswer struct {
	Classification map[string][]string
}

func (a ClassificationAnswer) Empty() bool { return len(a.Classification) == 0 }

// MarkAnswer maps finding ids to the student's expected/indicated mark. A
// finding missing from Marks is unmarked.
type MarkAnswer struct {
	Marks map[string]bool
}

func (a MarkAnswer) Empty() bool { return len(a.Marks) == 0 }

// ActionAnswer answers a priority action question.
type ActionAnswer struct {
	SelectedActionID *string
}

func (a ActionAnswer) Empty() bool { return a.SelectedActionID == nil }

// CaseStudyAnswer maps sub-question ids to the selected option ids. Single
// choice sub-questions carry one id.
type CaseStudyAnswer struct {
	Responses map[string][]string
}

func (a CaseStudyAnswer) Empty() bool { return len(a.Responses) == 0 }

// NewAnswer returns the empty answer for t, ready to be filled in as the
// student interacts with the question.
func NewAnswer(t Type) Answer {
	switch t {
	case TypeSingle:
		return &IndexAnswer{}
	case TypeMultiple:
		return &IndexSetAnswer{}
	case TypeSATA:
		return &IDSetAnswer{}
	case TypeDiagram, TypeCloze, TypeMatrix, TypeSentenceCompletion:
		return &SelectionAnswer{Selections: map[string]string{}}
	case TypeOrdering:
		return &OrderAnswer{}
	case TypeInput:
		return &TextAnswer{}
	case TypeDragDropPriority:
		return &PlacementAnswer{}
	case TypeCompareClassify:
		return &ClassificationAnswer{Classification: map[string][]string{}}
	case TypeExpectedNotExpected, TypeIndicatedNotIndicated:
		return &MarkAnswer{Marks: map[string]bool{}}
	case TypePriorityAction:
		return &ActionAnswer{}
	case TypeCaseStudy:
		return &CaseStudyAnswer{Responses: map[string][]string{}}
	}
	return nil
}
