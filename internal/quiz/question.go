// Package quiz holds the question and answer model for every supported question
// type, the evaluator that grades a single response, and the aggregator that
// scores a whole exam session. Nothing in this package performs I/O.
package quiz

// Type is the variant tag of a question.
type Type string

const (
	TypeSingle                Type = "single"
	TypeMultiple              Type = "multiple"
	TypeSATA                  Type = "sata"
	TypeDiagram               Type = "diagram"
	TypeCloze                 Type = "cloze"
	TypeMatrix                Type = "matrix"
	TypeOrdering              Type = "ordering"
	TypeInput                 Type = "input"
	TypeSentenceCompletion    Type = "sentence_completion"
	TypeDragDropPriority      Type = "drag_drop_priority"
	TypeCompareClassify       Type = "compare_classify"
	TypeExpectedNotExpected   Type = "expected_not_expected"
	TypeIndicatedNotIndicated Type = "indicated_not_indicated"
	TypePriorityAction        Type = "priority_action"
	TypeCaseStudy             Type = "case_study"
)

// Types lists every supported variant in a stable order.
var Types = []Type{
	TypeSingle,
	TypeMultiple,
	TypeSATA,
	TypeDiagram,
	TypeCloze,
	TypeMatrix,
	TypeOrdering,
	TypeInput,
	TypeSentenceCompletion,
	TypeDragDropPriority,
	TypeCompareClassify,
	TypeExpectedNotExpected,
	TypeIndicatedNotIndicated,
	TypePriorityAction,
	TypeCaseStudy,
}

// Valid reports whether t is one of the supported variants.
func (t Type) Valid() bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

// Question is one authored question. Payload carries the variant-specific
// fields and must match Type (see Validate).
type Question struct {
	ID          string
	Type        Type
	Prompt      string
	Scenario    string
	Rationale   string
	ClientNeeds string
	Payload     Payload
}

// Payload is implemented by every variant payload in this package.
type Payload interface {
	accepts(t Type) bool
}

// Option is a labelled choice addressed by id.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// IndexedChoice is the payload of single and multiple questions. Correct holds
// zero-based indices into Options.
type IndexedChoice struct {
	Options []string
	Correct []int
}

func (IndexedChoice) accepts(t Type) bool { return t == TypeSingle || t == TypeMultiple }

// Choice is the payload of select-all-that-apply questions. Correct holds
// option ids.
type Choice struct {
	Options []Option
	Correct []string
}

func (Choice) accepts(t Type) bool { return t == TypeSATA }

// Element is one dropdown of a diagram or one blank of a cloze passage.
type Element struct {
	ID            string
	Label         string
	Options       []string
	CorrectAnswer string
}

// ElementSet is the payload of diagram and cloze questions.
type ElementSet struct {
	Elements []Element
}

func (ElementSet) accepts(t Type) bool { return t == TypeDiagram || t == TypeCloze }

type MatrixRow struct {
	ID              string
	Label           string
	CorrectColumnID string
}

type MatrixColumn struct {
	ID    string
	Label string
}

// Matrix is the payload of matrix questions: one column must be picked per row.
type Matrix struct {
	Rows    []MatrixRow
	Columns []MatrixColumn
}

func (Matrix) accepts(t Type) bool { return t == TypeMatrix }

// Ordering is the payload of ordering questions. CorrectOrder must be a
// permutation of the item ids.
type Ordering struct {
	Items        []Option
	CorrectOrder []string
}

func (Ordering) accepts(t Type) bool { return t == TypeOrdering }

// Input is the payload of free-entry questions. A nil Tolerance means exact.
type Input struct {
	CorrectAnswer string
	Tolerance     *float64
	Unit          string
}

func (Input) accepts(t Type) bool { return t == TypeInput }

// DropdownGroup is one dropdown inside a sentence completion item.
type DropdownGroup struct {
	ID            string
	Options       []string
	CorrectAnswer string
}

// SentenceCompletion is the payload of sentence completion questions.
type SentenceCompletion struct {
	Template string
	Groups   []DropdownGroup
}

func (SentenceCompletion) accepts(t Type) bool { return t == TypeSentenceCompletion }

// PriorityItem is a finding the student places into the follow-up zone or the
// monitor zone.
type PriorityItem struct {
	ID               string
	Label            string
	RequiresFollowup bool
}

// DragDropPriority is the payload of drag-and-drop prioritisation questions.
// MinPriorityItems and MaxPriorityItems are optional bounds on the follow-up zone.
type DragDropPriority struct {
	Items            []PriorityItem
	MinPriorityItems *int
	MaxPriorityItems *int
}

func (DragDropPriority) accepts(t Type) bool { return t == TypeDragDropPriority }

// Characteristic is classified against the conditions it applies to.
type Characteristic struct {
	ID        string
	Label     string
	AppliesTo []string
}

// CompareClassify is the payload of compare-and-classify questions.
type CompareClassify struct {
	Conditions      []Option
	Characteristics []Characteristic
	AllowMultiple   bool
}

func (CompareClassify) accepts(t Type) bool { return t == TypeCompareClassify }

// Finding is one row of an expected/not-expected or indicated/not-indicated
// grid. Flag is the authored isExpected or isIndicated value.
type Finding struct {
	ID   string
	Text string
	Flag bool
}

// FindingSet is the payload of expected_not_expected and indicated_not_indicated
// questions.
type FindingSet struct {
	Findings []Finding
}

func (FindingSet) accepts(t Type) bool {
	return t == TypeExpectedNotExpected || t == TypeIndicatedNotIndicated
}

// Action is a candidate nursing action. PriorityRank is shown during review
// only; grading looks at the first choice.
type Action struct {
	ID           string
	Text         string
	PriorityRank int
}

// PriorityAction is the payload of priority action questions.
type PriorityAction struct {
	Actions         []Action
	CorrectActionID string
}

func (PriorityAction) accepts(t Type) bool { return t == TypePriorityAction }

// SubKind is the grading rule of a case study sub-question.
type SubKind string

const (
	SubKindSingle SubKind = "single"
	SubKindSATA   SubKind = "sata"
)

// SubQuestion is one independently graded part of a case study.
type SubQuestion struct {
	ID            string
	QuestionOrder int
	Kind          SubKind
	Prompt        string
	Options       []Option
	CorrectAnswer []string
}

// CaseStudy is the payload of case study questions.
type CaseStudy struct {
	SubQuestions []SubQuestion
}

func (CaseStudy) accepts(t Type) bool { return t == TypeCaseStudy }
