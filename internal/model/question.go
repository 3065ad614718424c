package model

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/stemsi/nurseprep-backend/internal/quiz"
)

// Question is one row of the questions table. Variant-specific fields live in
// the payload jsonb column using the column-style keys of QuestionPayload.
type Question struct {
	ID           uuid.UUID       `json:"id"`
	QBankID      uuid.UUID       `json:"qbank_id"`
	QuestionType quiz.Type       `json:"question_type"`
	Prompt       string          `json:"prompt"`
	Scenario     string          `json:"scenario,omitempty"`
	Rationale    string          `json:"rationale,omitempty"`
	ClientNeeds  string          `json:"client_needs,omitempty"`
	Payload      QuestionPayload `json:"payload"`
	OrderNum     int             `json:"order_num"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// QuestionPayload is the stored shape of every variant. Only the keys that
// belong to the question's type are populated.
type QuestionPayload struct {
	Options          []ChoiceOption    `json:"options,omitempty"`
	CorrectOptions   CorrectRefs       `json:"correct_options,omitzero"`
	DiagramElements  []ElementDoc      `json:"diagram_elements,omitempty"`
	ClozeElements    []ElementDoc      `json:"cloze_elements,omitempty"`
	MatrixRows       []MatrixRowDoc    `json:"matrix_rows,omitempty"`
	MatrixColumns    []ChoiceOption    `json:"matrix_columns,omitempty"`
	OrderingItems    []ChoiceOption    `json:"ordering_items,omitempty"`
	CorrectOrder     []string          `json:"correct_order,omitempty"`
	CorrectAnswer    string            `json:"correct_answer_input,omitempty"`
	Tolerance        *float64          `json:"tolerance,omitempty"`
	Unit             string            `json:"unit,omitempty"`
	SentenceTemplate string            `json:"sentence_template,omitempty"`
	DropdownGroups   []DropdownDoc     `json:"dropdown_groups,omitempty"`
	DragDropItems    []DragDropDoc     `json:"drag_drop_items,omitempty"`
	MinPriorityItems *int              `json:"min_priority_items,omitempty"`
	MaxPriorityItems *int              `json:"max_priority_items,omitempty"`
	Conditions       []ChoiceOption    `json:"conditions,omitempty"`
	Characteristics  []CharacterDoc    `json:"characteristics,omitempty"`
	AllowMultiple    bool              `json:"allow_multiple,omitempty"`
	Findings         []FindingDoc      `json:"findings,omitempty"`
	Interventions    []InterventionDoc `json:"interventions,omitempty"`
	Actions          []ActionDoc       `json:"actions,omitempty"`
	CorrectActionID  string            `json:"correct_action_id,omitempty"`
	SubQuestions     []SubQuestionDoc  `json:"sub_questions,omitempty"`
}

// ChoiceOption is a labelled choice. Single and multiple questions store bare
// strings, which decode into an option with an empty ID.
type ChoiceOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func (o *ChoiceOption) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		o.ID = ""
		return json.Unmarshal(b, &o.Label)
	}
	type plain ChoiceOption
	return json.Unmarshal(b, (*plain)(o))
}

func (o ChoiceOption) MarshalJSON() ([]byte, error) {
	if o.ID == "" {
		return json.Marshal(o.Label)
	}
	type plain ChoiceOption
	return json.Marshal(plain(o))
}

type ElementDoc struct {
	ID            string   `json:"id"`
	Label         string   `json:"label,omitempty"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
}

type MatrixRowDoc struct {
	ID              string `json:"id"`
	Label           string `json:"label"`
	CorrectColumnID string `json:"correct_column_id,omitempty"`
}

type DropdownDoc struct {
	ID            string   `json:"id"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
}

type DragDropDoc struct {
	ID               string `json:"id"`
	Label            string `json:"label"`
	RequiresFollowup *bool  `json:"requires_followup,omitempty"`
}

type CharacterDoc struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	AppliesTo []string `json:"applies_to,omitempty"`
}

type FindingDoc struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	IsExpected *bool  `json:"is_expected,omitempty"`
}

type InterventionDoc struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	IsIndicated *bool  `json:"is_indicated,omitempty"`
}

type ActionDoc struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	PriorityRank *int   `json:"priority_rank,omitempty"`
}

type SubQuestionDoc struct {
	ID            string         `json:"id"`
	QuestionOrder int            `json:"question_order"`
	Type          quiz.SubKind   `json:"type"`
	Prompt        string         `json:"prompt"`
	Options       []ChoiceOption `json:"options"`
	CorrectAnswer []string       `json:"correct_answer,omitempty"`
}

// ToQuiz maps the stored row into the grading model. The result is not
// validated here; callers run quiz.Validate or quiz.Evaluate.
func (q *Question) ToQuiz() quiz.Question {
	return quiz.Question{
		ID:          q.ID.String(),
		Type:        q.QuestionType,
		Prompt:      q.Prompt,
		Scenario:    q.Scenario,
		Rationale:   q.Rationale,
		ClientNeeds: q.ClientNeeds,
		Payload:     q.Payload.toQuiz(q.QuestionType),
	}
}

func (p *QuestionPayload) toQuiz(t quiz.Type) quiz.Payload {
	switch t {
	case quiz.TypeSingle, quiz.TypeMultiple:
		labels := make([]string, len(p.Options))
		for i, o := range p.Options {
			labels[i] = o.Label
		}
		return quiz.IndexedChoice{Options: labels, Correct: p.CorrectOptions.indices(p.Options)}
	case quiz.TypeSATA:
		return quiz.Choice{Options: toQuizOptions(p.Options), Correct: p.CorrectOptions.ids(p.Options)}
	case quiz.TypeDiagram:
		return quiz.ElementSet{Elements: toQuizElements(p.DiagramElements)}
	case quiz.TypeCloze:
		return quiz.ElementSet{Elements: toQuizElements(p.ClozeElements)}
	case quiz.TypeMatrix:
		m := quiz.Matrix{
			Rows:    make([]quiz.MatrixRow, len(p.MatrixRows)),
			Columns: make([]quiz.MatrixColumn, len(p.MatrixColumns)),
		}
		for i, r := range p.MatrixRows {
			m.Rows[i] = quiz.MatrixRow{ID: r.ID, Label: r.Label, CorrectColumnID: r.CorrectColumnID}
		}
		for i, c := range p.MatrixColumns {
			m.Columns[i] = quiz.MatrixColumn{ID: c.ID, Label: c.Label}
		}
		return m
	case quiz.TypeOrdering:
		return quiz.Ordering{Items: toQuizOptions(p.OrderingItems), CorrectOrder: p.CorrectOrder}
	case quiz.TypeInput:
		return quiz.Input{CorrectAnswer: p.CorrectAnswer, Tolerance: p.Tolerance, Unit: p.Unit}
	case quiz.TypeSentenceCompletion:
		groups := make([]quiz.DropdownGroup, len(p.DropdownGroups))
		for i, g := range p.DropdownGroups {
			groups[i] = quiz.DropdownGroup{ID: g.ID, Options: g.Options, CorrectAnswer: g.CorrectAnswer}
		}
		return quiz.SentenceCompletion{Template: p.SentenceTemplate, Groups: groups}
	case quiz.TypeDragDropPriority:
		items := make([]quiz.PriorityItem, len(p.DragDropItems))
		for i, it := range p.DragDropItems {
			items[i] = quiz.PriorityItem{ID: it.ID, Label: it.Label, RequiresFollowup: it.RequiresFollowup != nil && *it.RequiresFollowup}
		}
		return quiz.DragDropPriority{Items: items, MinPriorityItems: p.MinPriorityItems, MaxPriorityItems: p.MaxPriorityItems}
	case quiz.TypeCompareClassify:
		chars := make([]quiz.Characteristic, len(p.Characteristics))
		for i, c := range p.Characteristics {
			chars[i] = quiz.Characteristic{ID: c.ID, Label: c.Label, AppliesTo: c.AppliesTo}
		}
		return quiz.CompareClassify{Conditions: toQuizOptions(p.Conditions), Characteristics: chars, AllowMultiple: p.AllowMultiple}
	case quiz.TypeExpectedNotExpected:
		findings := make([]quiz.Finding, len(p.Findings))
		for i, f := range p.Findings {
			findings[i] = quiz.Finding{ID: f.ID, Text: f.Text, Flag: f.IsExpected != nil && *f.IsExpected}
		}
		return quiz.FindingSet{Findings: findings}
	case quiz.TypeIndicatedNotIndicated:
		findings := make([]quiz.Finding, len(p.Interventions))
		for i, f := range p.Interventions {
			findings[i] = quiz.Finding{ID: f.ID, Text: f.Text, Flag: f.IsIndicated != nil && *f.IsIndicated}
		}
		return quiz.FindingSet{Findings: findings}
	case quiz.TypePriorityAction:
		actions := make([]quiz.Action, len(p.Actions))
		for i, a := range p.Actions {
			actions[i] = quiz.Action{ID: a.ID, Text: a.Text}
			if a.PriorityRank != nil {
				actions[i].PriorityRank = *a.PriorityRank
			}
		}
		return quiz.PriorityAction{Actions: actions, CorrectActionID: p.CorrectActionID}
	case quiz.TypeCaseStudy:
		subs := make([]quiz.SubQuestion, len(p.SubQuestions))
		for i, s := range p.SubQuestions {
			subs[i] = quiz.SubQuestion{
				ID:            s.ID,
				QuestionOrder: s.QuestionOrder,
				Kind:          s.Type,
				Prompt:        s.Prompt,
				Options:       toQuizOptions(s.Options),
				CorrectAnswer: s.CorrectAnswer,
			}
		}
		return quiz.CaseStudy{SubQuestions: subs}
	}
	return nil
}

func toQuizOptions(opts []ChoiceOption) []quiz.Option {
	out := make([]quiz.Option, len(opts))
	for i, o := range opts {
		out[i] = quiz.Option{ID: o.ID, Label: o.Label}
	}
	return out
}

func toQuizElements(els []ElementDoc) []quiz.Element {
	out := make([]quiz.Element, len(els))
	for i, el := range els {
		out[i] = quiz.Element{ID: el.ID, Label: el.Label, Options: el.Options, CorrectAnswer: el.CorrectAnswer}
	}
	return out
}

// QuestionForStudent is a question as it appears on the exam paper: every
// answer-bearing field is removed.
type QuestionForStudent struct {
	ID           uuid.UUID       `json:"id"`
	QuestionType quiz.Type       `json:"question_type"`
	Prompt       string          `json:"prompt"`
	Scenario     string          `json:"scenario,omitempty"`
	ClientNeeds  string          `json:"client_needs,omitempty"`
	Payload      QuestionPayload `json:"payload"`
	OrderNum     int             `json:"order_num"`
}

// StudentView returns the redacted copy of q served to students. The receiver
// is not modified.
func (q *Question) StudentView() QuestionForStudent {
	p := q.Payload.clone()
	p.CorrectOptions = CorrectRefs{}
	for i := range p.DiagramElements {
		p.DiagramElements[i].CorrectAnswer = ""
	}
	for i := range p.ClozeElements {
		p.ClozeElements[i].CorrectAnswer = ""
	}
	for i := range p.MatrixRows {
		p.MatrixRows[i].CorrectColumnID = ""
	}
	p.CorrectOrder = nil
	p.CorrectAnswer = ""
	p.Tolerance = nil
	for i := range p.DropdownGroups {
		p.DropdownGroups[i].CorrectAnswer = ""
	}
	for i := range p.DragDropItems {
		p.DragDropItems[i].RequiresFollowup = nil
	}
	for i := range p.Characteristics {
		p.Characteristics[i].AppliesTo = nil
	}
	for i := range p.Findings {
		p.Findings[i].IsExpected = nil
	}
	for i := range p.Interventions {
		p.Interventions[i].IsIndicated = nil
	}
	for i := range p.Actions {
		p.Actions[i].PriorityRank = nil
	}
	p.CorrectActionID = ""
	for i := range p.SubQuestions {
		p.SubQuestions[i].CorrectAnswer = nil
	}
	sort.SliceStable(p.SubQuestions, func(i, j int) bool {
		return p.SubQuestions[i].QuestionOrder < p.SubQuestions[j].QuestionOrder
	})

	return QuestionForStudent{
		ID:           q.ID,
		QuestionType: q.QuestionType,
		Prompt:       q.Prompt,
		Scenario:     q.Scenario,
		ClientNeeds:  q.ClientNeeds,
		Payload:      p,
		OrderNum:     q.OrderNum,
	}
}

// clone copies every slice that StudentView mutates.
func (p QuestionPayload) clone() QuestionPayload {
	p.DiagramElements = append([]ElementDoc(nil), p.DiagramElements...)
	p.ClozeElements = append([]ElementDoc(nil), p.ClozeElements...)
	p.MatrixRows = append([]MatrixRowDoc(nil), p.MatrixRows...)
	p.DropdownGroups = append([]DropdownDoc(nil), p.DropdownGroups...)
	p.DragDropItems = append([]DragDropDoc(nil), p.DragDropItems...)
	p.Characteristics = append([]CharacterDoc(nil), p.Characteristics...)
	p.Findings = append([]FindingDoc(nil), p.Findings...)
	p.Interventions = append([]InterventionDoc(nil), p.Interventions...)
	p.Actions = append([]ActionDoc(nil), p.Actions...)
	p.SubQuestions = append([]SubQuestionDoc(nil), p.SubQuestions...)
	return p
}

// QuestionRequest is the payload for adding or replacing a question.
type QuestionRequest struct {
	QuestionType string          `json:"question_type" binding:"required,question_type"`
	Prompt       string          `json:"prompt" binding:"required,min=1,max=4000"`
	Scenario     string          `json:"scenario" binding:"omitempty,max=8000"`
	Rationale    string          `json:"rationale" binding:"omitempty,max=8000"`
	ClientNeeds  string          `json:"client_needs" binding:"omitempty,max=100"`
	Payload      QuestionPayload `json:"payload"`
	OrderNum     int             `json:"order_num" binding:"min=0"`
}

// ToModel builds an unsaved question for the given bank.
func (r *QuestionRequest) ToModel(qbankID uuid.UUID) Question {
	return Question{
		QBankID:      qbankID,
		QuestionType: quiz.Type(r.QuestionType),
		Prompt:       r.Prompt,
		Scenario:     r.Scenario,
		Rationale:    r.Rationale,
		ClientNeeds:  r.ClientNeeds,
		Payload:      r.Payload,
		OrderNum:     r.OrderNum,
	}
}

// ReplaceQuestionsRequest is the payload for bulk replacing questions.
type ReplaceQuestionsRequest struct {
	Questions []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}
