package quiz

import (
	"math"
	"strings"
)

// Validate checks the referential integrity of q: the payload matches the
// variant tag, ids are unique within their list, and every correct-answer
// reference resolves against the question's own options or items. The
// returned error wraps ErrInvalidQuestionData.
func Validate(q Question) error {
	if !q.Type.Valid() {
		return invalid(q, "type", "unknown question type")
	}
	if q.Payload == nil {
		return invalid(q, "payload", "missing")
	}
	if !q.Payload.accepts(q.Type) {
		return invalid(q, "payload", "%T does not belong to %s", q.Payload, q.Type)
	}

	switch p := q.Payload.(type) {
	case IndexedChoice:
		return validateIndexedChoice(q, p)
	case Choice:
		return validateChoice(q, "options", p.Options, p.Correct, false)
	case ElementSet:
		return validateElements(q, p)
	case Matrix:
		return validateMatrix(q, p)
	case Ordering:
		return validateOrdering(q, p)
	case Input:
		return validateInput(q, p)
	case SentenceCompletion:
		return validateSentence(q, p)
	case DragDropPriority:
		return validateDragDrop(q, p)
	case CompareClassify:
		return validateClassify(q, p)
	case FindingSet:
		return validateFindings(q, p)
	case PriorityAction:
		return validatePriorityAction(q, p)
	case CaseStudy:
		return validateCaseStudy(q, p)
	default:
		return invalid(q, "payload", "unsupported payload %T", q.Payload)
	}
}

func validateIndexedChoice(q Question, p IndexedChoice) error {
	if len(p.Options) == 0 {
		return invalid(q, "options", "no options")
	}
	if len(p.Correct) == 0 {
		return invalid(q, "correct_options", "no correct option")
	}
	for _, idx := range p.Correct {
		if idx < 0 || idx >= len(p.Options) {
			return invalid(q, "correct_options", "index %d out of range [0,%d)", idx, len(p.Options))
		}
	}
	return nil
}

func validateChoice(q Question, field string, options []Option, correct []string, single bool) error {
	ids, err := optionIDs(q, field, options)
	if err != nil {
		return err
	}
	if len(correct) == 0 {
		return invalid(q, field, "no correct option")
	}
	if single && len(correct) != 1 {
		return invalid(q, field, "single choice needs exactly one correct option, got %d", len(correct))
	}
	for _, id := range correct {
		if _, ok := ids[id]; !ok {
			return invalid(q, field, "correct option %q not found", id)
		}
	}
	return nil
}

func validateElements(q Question, p ElementSet) error {
	if len(p.Elements) == 0 {
		return invalid(q, "elements", "no elements")
	}
	seen := make(map[string]struct{}, len(p.Elements))
	for _, el := range p.Elements {
		if err := checkID(q, "elements", el.ID, seen); err != nil {
			return err
		}
		if len(el.Options) == 0 {
			return invalid(q, "elements", "element %q has no options", el.ID)
		}
		if !containsString(el.Options, el.CorrectAnswer) {
			return invalid(q, "elements", "element %q correct answer %q is not one of its options", el.ID, el.CorrectAnswer)
		}
	}
	return nil
}

func validateMatrix(q Question, p Matrix) error {
	if len(p.Rows) == 0 {
		return invalid(q, "matrix_rows", "no rows")
	}
	if len(p.Columns) == 0 {
		return invalid(q, "matrix_columns", "no columns")
	}
	cols := make(map[string]struct{}, len(p.Columns))
	for _, c := range p.Columns {
		if err := checkID(q, "matrix_columns", c.ID, cols); err != nil {
			return err
		}
	}
	rows := make(map[string]struct{}, len(p.Rows))
	for _, r := range p.Rows {
		if err := checkID(q, "matrix_rows", r.ID, rows); err != nil {
			return err
		}
		if _, ok := cols[r.CorrectColumnID]; !ok {
			return invalid(q, "matrix_rows", "row %q correct column %q not found", r.ID, r.CorrectColumnID)
		}
	}
	return nil
}

func validateOrdering(q Question, p Ordering) error {
	ids, err := optionIDs(q, "ordering_items", p.Items)
	if err != nil {
		return err
	}
	if len(p.CorrectOrder) != len(p.Items) {
		return invalid(q, "correct_order", "has %d ids, expected %d", len(p.CorrectOrder), len(p.Items))
	}
	used := make(map[string]struct{}, len(p.CorrectOrder))
	for _, id := range p.CorrectOrder {
		if _, ok := ids[id]; !ok {
			return invalid(q, "correct_order", "item %q not found", id)
		}
		if _, dup := used[id]; dup {
			return invalid(q, "correct_order", "item %q repeated", id)
		}
		used[id] = struct{}{}
	}
	return nil
}

func validateInput(q Question, p Input) error {
	if strings.TrimSpace(p.CorrectAnswer) == "" {
		return invalid(q, "correct_answer_input", "empty")
	}
	if p.Tolerance == nil {
		return nil
	}
	tol := *p.Tolerance
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol < 0 {
		return invalid(q, "tolerance", "must be a finite non-negative number, got %v", tol)
	}
	if _, ok := parseNumber(p.CorrectAnswer, p.Unit); !ok {
		return invalid(q, "tolerance", "set on non-numeric answer %q", p.CorrectAnswer)
	}
	return nil
}

func validateSentence(q Question, p SentenceCompletion) error {
	if len(p.Groups) == 0 {
		return invalid(q, "dropdown_groups", "no groups")
	}
	seen := make(map[string]struct{}, len(p.Groups))
	for _, g := range p.Groups {
		if err := checkID(q, "dropdown_groups", g.ID, seen); err != nil {
			return err
		}
		if len(g.Options) == 0 {
			return invalid(q, "dropdown_groups", "group %q has no options", g.ID)
		}
		if !containsString(g.Options, g.CorrectAnswer) {
			return invalid(q, "dropdown_groups", "group %q correct answer %q is not one of its options", g.ID, g.CorrectAnswer)
		}
	}
	return nil
}

func validateDragDrop(q Question, p DragDropPriority) error {
	if len(p.Items) == 0 {
		return invalid(q, "drag_drop_items", "no items")
	}
	seen := make(map[string]struct{}, len(p.Items))
	followups := 0
	for _, it := range p.Items {
		if err := checkID(q, "drag_drop_items", it.ID, seen); err != nil {
			return err
		}
		if it.RequiresFollowup {
			followups++
		}
	}
	if p.MinPriorityItems != nil && *p.MinPriorityItems < 0 {
		return invalid(q, "min_priority_items", "negative")
	}
	if p.MinPriorityItems != nil && p.MaxPriorityItems != nil && *p.MinPriorityItems > *p.MaxPriorityItems {
		return invalid(q, "max_priority_items", "min %d greater than max %d", *p.MinPriorityItems, *p.MaxPriorityItems)
	}
	if !withinBounds(followups, p.MinPriorityItems, p.MaxPriorityItems) {
		return invalid(q, "drag_drop_items", "%d items require follow-up, outside the declared priority bounds", followups)
	}
	return nil
}

func validateClassify(q Question, p CompareClassify) error {
	conds, err := optionIDs(q, "conditions", p.Conditions)
	if err != nil {
		return err
	}
	if len(p.Characteristics) == 0 {
		return invalid(q, "characteristics", "no characteristics")
	}
	seen := make(map[string]struct{}, len(p.Characteristics))
	for _, c := range p.Characteristics {
		if err := checkID(q, "characteristics", c.ID, seen); err != nil {
			return err
		}
		if len(c.AppliesTo) == 0 {
			return invalid(q, "characteristics", "characteristic %q applies to no condition", c.ID)
		}
		for _, id := range c.AppliesTo {
			if _, ok := conds[id]; !ok {
				return invalid(q, "characteristics", "characteristic %q references unknown condition %q", c.ID, id)
			}
		}
	}
	return nil
}

func validateFindings(q Question, p FindingSet) error {
	if len(p.Findings) == 0 {
		return invalid(q, "findings", "no findings")
	}
	seen := make(map[string]struct{}, len(p.Findings))
	for _, f := range p.Findings {
		if err := checkID(q, "findings", f.ID, seen); err != nil {
			return err
		}
	}
	return nil
}

func validatePriorityAction(q Question, p PriorityAction) error {
	if len(p.Actions) == 0 {
		return invalid(q, "actions", "no actions")
	}
	seen := make(map[string]struct{}, len(p.Actions))
	for _, a := range p.Actions {
		if err := checkID(q, "actions", a.ID, seen); err != nil {
			return err
		}
	}
	if _, ok := seen[p.CorrectActionID]; !ok {
		return invalid(q, "correct_action_id", "action %q not found", p.CorrectActionID)
	}
	return nil
}

func validateCaseStudy(q Question, p CaseStudy) error {
	if len(p.SubQuestions) == 0 {
		return invalid(q, "sub_questions", "no sub-questions")
	}
	seen := make(map[string]struct{}, len(p.SubQuestions))
	orders := make(map[int]string, len(p.SubQuestions))
	for _, sq := range p.SubQuestions {
		if err := checkID(q, "sub_questions", sq.ID, seen); err != nil {
			return err
		}
		if other, dup := orders[sq.QuestionOrder]; dup {
			return invalid(q, "sub_questions", "sub-questions %q and %q share question order %d", other, sq.ID, sq.QuestionOrder)
		}
		orders[sq.QuestionOrder] = sq.ID

		field := "sub_questions[" + sq.ID + "]"
		switch sq.Kind {
		case SubKindSingle:
			if err := validateChoice(q, field, sq.Options, sq.CorrectAnswer, true); err != nil {
				return err
			}
		case SubKindSATA:
			if err := validateChoice(q, field, sq.Options, sq.CorrectAnswer, false); err != nil {
				return err
			}
		default:
			return invalid(q, field, "unknown sub-question kind %q", sq.Kind)
		}
	}
	return nil
}

func optionIDs(q Question, field string, options []Option) (map[string]struct{}, error) {
	if len(options) == 0 {
		return nil, invalid(q, field, "no options")
	}
	ids := make(map[string]struct{}, len(options))
	for _, o := range options {
		if err := checkID(q, field, o.ID, ids); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func checkID(q Question, field, id string, seen map[string]struct{}) error {
	if id == "" {
		return invalid(q, field, "empty id")
	}
	if _, dup := seen[id]; dup {
		return invalid(q, field, "duplicate id %q", id)
	}
	seen[id] = struct{}{}
	return nil
}

func withinBounds(n int, lo, hi *int) bool {
	if lo != nil && n < *lo {
		return false
	}
	if hi != nil && n > *hi {
		return false
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
