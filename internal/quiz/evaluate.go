package quiz

import (
	"fmt"
	"sort"
)

// Evaluate grades answer against q. The question is validated first, so a
// malformed question yields an error wrapping ErrInvalidQuestionData whether
// or not it was answered. A nil or empty answer is not an error: the verdict
// has Answered=false and IsCorrect=false.
//
// Evaluate has no side effects and may be called concurrently.
func Evaluate(q Question, answer Answer) (Verdict, error) {
	if err := Validate(q); err != nil {
		return Verdict{}, err
	}

	a, err := normalizeAnswer(answer)
	if err != nil {
		return Verdict{}, err
	}

	v := Verdict{QuestionID: q.ID, Type: q.Type}

	switch p := q.Payload.(type) {
	case IndexedChoice:
		if q.Type == TypeSingle {
			ans, err := answerAs[IndexAnswer](q, a)
			if err != nil {
				return Verdict{}, err
			}
			evalSingle(&v, p, ans)
		} else {
			ans, err := answerAs[IndexSetAnswer](q, a)
			if err != nil {
				return Verdict{}, err
			}
			evalMultiple(&v, p, ans)
		}
	case Choice:
		ans, err := answerAs[IDSetAnswer](q, a)
		if err != nil {
			return Verdict{}, err
		}
		evalIDSet(&v, p.Correct, ans.Selected)
	case ElementSet:
		ans, err := answerAs[SelectionAnswer](q, a)
		if err != nil {
			return Verdict{}, err
		}
		items := make([]keyed, len(p.Elements))
		for i, el := range p.Elements {
			items[i] = keyed{id: el.ID, want: el.CorrectAnswer}
		}
		evalSelections(&v, items, ans)
	case Matrix:
		ans, err := answerAs[SelectionAnswer](q, a)
		if err != nil {
			return Verdict{}, err
		}
		items := make([]keyed, len(p.Rows))
		for i, r := range p.Rows {
			items[i] = keyed{id: r.ID, want: r.CorrectColumnID}
		}
		evalSelections(&v, items, ans)
	case SentenceCompletion:
		ans, err := answerAs[SelectionAnswer](q, a)
		if err != nil {
			return Verdict{}, err
		}
		items := make([]keyed, len(p.Groups))
		for i, g := range p.Groups {
			items[i] = keyed{id: g.ID, want: g.CorrectAnswer}
		}
		evalSelections(&v, items, ans)
	case Ordering:
		ans, err := answerAs[OrderAnswer](q, a)
		if err != nil {
			return Verdict{}, err
		}
		evalOrdering(&v, p, ans)
	case Input:
		ans, err := answerAs[TextAnswer](q, a)
		if err != nil {
			return Verdict{}, err
		}
		evalInput(&v, p, ans)
	case DragDropPriority:
		ans, err := answerAs[PlacementAnswer](q, a)
		if err != nil {
			return Verdict{}, err
		}
		evalDragDrop(&v, p, ans)
	case CompareClassify:
		ans, err := answerAs[ClassificationAnswer](q, a)
		if err != nil {
			return Verdict{}, err
		}
		evalClassify(&v, p, ans)
	case FindingSet:
		ans, err := answerAs[MarkAnswer](q, a)
		if err != nil {
			return Verdict{}, err
		}
		evalFindings(&v, p, ans)
	case PriorityAction:
		ans, err := answerAs[ActionAnswer](q, a)
		if err != nil {
			return Verdict{}, err
		}
		v.Answered = !ans.Empty()
		v.IsCorrect = v.Answered && *ans.SelectedActionID == p.CorrectActionID
	case CaseStudy:
		ans, err := answerAs[CaseStudyAnswer](q, a)
		if err != nil {
			return Verdict{}, err
		}
		evalCaseStudy(&v, p, ans)
	default:
		// Unreachable once Validate has accepted the payload.
		return Verdict{}, invalid(q, "payload", "unsupported payload %T", q.Payload)
	}

	return v, nil
}

// normalizeAnswer dereferences pointer answers so every evaluator works on
// values. Nil pointers become a nil Answer.
func normalizeAnswer(a Answer) (Answer, error) {
	switch t := a.(type) {
	case nil:
		return nil, nil
	case *IndexAnswer:
		return derefAnswer(t)
	case *IndexSetAnswer:
		return derefAnswer(t)
	case *IDSetAnswer:
		return derefAnswer(t)
	case *SelectionAnswer:
		return derefAnswer(t)
	case *OrderAnswer:
		return derefAnswer(t)
	case *TextAnswer:
		return derefAnswer(t)
	case *PlacementAnswer:
		return derefAnswer(t)
	case *ClassificationAnswer:
		return derefAnswer(t)
	case *MarkAnswer:
		return derefAnswer(t)
	case *ActionAnswer:
		return derefAnswer(t)
	case *CaseStudyAnswer:
		return derefAnswer(t)
	case IndexAnswer, IndexSetAnswer, IDSetAnswer, SelectionAnswer, OrderAnswer, TextAnswer,
		PlacementAnswer, ClassificationAnswer, MarkAnswer, ActionAnswer, CaseStudyAnswer:
		return a, nil
	default:
		return nil, fmt.Errorf("%w: unsupported answer %T", ErrAnswerTypeMismatch, a)
	}
}

func derefAnswer[T Answer](p *T) (Answer, error) {
	if p == nil {
		return nil, nil
	}
	return *p, nil
}

// answerAs asserts a to the shape expected by q. A nil answer yields the zero
// (empty) value of T.
func answerAs[T Answer](q Question, a Answer) (T, error) {
	var zero T
	if a == nil {
		return zero, nil
	}
	t, ok := a.(T)
	if !ok {
		return zero, fmt.Errorf("%w: question %q (%s) got %T", ErrAnswerTypeMismatch, q.ID, q.Type, a)
	}
	return t, nil
}

func evalSingle(v *Verdict, p IndexedChoice, a IndexAnswer) {
	if a.Empty() {
		return
	}
	v.Answered = true
	for _, idx := range p.Correct {
		if idx == *a.SelectedIndex {
			v.IsCorrect = true
			return
		}
	}
}

func evalMultiple(v *Verdict, p IndexedChoice, a IndexSetAnswer) {
	v.Answered = !a.Empty()
	c := setCounts(toSet(a.Selected), toSet(p.Correct))
	v.Counts = &c
	v.IsCorrect = v.Answered && c.Correct == c.Total && c.Incorrect == 0
}

func evalIDSet(v *Verdict, correctIDs, selectedIDs []string) {
	v.Answered = len(selectedIDs) > 0
	selected := toSet(selectedIDs)
	correct := toSet(correctIDs)
	c := setCounts(selected, correct)
	v.Counts = &c
	v.IsCorrect = v.Answered && c.Correct == c.Total && c.Incorrect == 0
}

type keyed struct {
	id   string
	want string
}

// evalSelections grades elements, rows and dropdown groups by exact string
// match. No trimming or case folding is applied.
func evalSelections(v *Verdict, items []keyed, a SelectionAnswer) {
	v.Answered = !a.Empty()
	v.Items = make([]ItemVerdict, len(items))
	for i, it := range items {
		got, ok := a.Selected(it.id)
		v.Items[i] = ItemVerdict{ID: it.id, Answered: ok, IsCorrect: ok && got == it.want}
	}
	finishItems(v)
}

func evalOrdering(v *Verdict, p Ordering, a OrderAnswer) {
	if a.Empty() {
		return
	}
	v.Answered = true
	if len(a.Order) != len(p.CorrectOrder) {
		return
	}
	for i := range p.CorrectOrder {
		if a.Order[i] != p.CorrectOrder[i] {
			return
		}
	}
	v.IsCorrect = true
}

func evalInput(v *Verdict, p Input, a TextAnswer) {
	if a.Empty() {
		return
	}
	v.Answered = true
	v.IsCorrect = inputMatches(p, *a.Text)
}

// evalDragDrop credits an item when its presence in the priority zone matches
// RequiresFollowup. The monitor zone is informational; leaving a non-urgent
// item unplaced is the same as monitoring it.
func evalDragDrop(v *Verdict, p DragDropPriority, a PlacementAnswer) {
	v.Answered = !a.Empty()
	priority := toSet(a.PriorityItems)
	monitor := toSet(a.MonitorItems)

	known := make(map[string]struct{}, len(p.Items))
	v.Items = make([]ItemVerdict, len(p.Items))
	for i, it := range p.Items {
		known[it.ID] = struct{}{}
		_, inPriority := priority[it.ID]
		_, inMonitor := monitor[it.ID]
		v.Items[i] = ItemVerdict{
			ID:        it.ID,
			Answered:  inPriority || inMonitor,
			IsCorrect: inPriority == it.RequiresFollowup,
		}
	}
	finishItems(v)

	if v.Answered && !withinBounds(len(priority), p.MinPriorityItems, p.MaxPriorityItems) {
		v.PlacementOutOfBounds = true
		v.IsCorrect = false
	}
	for id := range priority {
		if _, ok := known[id]; !ok {
			v.IsCorrect = false
		}
	}
	for id := range monitor {
		if _, ok := known[id]; !ok {
			v.IsCorrect = false
		}
	}
}

// evalClassify credits a characteristic when the chosen condition is one it
// applies to. With AllowMultiple the student may choose several conditions and
// must choose exactly the applicable set.
func evalClassify(v *Verdict, p CompareClassify, a ClassificationAnswer) {
	v.Answered = !a.Empty()
	v.Items = make([]ItemVerdict, len(p.Characteristics))
	for i, c := range p.Characteristics {
		chosen := toSet(a.Classification[c.ID])
		iv := ItemVerdict{ID: c.ID, Answered: len(chosen) > 0}
		switch {
		case len(chosen) == 0:
		case p.AllowMultiple:
			iv.IsCorrect = setsEqual(chosen, toSet(c.AppliesTo))
		case len(chosen) == 1:
			for id := range chosen {
				iv.IsCorrect = containsString(c.AppliesTo, id)
			}
		}
		v.Items[i] = iv
	}
	finishItems(v)
}

func evalFindings(v *Verdict, p FindingSet, a MarkAnswer) {
	v.Answered = !a.Empty()
	v.Items = make([]ItemVerdict, len(p.Findings))
	for i, f := range p.Findings {
		mark, ok := a.Marks[f.ID]
		v.Items[i] = ItemVerdict{ID: f.ID, Answered: ok, IsCorrect: ok && mark == f.Flag}
	}
	finishItems(v)
}

// evalCaseStudy grades every sub-question in questionOrder sequence. A case
// study has no pass/fail of its own: IsCorrect stays false and the
// sub-verdicts carry the outcome.
func evalCaseStudy(v *Verdict, p CaseStudy, a CaseStudyAnswer) {
	v.Answered = !a.Empty()
	subs := orderedSubQuestions(p)
	v.SubVerdicts = make([]Verdict, len(subs))
	correct := 0
	for i, sq := range subs {
		sv := Verdict{QuestionID: sq.ID}
		selected := a.Responses[sq.ID]
		switch sq.Kind {
		case SubKindSingle:
			sv.Type = TypeSingle
			sv.Answered = len(selected) > 0
			sv.IsCorrect = len(selected) == 1 && containsString(sq.CorrectAnswer, selected[0])
		case SubKindSATA:
			sv.Type = TypeSATA
			evalIDSet(&sv, sq.CorrectAnswer, selected)
		}
		if sv.IsCorrect {
			correct++
		}
		v.SubVerdicts[i] = sv
	}
	v.Counts = &Counts{Correct: correct, Incorrect: len(subs) - correct, Total: len(subs)}
}

func orderedSubQuestions(p CaseStudy) []SubQuestion {
	subs := make([]SubQuestion, len(p.SubQuestions))
	copy(subs, p.SubQuestions)
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].QuestionOrder < subs[j].QuestionOrder
	})
	return subs
}

// finishItems derives counts and overall correctness from v.Items.
func finishItems(v *Verdict) {
	c := Counts{Total: len(v.Items)}
	for _, it := range v.Items {
		if it.IsCorrect {
			c.Correct++
		} else {
			c.Incorrect++
		}
	}
	v.Counts = &c
	v.IsCorrect = v.Answered && c.Correct == c.Total
}
