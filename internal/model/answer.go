package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stemsi/nurseprep-backend/internal/quiz"
)

// ErrMalformedAnswer is returned by DecodeAnswer when the stored JSON cannot
// be read as an answer of the question's type. Callers grade such answers as
// missing.
var ErrMalformedAnswer = errors.New("malformed answer")

// Wire shapes of student answers, as sent over the exam stream and stored in
// student_answers.answer.
type (
	singleAnswerJSON struct {
		SelectedIndex *int `json:"selected_index"`
	}
	multipleAnswerJSON struct {
		Selected []int `json:"selected"`
	}
	sataAnswerJSON struct {
		Selected []string `json:"selected"`
	}
	selectionAnswerJSON struct {
		Selections map[string]string `json:"selections"`
	}
	orderingAnswerJSON struct {
		Order []string `json:"order"`
	}
	inputAnswerJSON struct {
		Text *string `json:"text"`
	}
	placementAnswerJSON struct {
		PriorityItems []string `json:"priority_items"`
		MonitorItems  []string `json:"monitor_items"`
	}
	classificationAnswerJSON struct {
		Classification map[string][]string `json:"classification"`
	}
	markAnswerJSON struct {
		Marks map[string]bool `json:"marks"`
	}
	actionAnswerJSON struct {
		SelectedActionID *string `json:"selected_action_id"`
	}
	caseStudyAnswerJSON struct {
		Responses map[string][]string `json:"responses"`
	}
)

// DecodeAnswer reads raw answer JSON for a question of type t. Empty input or
// JSON null yields a nil Answer and no error.
func DecodeAnswer(t quiz.Type, raw []byte) (quiz.Answer, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var (
		ans quiz.Answer
		err error
	)
	switch t {
	case quiz.TypeSingle:
		var w singleAnswerJSON
		err = strictUnmarshal(raw, &w)
		ans = quiz.IndexAnswer{SelectedIndex: w.SelectedIndex}
	case quiz.TypeMultiple:
		var w multipleAnswerJSON
		err = strictUnmarshal(raw, &w)
		ans = quiz.IndexSetAnswer{Selected: w.Selected}
	case quiz.TypeSATA:
		var w sataAnswerJSON
		err = strictUnmarshal(raw, &w)
		ans = quiz.IDSetAnswer{Selected: w.Selected}
	case quiz.TypeDiagram, quiz.TypeCloze, quiz.TypeMatrix, quiz.TypeSentenceCompletion:
		var w selectionAnswerJSON
		err = strictUnmarshal(raw, &w)
		ans = quiz.SelectionAnswer{Selections: w.Selections}
	case quiz.TypeOrdering:
		var w orderingAnswerJSON
		err = strictUnmarshal(raw, &w)
		ans = quiz.OrderAnswer{Order: w.Order}
	case quiz.TypeInput:
		var w inputAnswerJSON
		err = strictUnmarshal(raw, &w)
		ans = quiz.TextAnswer{Text: w.Text}
	case quiz.TypeDragDropPriority:
		var w placementAnswerJSON
		err = strictUnmarshal(raw, &w)
		ans = quiz.PlacementAnswer{PriorityItems: w.PriorityItems, MonitorItems: w.MonitorItems}
	case quiz.TypeCompareClassify:
		var w classificationAnswerJSON
		err = strictUnmarshal(raw, &w)
		ans = quiz.ClassificationAnswer{Classification: w.Classification}
	case quiz.TypeExpectedNotExpected, quiz.TypeIndicatedNotIndicated:
		var w markAnswerJSON
		err = strictUnmarshal(raw, &w)
		ans = quiz.MarkAnswer{Marks: w.Marks}
	case quiz.TypePriorityAction:
		var w actionAnswerJSON
		err = strictUnmarshal(raw, &w)
		ans = quiz.ActionAnswer{SelectedActionID: w.SelectedActionID}
	case quiz.TypeCaseStudy:
		var w caseStudyAnswerJSON
		err = strictUnmarshal(raw, &w)
		ans = quiz.CaseStudyAnswer{Responses: w.Responses}
	default:
		return nil, fmt.Errorf("%w: unknown question type %q", ErrMalformedAnswer, t)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedAnswer, t, err)
	}
	return ans, nil
}

func strictUnmarshal(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
