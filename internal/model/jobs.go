package model

import "encoding/json"

// AnswerJob is queued on persist_answers_queue for every autosave.
type AnswerJob struct {
	StudentID int             `json:"student_id"`
	ExamID    string          `json:"exam_id"`
	QID       string          `json:"q_id"`
	Answer    json.RawMessage `json:"answer"`
}

// ScoreJob is queued on persist_scores_queue when a session is submitted.
type ScoreJob struct {
	StudentID int           `json:"student_id"`
	ExamID    string        `json:"exam_id"`
	Review    SessionReview `json:"review"`
}
