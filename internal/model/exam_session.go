package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/stemsi/nurseprep-backend/internal/quiz"
)

// SessionStatus enumerates exam session states.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
)

// ExamSession represents a student's exam attempt.
type ExamSession struct {
	ID         uuid.UUID       `json:"id"`
	ExamID     uuid.UUID       `json:"exam_id"`
	StudentID  int             `json:"student_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Status     SessionStatus   `json:"status"`
	Score      *int            `json:"score,omitempty"`
	Total      *int            `json:"total,omitempty"`
	Accuracy   *float64        `json:"accuracy,omitempty"`
	Review     json.RawMessage `json:"-"`
}

// JoinExamRequest is the payload for a student joining an exam.
type JoinExamRequest struct {
	EntryToken string `json:"entry_token" binding:"required,min=4,max=20"`
}

// ExamSessionState is returned to a student reloading the exam page.
type ExamSessionState struct {
	ExamID           uuid.UUID                  `json:"exam_id"`
	StudentID        int                        `json:"student_id"`
	AutosavedAnswers map[string]json.RawMessage `json:"autosaved_answers"`
	RemainingTime    float64                    `json:"remaining_time"`
}

// SessionReview is stored on the session when it is graded. Per-item verdicts
// are kept in paper order.
type SessionReview struct {
	Score    int            `json:"score"`
	Total    int            `json:"total"`
	Accuracy float64        `json:"accuracy"`
	Items    []quiz.Verdict `json:"items"`
	Invalid  []string       `json:"invalid,omitempty"`
}

// NewSessionReview converts an aggregation result into its stored form.
func NewSessionReview(res quiz.Result) SessionReview {
	return SessionReview{
		Score:    res.Score,
		Total:    res.Total,
		Accuracy: res.Accuracy,
		Items:    res.PerItem,
		Invalid:  res.Invalid,
	}
}

// ReviewItem is one question of a completed session as shown to the student:
// the original question, answer key included, alongside its verdict.
type ReviewItem struct {
	Question Question        `json:"question"`
	Answer   json.RawMessage `json:"answer,omitempty"`
	Verdict  *quiz.Verdict   `json:"verdict,omitempty"`
}

// SessionReviewResponse is the review endpoint payload.
type SessionReviewResponse struct {
	ExamID   uuid.UUID    `json:"exam_id"`
	Score    int          `json:"score"`
	Total    int          `json:"total"`
	Accuracy float64      `json:"accuracy"`
	Items    []ReviewItem `json:"items"`
}
