package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the possible states of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusPublished ExamStatus = "PUBLISHED"
	ExamStatusArchived  ExamStatus = "ARCHIVED"
)

// Exam is a timed sitting of one question bank.
type Exam struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	AuthorID         int        `json:"author_id"`
	QBankID          uuid.UUID  `json:"qbank_id"`
	DurationMinutes  int        `json:"duration_minutes"`
	EntryToken       string     `json:"entry_token,omitempty"`
	AllowAnswerCheck bool       `json:"allow_answer_check"`
	Status           ExamStatus `json:"status"`
	QuestionCount    int        `json:"question_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title            string    `json:"title" binding:"required,min=3,max=255"`
	QBankID          uuid.UUID `json:"qbank_id" binding:"required"`
	DurationMinutes  int       `json:"duration_minutes" binding:"required,min=1,max=480"`
	EntryToken       string    `json:"entry_token" binding:"required,min=4,max=20"`
	AllowAnswerCheck bool      `json:"allow_answer_check"`
}

// UpdateExamRequest is the payload for editing a draft exam. Zero values leave
// the field unchanged.
type UpdateExamRequest struct {
	Title            string     `json:"title" binding:"omitempty,min=3,max=255"`
	QBankID          *uuid.UUID `json:"qbank_id" binding:"omitempty"`
	DurationMinutes  int        `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	EntryToken       string     `json:"entry_token" binding:"omitempty,min=4,max=20"`
	AllowAnswerCheck *bool      `json:"allow_answer_check"`
}

// Apply copies the set fields of r onto e.
func (r *UpdateExamRequest) Apply(e *Exam) {
	if r.Title != "" {
		e.Title = r.Title
	}
	if r.QBankID != nil {
		e.QBankID = *r.QBankID
	}
	if r.DurationMinutes > 0 {
		e.DurationMinutes = r.DurationMinutes
	}
	if r.EntryToken != "" {
		e.EntryToken = r.EntryToken
	}
	if r.AllowAnswerCheck != nil {
		e.AllowAnswerCheck = *r.AllowAnswerCheck
	}
}

// ExamPaper is the Redis-cached payload sent to students (no correct answers).
type ExamPaper struct {
	ExamID           uuid.UUID            `json:"exam_id"`
	Title            string               `json:"title"`
	Duration         int                  `json:"duration_minutes"`
	AllowAnswerCheck bool                 `json:"allow_answer_check"`
	Questions        []QuestionForStudent `json:"questions"`
}

// ExamSettings are the runtime flags the exam stream consults on every
// message, cached next to the paper.
type ExamSettings struct {
	AllowAnswerCheck bool `json:"allow_answer_check"`
	DurationMinutes  int  `json:"duration_minutes"`
}
