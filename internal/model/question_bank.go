package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionBank is a named collection of questions, usually one NCLEX content
// area or one practice set.
type QuestionBank struct {
	ID            uuid.UUID `json:"id"`
	AuthorID      *int      `json:"author_id,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateQuestionBankRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=255"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}
