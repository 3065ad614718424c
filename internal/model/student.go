package model

import "time"

// Student is a nursing student sitting exams.
type Student struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Cohort       string    `json:"cohort,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StudentLoginRequest is the payload for student authentication.
type StudentLoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// StudentLoginResponse is returned after successful student login.
type StudentLoginResponse struct {
	Token   string  `json:"token"`
	Student Student `json:"student"`
}

// CreateStudentRequest is the payload for creating a new student account.
type CreateStudentRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,alphanum"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Cohort   string `json:"cohort" binding:"omitempty,max=50"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// UpdateStudentRequest is the payload for updating an existing student.
type UpdateStudentRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Cohort   string `json:"cohort" binding:"omitempty,max=50"`
	Password string `json:"password" binding:"omitempty,min=6,max=128"`
}
