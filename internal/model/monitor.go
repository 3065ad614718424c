package model

import "time"

// MonitorEventType names a live session event pushed to proctors.
type MonitorEventType string

const (
	MonitorEventJoined    MonitorEventType = "joined"
	MonitorEventSubmitted MonitorEventType = "submitted"
	MonitorEventScored    MonitorEventType = "scored"
)

// MonitorEvent is published on the exam's monitor channel and forwarded
// verbatim to every attached proctor.
type MonitorEvent struct {
	Type      MonitorEventType `json:"type"`
	StudentID int              `json:"student_id"`
	Score     *int             `json:"score,omitempty"`
	Total     *int             `json:"total,omitempty"`
	At        time.Time        `json:"at"`
}

// StudentProgress is one row of the live monitor.
type StudentProgress struct {
	StudentID     int           `json:"student_id"`
	Username      string        `json:"username"`
	Name          string        `json:"name"`
	Cohort        string        `json:"cohort"`
	Status        SessionStatus `json:"status"`
	AnsweredCount int64         `json:"answered_count"`
	Score         *int          `json:"score,omitempty"`
	Total         *int          `json:"total,omitempty"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
}

// MonitorSnapshot is the first event a proctor receives after attaching.
type MonitorSnapshot struct {
	ExamID          string            `json:"exam_id"`
	Title           string            `json:"title"`
	Duration        int               `json:"duration"`
	TotalQuestions  int               `json:"total_questions"`
	TotalJoined     int               `json:"total_joined"`
	TotalInProgress int               `json:"total_in_progress"`
	TotalCompleted  int               `json:"total_completed"`
	Students        []StudentProgress `json:"students"`
}
