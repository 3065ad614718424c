package websocket

import (
	"encoding/json"

	"github.com/stemsi/nurseprep-backend/internal/quiz"
	"github.com/stemsi/nurseprep-backend/internal/response"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAutosave Action = "autosave"
	ActionCheck    Action = "check"
	ActionSubmit   Action = "submit"
	ActionPing     Action = "ping"
)

// RequestPayload is every message the client sends. Fields not used by the
// action are ignored.
type RequestPayload struct {
	Action Action          `json:"action"`
	QID    string          `json:"q_id,omitempty"`
	Answer json.RawMessage `json:"ans,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventSuccess Event = "success"
	EventChecked Event = "checked"
	EventGraded  Event = "graded"
	EventPong    Event = "pong"
)

type AutosaveResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
	QID    string `json:"q_id"`
}

type CheckedResponse struct {
	Event   Event        `json:"event"`
	QID     string       `json:"q_id"`
	Verdict quiz.Verdict `json:"verdict"`
}

type GradedResponse struct {
	Event    Event   `json:"event"`
	Status   string  `json:"status"`
	Score    int     `json:"score"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
	Percent  float64 `json:"percent"`
}

type ErrorResponse struct {
	Event Event            `json:"event"`
	Code  response.ErrCode `json:"code,omitempty"`
	Error string           `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
