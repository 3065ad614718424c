package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/nurseprep-backend/internal/metrics"
	"github.com/stemsi/nurseprep-backend/internal/middleware"
	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/quiz"
	"github.com/stemsi/nurseprep-backend/internal/response"
	"github.com/stemsi/nurseprep-backend/internal/service"
	ws "github.com/stemsi/nurseprep-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler handles WebSocket exam streaming.
type WSHandler struct {
	sessionService *service.ExamSessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.ExamSessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// streamConn carries per-connection state through the action handlers.
type streamConn struct {
	conn      *websocket.Conn
	log       zerolog.Logger
	examID    uuid.UUID
	studentID int
	submitted bool
}

// ExamWebSocketStream godoc
// WS /ws/v1/student/exams/:exam_id/stream
// Upgrades to WebSocket for autosave, per-question checking and submission.
func (h *WSHandler) ExamWebSocketStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	sc := &streamConn{
		conn:      conn,
		examID:    examID,
		studentID: claims.UserID,
		log: h.log.With().
			Int("student_id", claims.UserID).
			Str("exam_id", examID.String()).
			Logger(),
	}

	// The student must hold an open session before anything is streamed.
	if err := h.sessionService.VerifyActiveSession(c.Request.Context(), examID, sc.studentID); err != nil {
		h.writeServiceError(sc, err)
		return
	}

	metrics.ExamStreams.Inc()
	defer metrics.ExamStreams.Dec()
	sc.log.Info().Msg("Student connected")

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sc.log.Warn().Err(err).Msg("Unexpected close")
			} else {
				sc.log.Debug().Msg("Connection closed")
			}
			return
		}

		ctx := context.Background()
		switch msg.Action {
		case ws.ActionAutosave:
			h.handleAutosave(ctx, sc, &msg)
		case ws.ActionCheck:
			h.handleCheck(ctx, sc, &msg)
		case ws.ActionSubmit:
			h.handleSubmit(ctx, sc)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			sc.log.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, response.ErrInvalidPayload, "unknown action: "+string(msg.Action))
		}
	}
}

// handleAutosave validates and buffers a single answer.
func (h *WSHandler) handleAutosave(ctx context.Context, sc *streamConn, msg *ws.RequestPayload) {
	if sc.submitted {
		h.writeServiceError(sc, service.ErrSessionCompleted)
		return
	}
	if msg.QID == "" || len(msg.Answer) == 0 {
		ws.WriteError(sc.conn, response.ErrInvalidPayload, "q_id and ans are required")
		return
	}

	if err := h.sessionService.SaveAnswer(ctx, sc.examID, sc.studentID, msg.QID, msg.Answer); err != nil {
		h.writeServiceError(sc, err)
		return
	}

	ws.WriteTyped(sc.conn, ws.AutosaveResponse{Event: ws.EventSuccess, Status: "saved", QID: msg.QID})
}

// handleCheck grades one question against the stored answer. An answer sent
// with the check is saved first.
func (h *WSHandler) handleCheck(ctx context.Context, sc *streamConn, msg *ws.RequestPayload) {
	if msg.QID == "" {
		ws.WriteError(sc.conn, response.ErrInvalidPayload, "q_id is required")
		return
	}
	if len(msg.Answer) > 0 && !sc.submitted {
		if err := h.sessionService.SaveAnswer(ctx, sc.examID, sc.studentID, msg.QID, msg.Answer); err != nil {
			h.writeServiceError(sc, err)
			return
		}
	}

	v, err := h.sessionService.CheckAnswer(ctx, sc.examID, sc.studentID, msg.QID)
	if err != nil {
		h.writeServiceError(sc, err)
		return
	}
	ws.WriteTyped(sc.conn, ws.CheckedResponse{Event: ws.EventChecked, QID: msg.QID, Verdict: *v})
}

// handleSubmit grades the whole session and closes it for further answers.
func (h *WSHandler) handleSubmit(ctx context.Context, sc *streamConn) {
	res, err := h.sessionService.Submit(ctx, sc.examID, sc.studentID)
	if err != nil {
		h.writeServiceError(sc, err)
		return
	}
	sc.submitted = true

	ws.WriteTyped(sc.conn, ws.GradedResponse{
		Event:    ws.EventGraded,
		Status:   "completed",
		Score:    res.Score,
		Total:    res.Total,
		Accuracy: res.Accuracy,
		Percent:  res.Percent,
	})
}

// writeServiceError maps service errors to a client-safe error event.
func (h *WSHandler) writeServiceError(sc *streamConn, err error) {
	code, msg := wsErrorMessage(err)
	if code == response.ErrInternal {
		sc.log.Error().Err(err).Msg("Stream action failed")
	}
	ws.WriteError(sc.conn, code, msg)
}

func wsErrorMessage(err error) (response.ErrCode, string) {
	switch {
	case errors.Is(err, service.ErrNoExamSession):
		return response.ErrNotFound, "no active session for this exam"
	case errors.Is(err, service.ErrSessionCompleted):
		return response.ErrSessionCompleted, ""
	case errors.Is(err, service.ErrQuestionNotInExam):
		return response.ErrQuestionNotInExam, ""
	case errors.Is(err, service.ErrAnswerCheckDisabled):
		return response.ErrAnswerCheckDisabled, ""
	case errors.Is(err, service.ErrExamNotCached):
		return response.ErrExamNotAvailable, ""
	case errors.Is(err, model.ErrMalformedAnswer), errors.Is(err, quiz.ErrAnswerTypeMismatch):
		return response.ErrAnswerTypeMismatch, err.Error()
	case errors.Is(err, quiz.ErrInvalidQuestionData):
		return response.ErrInvalidQuestionData, ""
	default:
		return response.ErrInternal, ""
	}
}
