package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/nurseprep-backend/internal/middleware"
	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/response"
	"github.com/stemsi/nurseprep-backend/internal/service"
	"github.com/stemsi/nurseprep-backend/internal/validator"
)

// StudentPortalHandler handles student-facing endpoints (lobby, exam taking, review).
type StudentPortalHandler struct {
	sessionService *service.ExamSessionService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(sessionService *service.ExamSessionService) *StudentPortalHandler {
	return &StudentPortalHandler{sessionService: sessionService}
}

// GetLobby godoc
// GET /api/v1/student/lobby
// Returns published exams with the student's own session status.
func (h *StudentPortalHandler) GetLobby(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	lobby, err := h.sessionService.GetLobby(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if lobby == nil {
		lobby = []service.LobbyExam{}
	}

	response.Success(c, http.StatusOK, gin.H{"exams": lobby})
}

// JoinExam godoc
// POST /api/v1/student/exams/:exam_id/join
// Validates entry token and creates a session (idempotent).
func (h *StudentPortalHandler) JoinExam(c *gin.Context) {
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

	var req model.JoinExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.JoinExam(c.Request.Context(), examID, claims.UserID, req.EntryToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEntryToken):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidEntryToken)
		case errors.Is(err, service.ErrExamNotAvailable):
			response.Fail(c, http.StatusBadRequest, response.ErrExamNotAvailable)
		default:
			failSession(c, err)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// GetExamPaper godoc
// GET /api/v1/student/exams/:exam_id/paper
// Returns the cached student paper. Answers and rationales are never part of it.
// Requires an open session for this exam.
func (h *StudentPortalHandler) GetExamPaper(c *gin.Context) {
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

	paper, err := h.sessionService.GetPaper(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, paper)
}

// GetExamState godoc
// GET /api/v1/student/exams/:exam_id/state
// Returns autosaved answers and the remaining time so a reloaded page can resume.
func (h *StudentPortalHandler) GetExamState(c *gin.Context) {
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

	if err := h.sessionService.VerifyActiveSession(c.Request.Context(), examID, claims.UserID); err != nil {
		failSession(c, err)
		return
	}

	state, err := h.sessionService.GetExamState(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// GetReview godoc
// GET /api/v1/student/exams/:exam_id/review
// Returns the graded paper of a submitted session.
func (h *StudentPortalHandler) GetReview(c *gin.Context) {
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

	review, err := h.sessionService.GetReview(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failReview(c, err)
		return
	}

	response.Success(c, http.StatusOK, review)
}

func failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoExamSession):
		response.Fail(c, http.StatusForbidden, response.ErrActionForbidden)
	case errors.Is(err, service.ErrSessionCompleted):
		response.Fail(c, http.StatusConflict, response.ErrSessionCompleted)
	case errors.Is(err, service.ErrExamNotCached):
		response.Fail(c, http.StatusNotFound, response.ErrExamNotPublished)
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Exam session request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
