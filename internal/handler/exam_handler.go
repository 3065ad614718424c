package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/nurseprep-backend/internal/middleware"
	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/response"
	"github.com/stemsi/nurseprep-backend/internal/service"
	"github.com/stemsi/nurseprep-backend/internal/validator"
)

// ExamHandler handles exam management endpoints.
type ExamHandler struct {
	examService    *service.ExamService
	sessionService *service.ExamSessionService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService, sessionService *service.ExamSessionService) *ExamHandler {
	return &ExamHandler{
		examService:    examService,
		sessionService: sessionService,
	}
}

// authorScope returns the author filter for exam writes: 0 (any exam) for
// superadmins, otherwise the caller's own ID.
func authorScope(claims *service.Claims) int {
	if claims.Role == model.RoleSuperAdmin {
		return 0
	}
	return claims.UserID
}

// ListExams godoc
// GET /api/v1/admin/exams
// Lists exams with pagination. Instructors see their own; superadmins and
// read-only staff see all.
func (h *ExamHandler) ListExams(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	authorFilter := authorScope(claims)
	if !claims.HasPermission(model.PermissionExamsWriteOwn) {
		authorFilter = 0
	}

	exams, pagination, err := h.examService.ListByAuthor(c.Request.Context(), authorFilter, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"exams": exams}, pagination)
}

// GetExam godoc
// GET /api/v1/admin/exams/:exam_id
func (h *ExamHandler) GetExam(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		h.failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// CreateExam godoc
// POST /api/v1/admin/exams
// Creates a new draft exam over a question bank.
func (h *ExamHandler) CreateExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		h.failExam(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// UpdateExam godoc
// PATCH /api/v1/admin/exams/:exam_id
func (h *ExamHandler) UpdateExam(c *gin.Context) {
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

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), authorScope(claims), examID, &req)
	if err != nil {
		h.failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// PublishExam godoc
// POST /api/v1/admin/exams/:exam_id/publish
// Validates every question, caches paper + answer key to Redis and changes status.
func (h *ExamHandler) PublishExam(c *gin.Context) {
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

	if err := h.examService.Publish(c.Request.Context(), examID, authorScope(claims)); err != nil {
		h.failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "exam published successfully"})
}

// RefreshExamCache godoc
// POST /api/v1/admin/exams/:exam_id/refresh-cache
// Re-caches the exam paper + answer key to Redis after question changes.
func (h *ExamHandler) RefreshExamCache(c *gin.Context) {
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

	if err := h.examService.RefreshCache(c.Request.Context(), examID, authorScope(claims)); err != nil {
		h.failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "exam cache refreshed successfully"})
}

// GetExamResults godoc
// GET /api/v1/admin/exams/:exam_id/results
// Returns paginated student results, optionally filtered by cohort and status.
func (h *ExamHandler) GetExamResults(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	status := model.SessionStatus(c.Query("status"))
	if status != "" && status != model.SessionStatusInProgress && status != model.SessionStatusCompleted {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"status": "must be IN_PROGRESS or COMPLETED",
		})
		return
	}

	results, pagination, err := h.sessionService.GetExamResults(c.Request.Context(), examID, page, perPage, c.Query("cohort"), status)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, pagination)
}

// GetStudentReview godoc
// GET /api/v1/admin/exams/:exam_id/results/:student_id
// Returns one student's graded paper with answers and rationales.
func (h *ExamHandler) GetStudentReview(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	studentID, err := strconv.Atoi(c.Param("student_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	review, err := h.sessionService.GetReview(c.Request.Context(), examID, studentID)
	if err != nil {
		failReview(c, err)
		return
	}

	response.Success(c, http.StatusOK, review)
}

func (h *ExamHandler) failExam(c *gin.Context, err error) {
	if failQuestionValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotExamAuthor):
		response.Fail(c, http.StatusForbidden, response.ErrNotExamAuthor)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
	case errors.Is(err, service.ErrExamNotDraft):
		response.Fail(c, http.StatusConflict, response.ErrExamNotDraft)
	case errors.Is(err, service.ErrExamNotPublished):
		response.Fail(c, http.StatusConflict, response.ErrExamNotPublished)
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Exam operation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// failReview maps review lookups shared by the admin and student endpoints.
func failReview(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoExamSession), errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrSessionNotCompleted):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotCompleted)
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Review lookup failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
