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
	"github.com/stemsi/nurseprep-backend/internal/repository"
	"github.com/stemsi/nurseprep-backend/internal/response"
	"github.com/stemsi/nurseprep-backend/internal/service"
	"github.com/stemsi/nurseprep-backend/internal/validator"
)

// QuestionHandler handles question bank authoring endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// failQuestionValidation writes a 422 with the offending field when err is a
// question validation failure. It reports whether a response was written.
func failQuestionValidation(c *gin.Context, err error) bool {
	var qve *service.QuestionValidationError
	if errors.As(err, &qve) {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrInvalidQuestionData, qve.Fields())
		return true
	}
	return false
}

// ListQBanks godoc
// GET /api/v1/admin/qbanks
func (h *QuestionHandler) ListQBanks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	banks, pagination, err := h.questionService.ListQBanks(c.Request.Context(), page, perPage, c.Query("search"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"qbanks": banks}, pagination)
}

// CreateQBank godoc
// POST /api/v1/admin/qbanks
func (h *QuestionHandler) CreateQBank(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateQuestionBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	bank, err := h.questionService.CreateQBank(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateQBankName) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"qbank": bank})
}

// GetQBank godoc
// GET /api/v1/admin/qbanks/:qbank_id
func (h *QuestionHandler) GetQBank(c *gin.Context) {
	qbankID, err := uuid.Parse(c.Param("qbank_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	bank, err := h.questionService.GetQBank(c.Request.Context(), qbankID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"qbank": bank})
}

// ListQuestions godoc
// GET /api/v1/admin/qbanks/:qbank_id/questions
// Lists every question of a bank with its answer key and rationale.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	qbankID, err := uuid.Parse(c.Param("qbank_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	questions, err := h.questionService.ListQuestions(c.Request.Context(), qbankID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// AddQuestion godoc
// POST /api/v1/admin/qbanks/:qbank_id/questions
func (h *QuestionHandler) AddQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	qbankID, err := uuid.Parse(c.Param("qbank_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	writeAll := claims.HasPermission(model.PermissionQBanksWriteAll)
	question, err := h.questionService.AddQuestion(c.Request.Context(), claims.UserID, writeAll, qbankID, &req)
	if err != nil {
		h.failWrite(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// ReplaceQuestions godoc
// PUT /api/v1/admin/qbanks/:qbank_id/questions
// Bulk replaces all questions of a bank. Nothing is stored if any question is
// malformed.
func (h *QuestionHandler) ReplaceQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	qbankID, err := uuid.Parse(c.Param("qbank_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReplaceQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	writeAll := claims.HasPermission(model.PermissionQBanksWriteAll)
	questions, err := h.questionService.ReplaceQuestions(c.Request.Context(), claims.UserID, writeAll, qbankID, &req)
	if err != nil {
		h.failWrite(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// ValidateQuestions godoc
// POST /api/v1/admin/qbanks/validate
// Dry-runs question validation without storing anything.
func (h *QuestionHandler) ValidateQuestions(c *gin.Context) {
	var req model.ReplaceQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.questionService.ValidateQuestions(&req); err != nil {
		if failQuestionValidation(c, err) {
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"valid": true, "count": len(req.Questions)})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/questions/:question_id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	writeAll := claims.HasPermission(model.PermissionQBanksWriteAll)
	if err := h.questionService.DeleteQuestion(c.Request.Context(), claims.UserID, writeAll, questionID); err != nil {
		h.failWrite(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "question deleted successfully"})
}

func (h *QuestionHandler) failWrite(c *gin.Context, err error) {
	if failQuestionValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotQBankAuthor):
		response.Fail(c, http.StatusForbidden, response.ErrPermissionDenied)
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Question write failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
