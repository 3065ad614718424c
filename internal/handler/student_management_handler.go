package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/repository"
	"github.com/stemsi/nurseprep-backend/internal/response"
	"github.com/stemsi/nurseprep-backend/internal/service"
	"github.com/stemsi/nurseprep-backend/internal/validator"
)

// StudentManagementHandler handles admin-facing student management (CRUD, session reset).
type StudentManagementHandler struct {
	studentService *service.StudentService
}

// NewStudentManagementHandler creates a new StudentManagementHandler.
func NewStudentManagementHandler(studentService *service.StudentService) *StudentManagementHandler {
	return &StudentManagementHandler{studentService: studentService}
}

// ListStudents godoc
// GET /api/v1/admin/students
// Lists students with pagination, optionally filtered by cohort and a
// username/name search.
func (h *StudentManagementHandler) ListStudents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	students, pagination, err := h.studentService.ListStudents(c.Request.Context(), c.Query("cohort"), c.Query("search"), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"students": students}, pagination)
}

// CreateStudent godoc
// POST /api/v1/admin/students
func (h *StudentManagementHandler) CreateStudent(c *gin.Context) {
	var req model.CreateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": student})
}

// UpdateStudent godoc
// PUT /api/v1/admin/students/:id
func (h *StudentManagementHandler) UpdateStudent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failStudent(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// DeleteStudent godoc
// DELETE /api/v1/admin/students/:id
func (h *StudentManagementHandler) DeleteStudent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.studentService.Delete(c.Request.Context(), id); err != nil {
		failStudent(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "student deleted successfully"})
}

// ResetStudentSession godoc
// POST /api/v1/admin/students/:id/reset-session
// Logs the student out everywhere so they can sign in on another device.
func (h *StudentManagementHandler) ResetStudentSession(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.studentService.ResetSession(c.Request.Context(), id); err != nil {
		failStudent(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "student session reset successfully"})
}

func failStudent(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, repository.ErrDuplicateUsername):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
