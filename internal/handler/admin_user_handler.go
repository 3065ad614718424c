package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stemsi/nurseprep-backend/internal/middleware"
	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/repository"
	"github.com/stemsi/nurseprep-backend/internal/response"
	"github.com/stemsi/nurseprep-backend/internal/service"
	"github.com/stemsi/nurseprep-backend/internal/validator"
)

// AdminUserHandler manages staff accounts (superadmins, instructors, proctors).
type AdminUserHandler struct {
	adminService *service.AdminService
}

// NewAdminUserHandler creates a new AdminUserHandler.
func NewAdminUserHandler(adminService *service.AdminService) *AdminUserHandler {
	return &AdminUserHandler{adminService: adminService}
}

// ListAdmins godoc
// GET /api/v1/admin/admins
func (h *AdminUserHandler) ListAdmins(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	role := model.Role(c.Query("role"))
	if role != "" && !role.Valid() {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"role": "unknown role"})
		return
	}

	admins, pagination, err := h.adminService.ListAdmins(c.Request.Context(), role, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"admins": admins}, pagination)
}

// CreateAdmin godoc
// POST /api/v1/admin/admins
func (h *AdminUserHandler) CreateAdmin(c *gin.Context) {
	var req model.CreateAdminRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.adminService.CreateAdmin(c.Request.Context(), &req)
	if err != nil {
		failAdminUser(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"admin": admin})
}

// UpdateAdmin godoc
// PUT /api/v1/admin/admins/:id
func (h *AdminUserHandler) UpdateAdmin(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateAdminRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	admin, err := h.adminService.UpdateAdmin(c.Request.Context(), claims.UserID, id, &req)
	if err != nil {
		failAdminUser(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"admin": admin})
}

// DeleteAdmin godoc
// DELETE /api/v1/admin/admins/:id
func (h *AdminUserHandler) DeleteAdmin(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	claims := middleware.GetClaims(c)
	if err := h.adminService.DeleteAdmin(c.Request.Context(), claims.UserID, id); err != nil {
		failAdminUser(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "admin deleted successfully"})
}

// GetRoles godoc
// GET /api/v1/admin/roles
func (h *AdminUserHandler) GetRoles(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"roles": h.adminService.Roles()})
}

func failAdminUser(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, repository.ErrDuplicateEmail), errors.Is(err, repository.ErrAdminHasExams):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrCannotModifySelf), errors.Is(err, service.ErrLastSuperAdmin):
		response.Fail(c, http.StatusForbidden, response.ErrActionForbidden)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
