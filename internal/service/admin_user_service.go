package service

import (
	"context"
	"errors"

	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/response"
)

var (
	ErrCannotModifySelf = errors.New("cannot delete or demote your own account")
	ErrLastSuperAdmin   = errors.New("at least one superadmin must remain")
)

// ListAdmins retrieves staff accounts with pagination, optionally filtered by role.
func (s *AdminService) ListAdmins(ctx context.Context, role model.Role, page, perPage int) ([]model.Admin, *response.Pagination, error) {
	page, perPage = clampPage(page, perPage)

	admins, total, err := s.adminRepo.ListPaginated(ctx, role, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if admins == nil {
		admins = []model.Admin{}
	}
	return admins, response.NewPagination(page, perPage, total), nil
}

// CreateAdmin creates a staff account from an API request.
func (s *AdminService) CreateAdmin(ctx context.Context, req *model.CreateAdminRequest) (*model.Admin, error) {
	admin := &model.Admin{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: req.Password,
		Role:         req.Role,
	}
	if err := s.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// UpdateAdmin modifies a staff account on behalf of actorID.
func (s *AdminService) UpdateAdmin(ctx context.Context, actorID, id int, req *model.UpdateAdminRequest) (*model.Admin, error) {
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if admin.Role == model.RoleSuperAdmin && req.Role != model.RoleSuperAdmin {
		if actorID == id {
			return nil, ErrCannotModifySelf
		}
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return nil, err
		}
	}

	admin.Email = req.Email
	admin.Name = req.Name
	admin.Role = req.Role
	admin.PasswordHash = ""
	if req.Password != "" {
		hashed, err := s.auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		admin.PasswordHash = hashed
	}

	if err := s.adminRepo.Update(ctx, admin); err != nil {
		return nil, err
	}
	admin.PasswordHash = ""
	return admin, nil
}

// DeleteAdmin removes a staff account on behalf of actorID.
func (s *AdminService) DeleteAdmin(ctx context.Context, actorID, id int) error {
	if actorID == id {
		return ErrCannotModifySelf
	}
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if admin.Role == model.RoleSuperAdmin {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return err
		}
	}
	return s.adminRepo.Delete(ctx, id)
}

// Roles lists the assignable roles and what each grants.
func (s *AdminService) Roles() []model.RoleInfo {
	return roleInfos()
}

func (s *AdminService) ensureAnotherSuperAdmin(ctx context.Context) error {
	n, err := s.adminRepo.CountByRole(ctx, model.RoleSuperAdmin)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastSuperAdmin
	}
	return nil
}

func roleInfos() []model.RoleInfo {
	out := make([]model.RoleInfo, len(model.Roles))
	for i, r := range model.Roles {
		out[i] = model.RoleInfo{Name: r, Permissions: r.Permissions()}
	}
	return out
}
