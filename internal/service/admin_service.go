package service

import (
	"context"

	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/repository"
)

// AdminService handles admin business logic.
type AdminService struct {
	adminRepo *repository.AdminRepository
	auth      *AuthService
}

// NewAdminService creates a new AdminService.
func NewAdminService(adminRepo *repository.AdminRepository, auth *AuthService) *AdminService {
	return &AdminService{adminRepo: adminRepo, auth: auth}
}

// Login checks the credentials and issues a token carrying the role's permissions.
func (s *AdminService) Login(ctx context.Context, req *model.AdminLoginRequest) (*model.AdminLoginResponse, error) {
	admin, err := s.adminRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.auth.CheckPassword(admin.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	token, err := s.auth.GenerateAdminToken(admin.ID, admin.Role)
	if err != nil {
		return nil, err
	}
	return &model.AdminLoginResponse{
		Token:       token,
		Admin:       *admin,
		Permissions: admin.Role.Permissions(),
	}, nil
}

// GetByID retrieves an admin by ID.
func (s *AdminService) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return s.adminRepo.GetByID(ctx, id)
}

// Create creates a new admin, hashing the plaintext password held in PasswordHash.
func (s *AdminService) Create(ctx context.Context, admin *model.Admin) error {
	hashed, err := s.auth.HashPassword(admin.PasswordHash)
	if err != nil {
		return err
	}
	admin.PasswordHash = hashed
	return s.adminRepo.Create(ctx, admin)
}
