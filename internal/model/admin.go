package model

import "time"

// Admin is an instructor or platform administrator.
type Admin struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AdminLoginRequest is the payload for admin authentication.
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// AdminLoginResponse is returned after successful admin login.
type AdminLoginResponse struct {
	Token       string   `json:"token"`
	Admin       Admin    `json:"admin"`
	Permissions []string `json:"permissions"`
}

// CreateAdminRequest is the payload for creating a staff account.
type CreateAdminRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Role     Role   `json:"role" binding:"required,oneof=superadmin instructor proctor"`
}

// UpdateAdminRequest is the payload for updating a staff account. The
// password changes only when provided.
type UpdateAdminRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"omitempty,min=6,max=128"`
	Role     Role   `json:"role" binding:"required,oneof=superadmin instructor proctor"`
}

// RoleInfo describes a role and the permissions it grants.
type RoleInfo struct {
	Name        Role     `json:"name"`
	Permissions []string `json:"permissions"`
}
