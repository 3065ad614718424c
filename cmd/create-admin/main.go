package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/stemsi/nurseprep-backend/internal/config"
	"github.com/stemsi/nurseprep-backend/internal/database"
	"github.com/stemsi/nurseprep-backend/internal/logger"
	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/repository"
	"github.com/stemsi/nurseprep-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	// Password hashing needs no Redis.
	authService := service.NewAuthService(cfg, nil)
	adminService := service.NewAdminService(repository.NewAdminRepository(pool), authService)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	name := prompt(reader, "Enter Name: ")
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	email := prompt(reader, "Enter Email: ")
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		return
	}
	password := string(bytePassword)
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	role := model.Role(prompt(reader, "Enter Role [superadmin|instructor|proctor] (default instructor): "))
	if role == "" {
		role = model.RoleInstructor
	}
	if !role.Valid() {
		fmt.Printf("Error: unknown role %q\n", role)
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	newAdmin := &model.Admin{
		Email:        email,
		Name:         name,
		PasswordHash: password, // hashed by AdminService.Create
		Role:         role,
	}

	if err := adminService.Create(ctx, newAdmin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			fmt.Printf("Error: an admin with email %s already exists\n", email)
			return
		}
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! %s '%s' (%s) created with ID: %d\n", newAdmin.Role, newAdmin.Name, newAdmin.Email, newAdmin.ID)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
