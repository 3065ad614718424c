package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/nurseprep-backend/internal/config"
	"github.com/stemsi/nurseprep-backend/internal/database"
	"github.com/stemsi/nurseprep-backend/internal/logger"
	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/repository"
)

func main() {
	var email, role string
	flag.StringVar(&email, "email", "", "Email of the admin to change")
	flag.StringVar(&role, "role", string(model.RoleSuperAdmin), "Role to assign")
	flag.Parse()

	if email == "" {
		fmt.Println("Usage: promote-admin -email <email> [-role superadmin|instructor|proctor]")
		return
	}
	newRole := model.Role(role)
	if !newRole.Valid() {
		fmt.Printf("Error: unknown role %q\n", role)
		return
	}

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

	adminRepo := repository.NewAdminRepository(pool)

	fmt.Println("=== Change Admin Role ===")
	fmt.Println("Recovers access when no superadmin can sign in. Bypasses the API guards.")

	admin, err := adminRepo.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		fmt.Printf("Error: no admin with email %s\n", email)
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to look up admin")
	}

	if admin.Role == newRole {
		fmt.Printf("%s already has role %s, nothing to do\n", admin.Email, newRole)
		return
	}

	previous := admin.Role
	admin.Role = newRole
	admin.PasswordHash = "" // keep the stored hash
	if err := adminRepo.Update(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("Failed to update admin role")
	}

	fmt.Printf("\nSuccess! %s changed from %s to %s (%d permissions).\n",
		admin.Email, previous, newRole, len(newRole.Permissions()))
	fmt.Println("The admin must log in again for the new permissions to apply.")
}
