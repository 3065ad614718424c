package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/stemsi/nurseprep-backend/internal/config"
	"github.com/stemsi/nurseprep-backend/internal/database"
	"github.com/stemsi/nurseprep-backend/internal/logger"
	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/repository"
	"github.com/stemsi/nurseprep-backend/internal/service"
)

//go:embed seed.json
var defaultSeed []byte

type seedFile struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Questions   []model.QuestionRequest `json:"questions"`
}

func main() {
	var path string
	var dryRun bool
	flag.StringVar(&path, "file", "", "Path to a seed JSON file (defaults to the embedded starter set)")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate the seed without writing to the database")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	raw := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("file", path).Msg("Failed to read seed file")
		}
		raw = b
	}

	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse seed file")
	}

	// Validate before touching the database so a bad seed leaves nothing behind.
	if _, err := service.BuildQuestions(uuid.Nil, seed.Questions); err != nil {
		var qve *service.QuestionValidationError
		if errors.As(err, &qve) {
			log.Fatal().Interface("fields", qve.Fields()).Msg("Seed contains an invalid question")
		}
		log.Fatal().Err(err).Msg("Seed validation failed")
	}

	fmt.Printf("Seed %q: %d valid question(s)\n", seed.Name, len(seed.Questions))
	if dryRun {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)

	bank := &model.QuestionBank{Name: seed.Name, Description: seed.Description}
	if err := questionRepo.CreateBank(ctx, bank); err != nil {
		if errors.Is(err, repository.ErrDuplicateQBankName) {
			fmt.Printf("Question bank %q already exists, nothing to do\n", seed.Name)
			return
		}
		log.Fatal().Err(err).Msg("Failed to create question bank")
	}

	questions, _ := service.BuildQuestions(bank.ID, seed.Questions)
	if err := questionRepo.ReplaceAll(ctx, bank.ID, questions); err != nil {
		log.Fatal().Err(err).Msg("Failed to insert questions")
	}

	fmt.Printf("Created bank %s with %d question(s)\n", bank.ID, len(questions))
}
