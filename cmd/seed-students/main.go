package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/stemsi/nurseprep-backend/internal/config"
	"github.com/stemsi/nurseprep-backend/internal/database"
	"github.com/stemsi/nurseprep-backend/internal/logger"
	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/repository"
	"github.com/stemsi/nurseprep-backend/internal/service"
)

var names = []string{
	"Budi Santoso", "Siti Aminah", "Andi Pratama", "Rina Wati", "Joko Susilo",
	"Ayu Lestari", "Dodi Kusuma", "Eka Putri", "Fahri Hamzah", "Gita Savitri",
	"Hendra Gunawan", "Ika Sari", "Jamal Mirdad", "Kiki Fatmala", "Lukman Hakim",
	"Maya Septiana", "Nanda Pratama", "Oki Setiana", "Putri Dian", "Qori Maharani",
	"Rafi Ahmad", "Siska Saraswati", "Toni Setiawan", "Umi Kalsum", "Vina Panduwinata",
	"Wahyu Hidayat", "Xena Maharani", "Yudi Pratama", "Zaki Anwar", "Alifia Zahra",
}

func main() {
	var cohort, prefix, password string
	var count int
	flag.StringVar(&cohort, "cohort", "BSN-2026A", "Cohort assigned to every seeded student")
	flag.StringVar(&prefix, "prefix", "nurse", "Username prefix, followed by a sequence number")
	flag.StringVar(&password, "password", "nurseprep", "Password for every seeded student")
	flag.IntVar(&count, "count", len(names), "Number of students to create")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	studentService := service.NewStudentService(
		repository.NewStudentRepository(pool),
		service.NewAuthService(cfg, nil),
	)

	fmt.Printf("=== Seeding %d students into cohort %s ===\n", count, cohort)

	created, skipped := 0, 0
	for i := 0; i < count; i++ {
		req := &model.CreateStudentRequest{
			Username: fmt.Sprintf("%s%03d", prefix, i+1),
			Name:     names[i%len(names)],
			Cohort:   cohort,
			Password: password,
		}

		if _, err := studentService.Create(ctx, req); err != nil {
			if errors.Is(err, repository.ErrDuplicateUsername) {
				skipped++
				continue
			}
			fmt.Printf("Error creating student %s: %v\n", req.Username, err)
			continue
		}
		created++
		if created%10 == 0 {
			fmt.Printf("Created %d students...\n", created)
		}
	}

	fmt.Printf("\nSeed completed! Created %d, skipped %d existing, of %d.\n", created, skipped, count)
}
