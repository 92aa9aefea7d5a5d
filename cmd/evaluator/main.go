package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/technofest-ar/platform-api/internal/database"
	"github.com/technofest-ar/platform-api/internal/logger"
	"github.com/technofest-ar/platform-api/internal/services"
	"github.com/technofest-ar/platform-api/pkg/config"
)

// One-shot command that scores every submission still lacking an automated
// evaluation, then exits. Meant for cron or manual runs; the same operation
// is also exposed on the API for superadmins.
func main() {
	log := logger.NewSimpleLogger()

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found")
	}

	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	svcs := services.NewServices(db.DB, cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	result, err := svcs.Evaluation.RunAutomatedBulk(ctx)
	if err != nil {
		log.Fatal("Automated evaluation run failed", err)
	}

	log.Info(fmt.Sprintf("Evaluated %d submissions (%d scored, %d failed) in %v",
		result.Total, result.Scored, result.Failed, time.Since(start).Round(time.Millisecond)))
}
