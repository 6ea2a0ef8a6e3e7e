package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/pageza/mealtrack/backend/config"
	"github.com/pageza/mealtrack/backend/internal/database"
	"github.com/pageza/mealtrack/backend/internal/logging"
	"github.com/pageza/mealtrack/backend/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logging.New(cfg)

	db, err := database.Open(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	// Local sqlite runs have no migrate step.
	if cfg.DBDriver == "sqlite" {
		if err := database.RunMigrations(db, "migrations", log); err != nil {
			log.WithError(err).Fatal("failed to migrate database")
		}
		if _, err := database.SeedFoods(context.Background(), db, log); err != nil {
			log.WithError(err).Fatal("failed to seed food catalog")
		}
	}

	redisClient, err := database.NewRedisClient(cfg, log)
	if err != nil {
		log.WithError(err).Warn("continuing without redis")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(ctx, cfg, db, redisClient, log)
	if err := srv.Start(ctx); err != nil {
		log.WithError(err).Fatal("server error")
	}
	log.Info("server stopped")
}
