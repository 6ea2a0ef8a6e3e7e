package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/pageza/mealtrack/backend/config"
	"github.com/pageza/mealtrack/backend/internal/database"
	"github.com/pageza/mealtrack/backend/internal/logging"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	seed := flag.Bool("seed", false, "Seed the food catalog after migrating")
	dir := flag.String("dir", "migrations", "Directory holding the SQL migrations")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logging.New(cfg)

	db, err := database.Open(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	if *rollback {
		if err := database.Rollback(db, *dir, log); err != nil {
			log.WithError(err).Fatal("rollback failed")
		}
		return
	}

	if err := database.RunMigrations(db, *dir, log); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	log.Info("all migrations applied")

	if *seed {
		n, err := database.SeedFoods(context.Background(), db, log)
		if err != nil {
			log.WithError(err).Fatal("seeding failed")
		}
		log.WithField("inserted", n).Info("food catalog seeded")
	}
}
