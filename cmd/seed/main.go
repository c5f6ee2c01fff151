// Command seed replaces the demo data with a fresh fixture set.  Superuser
// accounts are left alone.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/rental-listing-service/internal/config"
	"github.com/iliyamo/rental-listing-service/internal/database"
	"github.com/iliyamo/rental-listing-service/internal/logger"
	"github.com/iliyamo/rental-listing-service/internal/repository"
	"github.com/iliyamo/rental-listing-service/internal/seed"
)

func main() {
	today := flag.String("today", "", "anchor date for bookings (YYYY-MM-DD), defaults to the current date")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.ServiceName+"-seed", cfg.Env)

	var anchor time.Time
	if *today != "" {
		t, err := time.Parse("2006-01-02", *today)
		if err != nil {
			log.Fatal().Err(err).Str("today", *today).Msg("invalid -today")
		}
		anchor = t
	}

	sum, err := run(cfg, anchor)
	if err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().
		Int("accounts", sum.Accounts).
		Int("listings", sum.Listings).
		Int("bookings", sum.Bookings).
		Int("reviews", sum.Reviews).
		Msg("database seeded successfully")
}

// run owns the connection so it is closed before main exits, on failure too.
func run(cfg config.Config, anchor time.Time) (seed.Summary, error) {
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return seed.Summary{}, fmt.Errorf("database connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return seed.Summary{}, fmt.Errorf("schema migration: %w", err)
		}
	}

	return seed.Run(ctx, seed.FromRepository(repository.NewStore(db)), seed.Options{
		Today:      anchor,
		BcryptCost: cfg.BcryptCost,
	})
}
