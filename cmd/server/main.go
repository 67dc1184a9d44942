package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"backoffice/internal/config"
	"backoffice/internal/logger"
	"backoffice/internal/ratelimit"
	"backoffice/internal/store"
	"backoffice/internal/store/memory"
	pgstore "backoffice/internal/store/postgres"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning: could not load .env file: %v", err)
	}

	cfg := config.Load()
	if err := logger.Setup(cfg.LoggerConfig()); err != nil {
		log.Printf("warning: invalid logger configuration (%v), using defaults", err)
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("failed to initialize logger: %v", err)
		}
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		l := logger.WithComponent("cmd")
		l.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func validateSecurityConfig(cfg config.Config) error {
	if cfg.AuthSecret != "" && len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be at least 32 characters when set")
	}
	if _, err := ratelimit.ParseRate(cfg.RateLimit); err != nil {
		return fmt.Errorf("RATE_LIMIT: %w", err)
	}
	return nil
}

// openRepository returns postgres when DATABASE_URL is set and the in-memory
// store otherwise. The returned close func is never nil.
func openRepository(ctx context.Context, cfg config.Config, migrate bool) (store.Repository, func() error, error) {
	log := logger.WithComponent("repository")
	if cfg.DatabaseURL == "" {
		log.Info().Msg("repository: in-memory")
		return memory.New(), func() error { return nil }, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pg, err := pgstore.New(connectCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback: %w", err)
	}
	if migrate {
		if err := pg.Migrate(connectCtx); err != nil {
			_ = pg.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}
	log.Info().Msg("repository: postgres")
	return pg, pg.Close, nil
}
