// This file is used to run database migrations
// How to run:
// go run cmd/migrate/main.go              # Run all pending migrations
// go run cmd/migrate/main.go -down        # Rollback all migrations
// go run cmd/migrate/main.go -steps 1     # Run one migration
// go run cmd/migrate/main.go -steps -1    # Rollback one migration
// go run cmd/migrate/main.go -force 1     # Force version 1
package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/joho/godotenv"

	env "github.com/celestiaorg/echo-agent/config"
	"github.com/celestiaorg/echo-agent/internal/constants"
	"github.com/celestiaorg/echo-agent/internal/db"
	"github.com/celestiaorg/echo-agent/internal/db/migrations"
	"github.com/celestiaorg/echo-agent/internal/logger"
)

func main() {
	// A missing .env file is fine, the environment is authoritative
	_ = godotenv.Load()

	// Build database URL from env vars
	dbURL := (&url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(env.GetEnv(constants.EnvDBUser, db.DefaultUser), env.GetEnv(constants.EnvDBPassword, db.DefaultPassword)),
		Host:     fmt.Sprintf("%s:%s", env.GetEnv(constants.EnvDBHost, db.DefaultHost), env.GetEnv(constants.EnvDBPort, fmt.Sprint(db.DefaultPort))),
		Path:     "/" + env.GetEnv(constants.EnvDBName, db.DefaultDBName),
		RawQuery: "sslmode=" + env.GetEnv(constants.EnvDBSSLMode, db.DefaultSSLMode),
	}).String()

	defaults := migrations.DefaultConfig()
	var (
		dbURLFlag = flag.String("db", "", "Database URL (optional, defaults to env vars)")
		migPath   = flag.String("path", "", "Migration source URL, e.g. file://migrations (defaults to the embedded schema)")
		down      = flag.Bool("down", false, "Roll back migrations")
		steps     = flag.Int("steps", 0, "Number of migrations to apply (up or down)")
		force     = flag.Int("force", -1, "Force a specific version")
		retries   = flag.Int("retries", defaults.RetryAttempts, "Number of connection retries")
		retryWait = flag.Duration("retry-wait", defaults.RetryDelay, "Wait time between retries")
	)
	flag.Parse()

	// Use command line flag if provided, otherwise use env vars
	if *dbURLFlag != "" {
		dbURL = *dbURLFlag
	}

	service, err := migrations.NewMigrationService(migrations.Config{
		MigrationsPath: *migPath,
		DatabaseURL:    dbURL,
		RetryAttempts:  *retries,
		RetryDelay:     *retryWait,
	})
	if err != nil {
		logger.Fatalf("Failed to create migration service: %v", err)
	}
	defer func() {
		if err := service.Close(); err != nil {
			logger.Warnf("Failed to close migration service: %v", err)
		}
	}()

	if err := run(service, *force, *steps, *down); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(service *migrations.MigrationService, force, steps int, down bool) error {
	// Handle force version
	if force >= 0 {
		if err := service.Force(force); err != nil {
			return fmt.Errorf("failed to force version %d: %w", force, err)
		}
		logger.Infof("Successfully forced version to %d", force)
		return nil
	}

	// Handle steps
	if steps != 0 {
		if err := service.Steps(steps); err != nil {
			return fmt.Errorf("failed to apply %d steps: %w", steps, err)
		}
		logger.Infof("Successfully applied %d steps", steps)
		return nil
	}

	// Handle up/down
	if down {
		if err := service.Down(); err != nil {
			return fmt.Errorf("migration rollback failed: %w", err)
		}
	} else if err := service.Up(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := service.Version()
	if err != nil {
		logger.Warnf("Could not get final version: %v", err)
	} else {
		logger.Infof("Current migration version: %d (dirty: %v)", version, dirty)
	}
	return nil
}
