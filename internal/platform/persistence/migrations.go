package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const fileSourceScheme = "file://"

// SchemaVersion is the state of the compliance schema after a migration run.
type SchemaVersion struct {
	Version uint
	Dirty   bool
	Changed bool
}

// RunMigrations brings the compliance schema up to the newest migration found in migrationsPath.
// Both binaries call it at start-up; golang-migrate's advisory lock keeps concurrent runs safe.
func RunMigrations(logger *slog.Logger, databaseURL, migrationsPath string) (*SchemaVersion, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL cannot be empty")
	}
	if migrationsPath == "" {
		return nil, errors.New("migrations path cannot be empty")
	}

	m, err := migrate.New(sourceURL(migrationsPath), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("Failed to release migration resources", "source_error", srcErr, "database_error", dbErr)
		}
	}()

	result := &SchemaVersion{Changed: true}
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		result.Changed = false
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}
	result.Version = version
	result.Dirty = dirty

	logger.Info("Compliance schema ready",
		"version", result.Version,
		"changed", result.Changed,
		"dirty", result.Dirty,
	)
	return result, nil
}

func sourceURL(migrationsPath string) string {
	if strings.HasPrefix(migrationsPath, fileSourceScheme) {
		return migrationsPath
	}
	return fileSourceScheme + migrationsPath
}
