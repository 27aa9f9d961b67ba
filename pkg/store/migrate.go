package store

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// Build a golang-migrate instance for the database at dsn, reading the migrations of
// the matching dialect embedded into the binary. The caller must close the migrator.
func NewMigrator(dsn string) (*migrate.Migrate, error) {
	var dialect string
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		dialect = "postgres"
	case strings.HasPrefix(dsn, "sqlite://"):
		dialect = "sqlite"
	default:
		return nil, errors.New("unsupported database dsn, expected postgres:// or sqlite://")
	}

	src, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return nil, fmt.Errorf("loading %s migrations: %w", dialect, err)
	}
	return migrate.NewWithSourceInstance("iofs", src, dsn)
}

// Apply all the pending up migrations. Being already up to date is not an error.
func Migrate(dsn string) error {
	migrator, err := NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer migrator.Close()

	err = migrator.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
