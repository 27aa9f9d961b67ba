package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anBertoli/snap-share/pkg/store"
)

// Define the migrate command, a golang-migrate wrapper applying the migrations
// embedded into the binary.
func newMigrateCmd(logger *zap.SugaredLogger) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "convenient golang-migrate wrapper to migrate the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execMigrateCmd(cmd, logger)
		},
	}

	flags := migrateCmd.Flags()
	flags.String("action", "up", "possible value: 'up', 'down', 'drop', 'version' or 'force'")
	flags.IntP("version-to-force", "f", 0, "version value to be forced")
	return migrateCmd
}

// Execute the logic of the migrate command.
func execMigrateCmd(cmd *cobra.Command, logger *zap.SugaredLogger) error {
	dbURL, err := databaseURL(cmd)
	if err != nil {
		return err
	}
	action, err := cmd.Flags().GetString("action")
	if err != nil {
		return err
	}
	version, err := cmd.Flags().GetInt("version-to-force")
	if err != nil {
		return err
	}

	migrator, err := store.NewMigrator(dbURL)
	if err != nil {
		return fmt.Errorf("creating the migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := migrator.Close()
		if srcErr != nil {
			logger.Errorw("closing migrations source", "err", srcErr)
		}
		if dbErr != nil {
			logger.Errorw("closing database", "err", dbErr)
		}
	}()
	migrator.Log = migrationLogger{logger}

	switch action {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "drop":
		err = migrator.Down()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("down phase (before drop): %w", err)
		}
		err = migrator.Drop()
	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			return fmt.Errorf("reading version: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version: %v, dirty: %v\n", version, dirty)
		return nil
	case "force":
		err = migrator.Force(version)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	logger.Infow("migration done", "action", action)
	return nil
}

// Adapts the zap logger to the golang-migrate logger interface.
type migrationLogger struct {
	*zap.SugaredLogger
}

func (ml migrationLogger) Printf(format string, v ...interface{}) {
	ml.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (ml migrationLogger) Verbose() bool {
	return false
}
