package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd(logger *zap.SugaredLogger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "snap-cli",
		Short:         "Snap Share CLI",
		Long:          `Snap Share CLI to perform system and admin operations`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("database-url", "sqlite://./snapshare.db", "database url (ex: postgres://localhost:5432/snapshare?sslmode=disable or sqlite://./snapshare.db)")

	rootCmd.AddCommand(newMigrateCmd(logger))
	rootCmd.AddCommand(newIssueTokenCmd())
	return rootCmd
}

func main() {
	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	logger := zapLogger.Sugar()
	defer logger.Sync()

	err = newRootCmd(logger).Execute()
	if err != nil {
		logger.Errorw("command failed", "err", err)
		os.Exit(1)
	}
}

// The database url flag can be replaced by the DATABASE_URL variable.
func databaseURL(cmd *cobra.Command) (string, error) {
	flag := cmd.Flags().Lookup("database-url")
	if v := os.Getenv("DATABASE_URL"); v != "" && (flag == nil || !flag.Changed) {
		return v, nil
	}
	return cmd.Flags().GetString("database-url")
}
