package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/anBertoli/snap-share/pkg/auth"
	"github.com/anBertoli/snap-share/pkg/store"
	"github.com/anBertoli/snap-share/services/users"
)

// Define the issue-token command, used by operators to get a token on behalf of
// a user, e.g. to debug a problem reported by the user.
func newIssueTokenCmd() *cobra.Command {
	issueCmd := &cobra.Command{
		Use:   "issue-token <email>",
		Short: "issue a signed token for the user with the given email",
		Args:  cobra.ExactArgs(1),
		RunE:  execIssueTokenCmd,
	}

	flags := issueCmd.Flags()
	flags.String("secret", "", "signing secret, defaults to the JWT_SECRET variable")
	flags.String("algorithm", "HS256", "signing algorithm, one of HS256, HS384, HS512")
	flags.Duration("ttl", 15*time.Minute, "validity of the token")
	return issueCmd
}

func execIssueTokenCmd(cmd *cobra.Command, args []string) error {
	dbURL, err := databaseURL(cmd)
	if err != nil {
		return err
	}
	secret, err := cmd.Flags().GetString("secret")
	if err != nil {
		return err
	}
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	algorithm, err := cmd.Flags().GetString("algorithm")
	if err != nil {
		return err
	}
	ttl, err := cmd.Flags().GetDuration("ttl")
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenService(auth.Config{Secret: secret, Algorithm: algorithm})
	if err != nil {
		return err
	}

	db, err := store.Open(store.Config{Dsn: dbURL})
	if err != nil {
		return err
	}
	defer db.Close()

	s := store.New(db)
	user, err := s.Users.GetForEmail(context.Background(), users.NormalizeEmail(args[0]))
	if err != nil {
		return fmt.Errorf("looking up %s: %w", args[0], err)
	}

	token, err := tokens.Issue(user, ttl)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
