package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sjperalta/fintera-coop/internal/config"
	"github.com/sjperalta/fintera-coop/internal/middleware"
)

// newTokenCommand signs a bearer token for a member. Identity lives
// outside this service; this is for operators and local testing.
func newTokenCommand() *cobra.Command {
	var (
		userID uint
		email  string
		role   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an API token for a member",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			token, err := middleware.IssueToken(cfg.JWTSecret, userID, email, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().UintVar(&userID, "user", 0, "Member user ID (required)")
	cmd.Flags().StringVar(&email, "email", "", "E-mail claim")
	cmd.Flags().StringVar(&role, "role", "", "Operator role, e.g. admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
