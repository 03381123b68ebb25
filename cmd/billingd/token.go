package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hourbook/billing/internal/api/middleware"
)

func newTokenCmd(rt *runtime) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rt.cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			if role != middleware.RoleOwner && role != middleware.RoleViewer {
				return fmt.Errorf("role must be %q or %q", middleware.RoleOwner, middleware.RoleViewer)
			}
			if ttl <= 0 {
				return errors.New("ttl must be positive")
			}
			token, err := middleware.SignToken(rt.cfg.JWTSecret, subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "owner", "token subject, logged as the actor of changes")
	cmd.Flags().StringVar(&role, "role", middleware.RoleOwner, "owner or viewer")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime")
	return cmd
}
