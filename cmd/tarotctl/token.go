package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tarotfutura/futura/internal/auth"
)

func newTokenCmd() *cobra.Command {
	var (
		user     string
		audience string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development JWT for a user id",
		Long:  "Signs with AUTH_JWT_SECRET. Meant for local testing against the API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := os.Getenv("AUTH_JWT_SECRET")
			if secret == "" {
				return fmt.Errorf("AUTH_JWT_SECRET is not set")
			}
			tok, err := auth.Issue([]byte(secret), user, audience, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id placed in the subject claim")
	cmd.Flags().StringVar(&audience, "audience", "authenticated", "audience claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
