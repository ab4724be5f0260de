package main

import (
	"errors"
	"fmt"
	"time"

	"template-backend/pkg/auth"

	"github.com/spf13/cobra"
)

func newTokenCmd(c *cli) *cobra.Command {
	var (
		email  string
		roles  []string
		expiry time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue an API token signed with JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			validator, err := auth.NewJWTValidator(auth.JWTConfig{
				SecretKey: c.cfg.JWTSecret,
				Issuer:    c.cfg.JWTIssuer,
				Expiry:    expiry,
			})
			if err != nil {
				return err
			}

			token, err := validator.GenerateToken(args[0], email, roles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Role claim (repeatable)")
	cmd.Flags().DurationVar(&expiry, "expiry", time.Hour, "Token lifetime")

	return cmd
}
