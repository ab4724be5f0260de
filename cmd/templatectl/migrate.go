package main

import (
	"context"
	"fmt"

	"template-backend/infrastructure/persistence/database"

	"github.com/spf13/cobra"
)

func newMigrateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the main database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withDatabase(cmd.Context(), func(ctx context.Context, db *database.MainDatabase) error {
				if err := db.Migrate(ctx); err != nil {
					return err
				}
				return printVersion(cmd, ctx, db)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withDatabase(cmd.Context(), func(ctx context.Context, db *database.MainDatabase) error {
				if err := db.MigrateDown(ctx); err != nil {
					return err
				}
				return printVersion(cmd, ctx, db)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withDatabase(cmd.Context(), func(ctx context.Context, db *database.MainDatabase) error {
				return printVersion(cmd, ctx, db)
			})
		},
	})

	return cmd
}

func (c *cli) withDatabase(ctx context.Context, fn func(ctx context.Context, db *database.MainDatabase) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := database.Open(ctx, c.cfg.DatabaseURL, c.logger)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, db)
}

func printVersion(cmd *cobra.Command, ctx context.Context, db *database.MainDatabase) error {
	version, dirty, err := db.Version(ctx)
	if err != nil {
		return err
	}
	if dirty {
		fmt.Fprintf(cmd.OutOrStdout(), "%s schema version %d (dirty)\n", db.Name(), version)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s schema version %d\n", db.Name(), version)
	return nil
}
