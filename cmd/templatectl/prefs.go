package main

import (
	"context"
	"fmt"
	"sort"

	"template-backend/application/ports"
	"template-backend/infrastructure/di"

	"github.com/spf13/cobra"
)

func newPrefsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Read and write application preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withPreferences(cmd.Context(), func(ctx context.Context, prefs ports.Preferences) error {
				value, ok := prefs.All()[args[0]]
				if !ok {
					return fmt.Errorf("preference %q is not set", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store one preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withPreferences(cmd.Context(), func(ctx context.Context, prefs ports.Preferences) error {
				return prefs.Set(ctx, args[0], args[1])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every preference",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withPreferences(cmd.Context(), func(ctx context.Context, prefs ports.Preferences) error {
				all := prefs.All()
				keys := make([]string, 0, len(all))
				for k := range all {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, all[k])
				}
				return nil
			})
		},
	})

	return cmd
}

func (c *cli) withPreferences(ctx context.Context, fn func(ctx context.Context, prefs ports.Preferences) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := di.ProvideApplication(c.cfg)
	if err != nil {
		return err
	}
	awsCfg, err := di.ProvideAWSConfig(ctx, c.cfg)
	if err != nil {
		return err
	}

	prefs, cleanup, err := di.ProvidePreferences(ctx, app, c.cfg, di.ProvideDynamoDBClient(awsCfg), c.logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(ctx, prefs)
}
