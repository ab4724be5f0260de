// Package main implements templatectl, the operator CLI for database
// migrations, preferences and development tokens.
package main

import (
	"fmt"
	"io"
	"os"

	"template-backend/infrastructure/config"
	"template-backend/infrastructure/di"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries state shared by subcommands
type cli struct {
	cfg        *config.Config
	logger     *zap.Logger
	syncLogger func()
	out        io.Writer

	loadConfig func() (*config.Config, error)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:               "templatectl",
		Short:             "Operate the template backend",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			logger, syncLogger, err := di.ProvideLogger(cfg)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			c.cfg = cfg
			c.logger = logger
			c.syncLogger = syncLogger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if c.syncLogger != nil {
				c.syncLogger()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(c.out)

	root.AddCommand(newMigrateCmd(c))
	root.AddCommand(newPrefsCmd(c))
	root.AddCommand(newTokenCmd(c))

	return root
}

func main() {
	c := &cli{out: os.Stdout, loadConfig: config.LoadConfig}
	if err := newRootCmd(c).Execute(); err != nil {
		os.Exit(1)
	}
}
