// Package cmd implements the manmonths command line.
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/manmonths/config"
	coremon "github.com/kilianp07/manmonths/core/monitoring"
	"github.com/kilianp07/manmonths/infra/logger"
	"github.com/kilianp07/manmonths/infra/monitoring"
)

var (
	cfgPath string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "manmonths",
	Short:         "Allocate project person-months to calendar months",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := logger.SetLevel(c.Logging.Level); err != nil {
			return err
		}
		mon, err := monitoring.NewSentryMonitor(c.Sentry)
		if err != nil {
			return fmt.Errorf("sentry: %w", err)
		}
		coremon.Init(mon)
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		coremon.Flush(2 * time.Second)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		// PersistentPostRun is skipped when a command fails.
		coremon.Flush(2 * time.Second)
	}
	return err
}
