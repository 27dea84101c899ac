package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/manmonths/api/runs"
	"github.com/kilianp07/manmonths/core/history"
	coremon "github.com/kilianp07/manmonths/core/monitoring"
	"github.com/kilianp07/manmonths/infra/logger"
	"github.com/kilianp07/manmonths/infra/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the run history API and Prometheus metrics",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := history.NewStore(cfg.History)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	log := logger.New("server")
	err = metrics.StartPromServer(ctx, cfg.Server.Address, log,
		metrics.Route{Pattern: runs.Path, Handler: runs.NewHandler(store, cfg.Server.Token)})
	if err != nil {
		coremon.Capture(err, "command", "serve", "address", cfg.Server.Address)
	}
	return err
}
