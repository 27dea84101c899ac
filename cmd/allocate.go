package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/manmonths/app"
	"github.com/kilianp07/manmonths/core/loader"
	coremon "github.com/kilianp07/manmonths/core/monitoring"
	"github.com/kilianp07/manmonths/core/report"
	"github.com/kilianp07/manmonths/infra/logger"
)

var allocateOpts struct {
	input    string
	output   string
	capacity int
	formats  []string
	summary  bool
}

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Allocate the person-months of an input table",
	RunE:  runAllocate,
}

func init() {
	f := allocateCmd.Flags()
	f.StringVarP(&allocateOpts.input, "input", "i", "", "input table (.xlsx or .csv)")
	f.StringVarP(&allocateOpts.output, "output", "o", "", "output directory (defaults to the configured one, then the input directory)")
	f.IntVar(&allocateOpts.capacity, "capacity", 0, "maximum person-months per year (overrides configuration)")
	f.StringSliceVar(&allocateOpts.formats, "format", nil, "output formats, e.g. xlsx,csv,json")
	f.BoolVar(&allocateOpts.summary, "summary", false, "print the allocation summary")
	_ = allocateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(allocateCmd)
}

func runAllocate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.New("allocate")
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Errorf("service close: %v", err)
		}
	}()

	out, err := svc.Run(ctx, app.Request{
		Input:     allocateOpts.input,
		OutputDir: allocateOpts.output,
		Capacity:  allocateOpts.capacity,
		Formats:   allocateOpts.formats,
	})
	if out == nil {
		coremon.Capture(err, "command", "allocate", "source", allocateOpts.input, "kind", errorKind(err))
		return err
	}
	if err != nil {
		log.Warnf("run %s finished with sink errors: %v", out.RunID, err)
		coremon.Capture(err, "command", "allocate", "source", allocateOpts.input, "kind", "sink")
	}

	w := cmd.OutOrStdout()
	for _, warn := range out.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	if allocateOpts.summary {
		if err := report.WriteText(w, out.Report); err != nil {
			return err
		}
	}
	for _, p := range out.Outputs {
		fmt.Fprintf(w, "wrote %s\n", p)
	}
	return nil
}

func errorKind(err error) string {
	var mc *loader.MissingColumnError
	var nv *loader.NoValidDataError
	switch {
	case errors.As(err, &mc):
		return "missing_column"
	case errors.As(err, &nv):
		return "no_valid_data"
	default:
		return "input"
	}
}
