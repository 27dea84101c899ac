package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/manmonths/core/history"
)

var runsOpts struct {
	source    string
	shortfall bool
	since     time.Duration
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the run history",
}

var runsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recorded allocation runs",
	RunE:  runRunsLs,
}

func init() {
	f := runsLsCmd.Flags()
	f.StringVar(&runsOpts.source, "source", "", "only runs of this input file name")
	f.BoolVar(&runsOpts.shortfall, "shortfall", false, "only runs with unallocated person-months")
	f.DurationVar(&runsOpts.since, "since", 0, "only runs newer than this duration, e.g. 24h")
	runsCmd.AddCommand(runsLsCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsLs(cmd *cobra.Command, args []string) error {
	store, err := history.NewStore(cfg.History)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	q := history.Query{Source: runsOpts.source, ShortfallOnly: runsOpts.shortfall}
	if runsOpts.since > 0 {
		q.Start = time.Now().Add(-runsOpts.since)
	}
	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tSOURCE\tCAPACITY\tREQUESTED\tALLOCATED\tUNALLOCATED")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			r.ID, r.Timestamp.Format(time.RFC3339), r.Source, r.Capacity,
			r.Summary.Requested, r.Summary.Allocated, r.Summary.Unallocated)
	}
	return tw.Flush()
}
