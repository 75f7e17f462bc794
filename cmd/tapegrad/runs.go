package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/born-ml/tapegrad/internal/runlog"
)

var errNoRunLog = errors.New("no run log configured (set --db or TAPEGRAD_DB)")

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List recorded training runs, or the steps of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openRunLog()
		if err != nil {
			return err
		}
		if store == nil {
			return errNoRunLog
		}
		defer func() { _ = store.Close() }()

		if len(args) == 1 {
			return printSteps(cmd, store, args[0])
		}
		return printRuns(cmd, store)
	},
}

func printRuns(cmd *cobra.Command, store *runlog.Store) error {
	runs, err := store.Runs(cmd.Context())
	if err != nil {
		return err
	}

	tw := newTable(cmd.OutOrStdout(), "ID\tNAME\tSTARTED\tSTEPS\tFINAL LOSS")
	for _, r := range runs {
		final := "-"
		if r.FinalLoss.Valid {
			final = fmt.Sprintf("%.6g", r.FinalLoss.Float64)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.Name, r.StartedAt.Local().Format(time.DateTime), r.NumSteps, final)
	}
	return tw.Flush()
}

func printSteps(cmd *cobra.Command, store *runlog.Store, runID string) error {
	steps, err := store.Steps(cmd.Context(), runID)
	if err != nil {
		return err
	}

	tw := newTable(cmd.OutOrStdout(), "STEP\tLOSS")
	for _, s := range steps {
		fmt.Fprintf(tw, "%d\t%.6g\n", s.Step, s.Loss)
	}
	return tw.Flush()
}

func newTable(w io.Writer, header string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	return tw
}
