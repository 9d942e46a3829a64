package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"trawl/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent runs, or the per-topic batches of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg.Paths.StateDir)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				return showRunBatches(cmd, ctx, store, args[0])
			}
			return showRecentRuns(cmd, ctx, store, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to list")
	return cmd
}

func showRecentRuns(cmd *cobra.Command, ctx *commandContext, store *ledger.Store, limit int) error {
	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if ctx.JSONMode() {
		return writeJSON(cmd, runs)
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, runRow(run))
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Started", "Finished", "Status", "Window", "Kept", "Note"},
		rows,
		5,
	))
	return nil
}

// runRow renders one ledger run as table cells. Unfinished runs have a zero
// FinishedAt, shown as an empty cell.
func runRow(run ledger.Run) []string {
	return []string{
		run.ID,
		formatRunTime(run.StartedAt),
		formatRunTime(run.FinishedAt),
		run.Status,
		fmt.Sprintf("%s to %s", run.FromDate, run.ToDate),
		strconv.Itoa(run.KeptItems),
		run.NotePath,
	}
}

func formatRunTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func showRunBatches(cmd *cobra.Command, ctx *commandContext, store *ledger.Store, runID string) error {
	batches, err := store.BatchesForRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if ctx.JSONMode() {
		return writeJSON(cmd, batches)
	}
	out := cmd.OutOrStdout()
	if len(batches) == 0 {
		fmt.Fprintf(out, "No batches recorded for run %s.\n", runID)
		return nil
	}
	rows := make([][]string, 0, len(batches))
	for _, batch := range batches {
		rows = append(rows, []string{
			batch.TopicSlug,
			batch.Source,
			strconv.Itoa(batch.Found),
			strconv.Itoa(batch.Kept),
			batch.Error,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Topic", "Source", "Found", "Kept", "Error"},
		rows,
		2, 3,
	))
	return nil
}
