package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"trawl/internal/config"
	"trawl/internal/feeds"
	"trawl/internal/ledger"
	"trawl/internal/pipeline"
	"trawl/internal/provider"
	"trawl/internal/vault"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var topicFlags []string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a research scan and write today's daily note",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.Logger()
			out := cmd.OutOrStdout()

			deps := pipeline.Deps{
				Vault:  vault.NewStore(cfg.Paths.VaultDir),
				Logger: logger,
			}

			timeout := provider.WithTimeout(time.Duration(cfg.Provider.TimeoutSeconds) * time.Second)
			if cfg.Provider.PostAPIKey != "" {
				deps.Posts = provider.NewPostClient(cfg.Provider.PostAPIKey, cfg.Provider.PostBaseURL, cfg.Provider.PostModel, timeout)
			} else if !ctx.JSONMode() {
				fmt.Fprintln(out, "No post API key configured; skipping post search.")
			}
			if cfg.Provider.ThreadAPIKey != "" {
				deps.Threads = provider.NewThreadClient(cfg.Provider.ThreadAPIKey, cfg.Provider.ThreadBaseURL, cfg.Provider.ThreadModel, timeout)
				deps.Synth = provider.NewSynthesizer(cfg.Provider.ThreadAPIKey, cfg.Provider.ThreadBaseURL, cfg.Provider.SynthModel, timeout)
			} else if !ctx.JSONMode() {
				fmt.Fprintln(out, "No thread API key configured; skipping thread search and synthesis.")
			}
			if cfg.Feeds.Enabled && len(cfg.Feeds.URLs) > 0 {
				deps.Feeds = feeds.New(cfg.Feeds.URLs, logger)
			}

			history, err := ledger.Open(cfg.Paths.StateDir)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer history.Close()
			deps.History = history

			p, err := pipeline.New(cfg, deps)
			if err != nil {
				return err
			}

			result, err := p.Run(cmd.Context(), pipeline.RunOptions{
				TopicFilter: topicFlags,
				DryRun:      dryRun,
			})
			if errors.Is(err, pipeline.ErrLocked) {
				return errors.New("another scan is already running; wait for it to finish")
			}
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, result)
			}
			printScanResult(cmd, cfg, result)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&topicFlags, "topic", nil, "Limit the scan to the named topic slugs")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Scan and rank without writing the note or history")
	return cmd
}

func printScanResult(cmd *cobra.Command, cfg *config.Config, result *pipeline.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanned %s to %s\n\n", result.FromDate, result.ToDate)

	rows := make([][]string, 0, len(result.Outcomes))
	for _, outcome := range result.Outcomes {
		rows = append(rows, []string{
			outcome.Topic.Slug,
			strconv.Itoa(len(outcome.Posts)),
			strconv.Itoa(len(outcome.Threads)),
			strconv.Itoa(len(outcome.Errors)),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Topic", "Posts", "Threads", "Errors"},
		rows,
		1, 2, 3,
	))

	fmt.Fprintf(out, "\nKept items: %d\n", result.Kept)
	fmt.Fprintf(out, "Reading list: %d items\n", len(result.ReadingList))
	fmt.Fprintf(out, "Briefing: %s\n", yesNo(result.Briefing != ""))
	if result.DryRun {
		fmt.Fprintln(out, "Dry run: no note written")
	} else {
		fmt.Fprintf(out, "Note: %s\n", filepath.Join(cfg.Paths.VaultDir, result.NotePath))
	}
	for _, msg := range result.Errors() {
		fmt.Fprintf(out, "Warning: %s\n", msg)
	}
}
