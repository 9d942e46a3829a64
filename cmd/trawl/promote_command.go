package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trawl/internal/promote"
	"trawl/internal/topics"
	"trawl/internal/vault"
)

func newPromoteCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Move #keep-tagged reading-list items into the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := vault.NewStore(cfg.Paths.VaultDir)
			svc := promote.New(store, cfg.Paths.DailiesFolder, cfg.Paths.LibraryFolder,
				topics.Slugs(cfg.TopicList()), ctx.Logger())

			var promoted []promote.Item
			if dryRun {
				promoted, err = svc.Scan()
			} else {
				promoted, err = svc.Run()
			}
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"dry_run": dryRun,
					"items":   promoted,
				})
			}

			out := cmd.OutOrStdout()
			if len(promoted) == 0 {
				fmt.Fprintln(out, "Nothing tagged #keep.")
				return nil
			}
			rows := make([][]string, 0, len(promoted))
			for _, item := range promoted {
				rows = append(rows, []string{item.DateFound, item.TopicSlug, item.Title})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Found", "Topic", "Title"},
				rows,
			))
			if dryRun {
				fmt.Fprintf(out, "\n%d item(s) would be promoted.\n", len(promoted))
			} else {
				fmt.Fprintf(out, "\nPromoted %d item(s) into %s.\n", len(promoted), cfg.Paths.LibraryFolder)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List promotable items without changing the vault")
	return cmd
}
