package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"trawl/internal/vault"
)

func newDedupCommand(ctx *commandContext) *cobra.Command {
	var showEntries bool

	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Inspect the vault dedup index (known URLs and titles)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := vault.NewStore(cfg.Paths.VaultDir)
			ix := vault.BuildIndex(store, ctx.Logger(), cfg.Paths.DailiesFolder, cfg.Paths.LibraryFolder)

			urls := sortedKeys(ix.SeenURLs)
			titles := sortedKeys(ix.SeenTitles)

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"vault":  cfg.Paths.VaultDir,
					"urls":   urls,
					"titles": titles,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Vault: %s\n", cfg.Paths.VaultDir)
			fmt.Fprintf(out, "Known URLs: %d\n", len(urls))
			fmt.Fprintf(out, "Known titles: %d\n", len(titles))
			if showEntries {
				for _, url := range urls {
					fmt.Fprintln(out, url)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showEntries, "urls", false, "List every known URL")
	return cmd
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
