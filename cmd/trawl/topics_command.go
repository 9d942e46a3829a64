package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTopicsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List the configured research topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			topicList := cfg.TopicList()

			if ctx.JSONMode() {
				return writeJSON(cmd, topicList)
			}

			rows := make([][]string, 0, len(topicList))
			for _, topic := range topicList {
				weight := "1.0"
				if topic.Weight != 0 {
					weight = fmt.Sprintf("%.1f", topic.Weight)
				}
				rows = append(rows, []string{
					topic.Slug,
					topic.Name(),
					weight,
					strings.Join(topic.PostQueries, "; "),
					strings.Join(topic.ThreadQueries, "; "),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Slug", "Name", "Weight", "Post queries", "Thread queries"},
				rows,
				2,
			))
			return nil
		},
	}
}
