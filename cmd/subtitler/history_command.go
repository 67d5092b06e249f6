package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/subtitler/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent translations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg.History.ApplyDefaults()

			store, err := history.Open(cmd.Context(), cfg.History)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No translations recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Created", "File", "Language", "Status", "Blocks", "Duration"},
				historyRows(entries),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Number of entries to show")
	return cmd
}

func historyRows(entries []*history.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := string(e.Status)
		if !e.Succeeded() && e.ErrorCode != "" {
			status += " (" + e.ErrorCode + ")"
		}
		blocks := "-"
		if e.Succeeded() {
			blocks = strconv.Itoa(e.SourceBlocks) + "/" + strconv.Itoa(e.TranslatedBlocks)
		}
		rows = append(rows, []string{
			e.ID,
			e.CreatedAt.Local().Format(time.DateTime),
			e.Filename,
			e.Language,
			status,
			blocks,
			e.Duration.Round(time.Millisecond).String(),
		})
	}
	return rows
}
