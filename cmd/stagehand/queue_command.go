package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stagehand/internal/ipc"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show the pending product queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, map[string]any{
						"active_product": status.ActiveProduct,
						"active_scene":   status.ActiveScene,
						"queue":          status.Queue,
					})
				}
				stdout := cmd.OutOrStdout()
				if status.ActiveProduct != "" {
					fmt.Fprintf(stdout, "On screen: %s (scene %s)\n", status.ActiveProduct, status.ActiveScene)
				} else {
					fmt.Fprintln(stdout, "Nothing on screen")
				}
				if len(status.Queue) == 0 {
					fmt.Fprintln(stdout, "Queue is empty")
					return nil
				}
				rows := make([][]string, 0, len(status.Queue))
				for i, item := range status.Queue {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						item.Product,
						item.Author,
						item.EnqueuedAt.Local().Format("15:04:05"),
					})
				}
				fmt.Fprintln(stdout, renderTable([]string{"#", "Product", "Requested By", "Queued At"}, rows, 1))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show engine pipeline counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stats()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Stats)
				}
				stats := resp.Stats
				rows := [][]string{
					{"Comments processed", strconv.FormatUint(stats.CommentsProcessed, 10)},
					{"Cache hits", strconv.FormatUint(stats.CacheHits, 10)},
					{"Prefilter skips", strconv.FormatUint(stats.PrefilterSkips, 10)},
					{"Classifier calls", strconv.FormatUint(stats.ClassifierCalls, 10)},
					{"Stale results", strconv.FormatUint(stats.StaleResults, 10)},
					{"Switches executed", strconv.FormatUint(stats.SwitchesExecuted, 10)},
					{"Queued", strconv.FormatUint(stats.Queued, 10)},
					{"Duplicates", strconv.FormatUint(stats.Duplicates, 10)},
					{"Rate limited", strconv.FormatUint(stats.RateLimited, 10)},
					{"Dropped", strconv.FormatUint(stats.Dropped, 10)},
					{"Errors", strconv.FormatUint(stats.Errors, 10)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Counter", "Value"}, rows, 2))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}
