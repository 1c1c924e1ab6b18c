package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stagehand/internal/ipc"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var summary bool
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scene switches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if summary {
					return renderHistorySummary(cmd, client, asJSON)
				}
				resp, err := client.History(limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Entries)
				}
				if len(resp.Entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No switches recorded")
					return nil
				}
				rows := make([][]string, 0, len(resp.Entries))
				for _, entry := range resp.Entries {
					rows = append(rows, []string{
						entry.SwitchedAt.Local().Format("2006-01-02 15:04:05"),
						entry.Product,
						entry.Scene,
						entry.Author,
						entry.Method,
						fmt.Sprintf("%.2f", entry.Confidence),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"When", "Product", "Scene", "Requested By", "Method", "Confidence"}, rows, 6))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	cmd.Flags().BoolVar(&summary, "summary", false, "Aggregate switches per product")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func renderHistorySummary(cmd *cobra.Command, client *ipc.Client, asJSON bool) error {
	resp, err := client.HistorySummary()
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(cmd, resp.Products)
	}
	if len(resp.Products) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No switches recorded")
		return nil
	}
	rows := make([][]string, 0, len(resp.Products))
	for _, product := range resp.Products {
		rows = append(rows, []string{
			product.Product,
			strconv.FormatInt(product.Switches, 10),
			product.LastSwitched.Local().Format("2006-01-02 15:04:05"),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Product", "Switches", "Last Switched"}, rows, 2))
	return nil
}
