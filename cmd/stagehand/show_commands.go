package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stagehand/internal/ipc"
)

func newPlayCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "play <product>",
		Short: "Manually trigger the scene for a product",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product := strings.TrimSpace(strings.Join(args, " "))
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Play(product)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Playing %s\n", resp.Product)
				return nil
			})
		},
	}
}

func newSkipCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "skip",
		Short: "Skip the product currently on screen",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Skip(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Skipped")
				return nil
			})
		},
	}
}

func newStopShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop-show",
		Short: "Clear the queue and return to the default scene",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.StopShow(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Show stopped; queue cleared")
				return nil
			})
		},
	}
}

func newReloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload the product catalog from the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Reload()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Catalog reloaded (%d products)\n", resp.Products)
				return nil
			})
		},
	}
}
