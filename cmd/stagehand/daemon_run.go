package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stagehand/internal/daemonrun"
)

// newDaemonRunCommand runs the daemon in the foreground. `stagehand start`
// launches this same command detached.
func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the stagehand daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if ctx.socketFlag != nil {
				if socket := strings.TrimSpace(*ctx.socketFlag); socket != "" {
					cfg.Paths.Socket = socket
				}
			}
			return daemonrun.Run(cmd.Context(), cfg, ctx.configPath)
		},
	}
}
