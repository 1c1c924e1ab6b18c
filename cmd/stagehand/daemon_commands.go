package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stagehand/internal/daemonctl"
	"stagehand/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the stagehand daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonLaunchOptions(ctx),
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.Launched {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
			}

			switch result.State {
			case daemonctl.StartStateStarted:
				fmt.Fprintln(stdout, "Daemon started")
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon already running")
			case daemonctl.StartStateRequested:
				if strings.TrimSpace(result.Message) != "" {
					fmt.Fprintln(stdout, result.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Start request sent")
			}
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the stagehand daemon (terminates the process)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(ctx.socketPath(), ctx.configValue(), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if !result.StopAcknowledged {
				fmt.Fprintln(stdout, "Stop request sent")
			}
			if result.ForcedKill && result.PID > 0 {
				fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the stagehand daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.Restart(
				ctx.socketPath(),
				ctx.configValue(),
				exe,
				daemonLaunchOptions(ctx),
				5*time.Second,
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.WasRunning {
				if result.Stop.ForcedKill && result.Stop.PID > 0 {
					fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.Stop.PID)
				}
				fmt.Fprintln(stdout, "Daemon stopped")
			}

			switch result.Start.State {
			case daemonctl.StartStateStarted, daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon restarted")
			case daemonctl.StartStateRequested:
				if strings.TrimSpace(result.Start.Message) != "" {
					fmt.Fprintln(stdout, result.Start.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Start request sent")
			}
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and show status",
		RunE: func(cmd *cobra.Command, args []string) error {
			status := fetchStatus(ctx)
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(stdout, line)
			}
			if status.Running {
				fmt.Fprintln(stdout, renderStatusLine("Stagehand", statusOK, fmt.Sprintf("Running (pid %d)", status.PID), colorize))
			} else {
				fmt.Fprintln(stdout, renderStatusLine("Stagehand", statusWarn, "Not running (run `stagehand start`)", colorize))
			}
			cfg := ctx.configValue()
			if cfg != nil {
				notifKind := boolStatus(strings.TrimSpace(cfg.Notifications.NtfyTopic) != "")
				notifDetail := "Configured"
				if notifKind != statusOK {
					notifDetail = "Not configured"
				}
				fmt.Fprintln(stdout, renderStatusLine("Notifications", notifKind, notifDetail, colorize))
				classifierKind := boolStatus(strings.TrimSpace(cfg.Classifier.APIKey) != "")
				classifierDetail := "Configured"
				if classifierKind != statusOK {
					classifierDetail = "Disabled (fuzzy matching only)"
				}
				fmt.Fprintln(stdout, renderStatusLine("Classifier", classifierKind, classifierDetail, colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Show", colorize) {
				fmt.Fprintln(stdout, line)
			}
			if !status.Running {
				fmt.Fprintln(stdout, "Daemon offline; no show state available")
				return nil
			}
			phase := status.Phase
			if phase == "" {
				phase = "unknown"
			}
			fmt.Fprintln(stdout, renderStatusLine("Phase", statusInfo, phase, colorize))
			if status.ActiveProduct != "" {
				detail := status.ActiveProduct
				if status.ActiveScene != "" {
					detail = fmt.Sprintf("%s (scene %s)", status.ActiveProduct, status.ActiveScene)
				}
				fmt.Fprintln(stdout, renderStatusLine("On screen", statusOK, detail, colorize))
			}
			fmt.Fprintln(stdout, renderStatusLine("Products", statusInfo, strconv.Itoa(status.Products), colorize))
			fmt.Fprintln(stdout, renderStatusLine("Switches", statusInfo, strconv.FormatUint(status.Stats.SwitchesExecuted, 10), colorize))
			fmt.Fprintln(stdout)

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
		},
	}

	return []*cobra.Command{startCmd, stopCmd, restartCmd, statusCmd}
}

// fetchStatus returns the daemon's status, or a zero value when it is
// unreachable so the status command can render an offline view.
func fetchStatus(ctx *commandContext) ipc.StatusResponse {
	var status ipc.StatusResponse
	_ = ctx.withClient(func(client *ipc.Client) error {
		resp, err := client.Status()
		if err == nil && resp != nil {
			status = *resp
		}
		return nil
	})
	return status
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func daemonLaunchOptions(ctx *commandContext) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{}
	if ctx.socketFlag != nil {
		if socket := strings.TrimSpace(*ctx.socketFlag); socket != "" {
			opts.SocketPath = socket
		}
	}
	if ctx.configFlag != nil {
		if config := strings.TrimSpace(*ctx.configFlag); config != "" {
			opts.ConfigPath = config
		}
	}
	return opts
}
