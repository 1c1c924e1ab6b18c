package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stagehand/internal/ipc"
	"stagehand/internal/logging"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var follow bool
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent daemon log events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				resp, err := client.LogTail(ipc.LogTailRequest{Limit: limit})
				if err != nil {
					return err
				}
				printLogEvents(stdout, resp.Events)
				if !follow {
					return nil
				}
				since := resp.NextSeq
				for {
					select {
					case <-cmd.Context().Done():
						return nil
					default:
					}
					resp, err := client.LogTail(ipc.LogTailRequest{
						Since:      since,
						Limit:      limit,
						Follow:     true,
						WaitMillis: 1000,
					})
					if err != nil {
						return err
					}
					printLogEvents(stdout, resp.Events)
					since = resp.NextSeq
				}
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of events per fetch")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep streaming new events")
	return cmd
}

func printLogEvents(out io.Writer, events []logging.LogEvent) {
	for _, evt := range events {
		fmt.Fprintln(out, formatLogEvent(evt))
	}
}

func formatLogEvent(evt logging.LogEvent) string {
	var b strings.Builder
	b.WriteString(evt.Timestamp.Local().Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(strings.ToUpper(evt.Level))
	b.WriteByte(' ')
	if evt.Component != "" {
		b.WriteString(evt.Component)
		b.WriteString(": ")
	}
	b.WriteString(evt.Message)
	if evt.Product != "" {
		b.WriteString(" product=")
		b.WriteString(evt.Product)
	}
	if evt.Scene != "" {
		b.WriteString(" scene=")
		b.WriteString(evt.Scene)
	}
	if len(evt.Fields) > 0 {
		keys := make([]string, 0, len(evt.Fields))
		for key := range evt.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			b.WriteByte(' ')
			b.WriteString(key)
			b.WriteByte('=')
			b.WriteString(evt.Fields[key])
		}
	}
	return b.String()
}
