package chat

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// ScriptSource replays comments from a text file, one per line, in the
// form "author<TAB>text". Lines without a tab are treated as text from
// a generic viewer; blank lines and #-comments are skipped. It exists
// for demos and rehearsal runs where no live stream is attached.
type ScriptSource struct {
	path     string
	interval time.Duration
}

// NewScriptSource builds a source replaying the file at path, pausing
// interval between lines (zero means no pacing).
func NewScriptSource(path string, interval time.Duration) *ScriptSource {
	return &ScriptSource{path: path, interval: interval}
}

// Run replays the script and returns nil at end of file.
func (s *ScriptSource) Run(ctx context.Context, deliver func(Comment)) error {
	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("chat script: open: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	first := true
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !first && s.interval > 0 {
			timer := time.NewTimer(s.interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		first = false
		author := "viewer"
		text := line
		if idx := strings.IndexByte(line, '\t'); idx >= 0 {
			if candidate := strings.TrimSpace(line[:idx]); candidate != "" {
				author = candidate
			}
			text = strings.TrimSpace(line[idx+1:])
		}
		if text == "" {
			continue
		}
		deliver(Comment{Author: author, Text: text, ReceivedAt: time.Now()})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("chat script: read: %w", err)
	}
	return nil
}
