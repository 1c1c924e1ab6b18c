package chat

import (
	"context"
	"log/slog"
	"time"

	"stagehand/internal/logging"
)

// quickRetryDelay is used for the first couple of consecutive failures;
// most stream drops recover within seconds and waiting the full
// configured delay would miss comments.
const quickRetryDelay = 5 * time.Second

// quickRetryBudget is how many consecutive failures retry quickly
// before falling back to the configured delay.
const quickRetryBudget = 2

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Source Source
	// ReconnectDelay applies after the quick-retry budget is exhausted.
	ReconnectDelay time.Duration
	Logger         *slog.Logger
	// OnError is called for every source failure, after logging.
	OnError func(error)
}

// Runner keeps a comment source running, reconnecting after failures
// until the context is canceled or the source finishes cleanly.
type Runner struct {
	source  Source
	delay   time.Duration
	logger  *slog.Logger
	onError func(error)

	quickDelay time.Duration
}

// NewRunner builds a runner for the source.
func NewRunner(opts RunnerOptions) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	delay := opts.ReconnectDelay
	if delay <= 0 {
		delay = 30 * time.Second
	}
	return &Runner{
		source:     opts.Source,
		delay:      delay,
		logger:     logger,
		onError:    opts.OnError,
		quickDelay: quickRetryDelay,
	}
}

// Run delivers comments until the context is canceled or the source
// finishes cleanly. Failures reconnect: quickly at first, then at the
// configured delay. A run that delivered at least one comment resets
// the failure streak.
func (r *Runner) Run(ctx context.Context, deliver func(Comment)) error {
	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		delivered := false
		err := r.source.Run(ctx, func(comment Comment) {
			delivered = true
			deliver(comment)
		})
		if err == nil {
			r.logger.Info("comment source finished")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if delivered {
			failures = 0
		}
		failures++
		delay := r.delay
		if failures <= quickRetryBudget {
			delay = r.quickDelay
		}
		r.logger.Warn("comment source failed, reconnecting",
			logging.Error(err),
			logging.Int("consecutive_failures", failures),
			logging.Duration("retry_in", delay))
		if r.onError != nil {
			r.onError(err)
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
