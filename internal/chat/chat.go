// Package chat feeds viewer comments into the engine. The transport is
// pluggable: anything that can push authored text lines implements
// Source, and Runner keeps a flaky source connected across drops.
package chat

import (
	"context"
	"time"
)

// Comment is one viewer message from the live stream.
type Comment struct {
	Author     string
	Text       string
	ReceivedAt time.Time
}

// Source delivers comments until the stream ends or the connection
// drops. A nil return means the source finished cleanly and should not
// be restarted; an error means the connection was lost.
type Source interface {
	Run(ctx context.Context, deliver func(Comment)) error
}
