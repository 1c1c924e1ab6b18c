package chat

import (
	"context"
	"errors"
	"testing"
	"time"
)

// flakySource fails a set number of runs before finishing cleanly.
type flakySource struct {
	failures int
	runs     int
}

func (s *flakySource) Run(ctx context.Context, deliver func(Comment)) error {
	s.runs++
	if s.runs <= s.failures {
		return errors.New("stream dropped")
	}
	deliver(Comment{Author: "viewer", Text: "hello", ReceivedAt: time.Now()})
	return nil
}

func TestRunnerReconnectsUntilCleanFinish(t *testing.T) {
	src := &flakySource{failures: 3}
	var errCount int
	runner := NewRunner(RunnerOptions{
		Source:         src,
		ReconnectDelay: time.Millisecond,
		OnError:        func(error) { errCount++ },
	})
	runner.quickDelay = time.Millisecond

	var got []Comment
	err := runner.Run(context.Background(), func(c Comment) {
		got = append(got, c)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if src.runs != 4 {
		t.Fatalf("expected 4 runs, got %d", src.runs)
	}
	if errCount != 3 {
		t.Fatalf("expected 3 error callbacks, got %d", errCount)
	}
	if len(got) != 1 || got[0].Text != "hello" {
		t.Fatalf("unexpected comments %#v", got)
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	src := &flakySource{failures: 1_000_000}
	runner := NewRunner(RunnerOptions{Source: src, ReconnectDelay: time.Hour})
	runner.quickDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, func(Comment) {}) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}
}
