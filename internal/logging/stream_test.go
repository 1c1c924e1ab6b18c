package logging_test

import (
	"context"
	"testing"
	"time"

	"stagehand/internal/logging"
)

func TestStreamHubPublishAndTail(t *testing.T) {
	hub := logging.NewStreamHub(4)
	for i := 0; i < 6; i++ {
		hub.Publish(logging.LogEvent{Message: "event"})
	}
	events, next := hub.Tail(10)
	if len(events) != 4 {
		t.Fatalf("expected buffer capped at 4, got %d", len(events))
	}
	if events[0].Sequence != 3 || events[len(events)-1].Sequence != 6 {
		t.Fatalf("unexpected sequence range %d..%d", events[0].Sequence, events[len(events)-1].Sequence)
	}
	if next != 6 {
		t.Fatalf("next cursor = %d, want 6", next)
	}
}

func TestStreamHubFetchSince(t *testing.T) {
	hub := logging.NewStreamHub(16)
	hub.Publish(logging.LogEvent{Message: "first"})
	hub.Publish(logging.LogEvent{Message: "second"})

	events, next, err := hub.Fetch(context.Background(), 1, 10, false)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(events) != 1 || events[0].Message != "second" {
		t.Fatalf("unexpected events %+v", events)
	}
	if next != 2 {
		t.Fatalf("next cursor = %d, want 2", next)
	}
}

func TestStreamHubFetchWaitsForPublish(t *testing.T) {
	hub := logging.NewStreamHub(16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		events, _, err := hub.Fetch(context.Background(), 0, 10, true)
		if err != nil {
			t.Errorf("Fetch failed: %v", err)
			return
		}
		if len(events) != 1 || events[0].Message != "wake" {
			t.Errorf("unexpected events %+v", events)
		}
	}()

	time.Sleep(20 * time.Millisecond)
	hub.Publish(logging.LogEvent{Message: "wake"})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Fetch did not return after publish")
	}
}

func TestStreamHubFetchHonorsContext(t *testing.T) {
	hub := logging.NewStreamHub(16)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, _, err := hub.Fetch(ctx, 0, 10, true)
	if err == nil {
		t.Fatal("expected context error from blocked Fetch")
	}
}
