package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"stagehand/internal/config"
	"stagehand/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyError(context.Background(), errors.New("boom"), "engine"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsError(t *testing.T) {
	var captured struct {
		title    string
		tags     string
		priority string
		body     string
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		captured.title = r.Header.Get("Title")
		captured.tags = r.Header.Get("Tags")
		captured.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		captured.body = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RequestTimeout = 5
	cfg.Notifications.Errors = true

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyError(context.Background(), errors.New("chat feed unreachable"), "chat"); err != nil {
		t.Fatalf("notification returned error: %v", err)
	}
	if captured.title != "Stagehand - Error" {
		t.Fatalf("unexpected title %q", captured.title)
	}
	if captured.body != "Error with chat: chat feed unreachable" {
		t.Fatalf("unexpected message %q", captured.body)
	}
	if captured.tags != "stagehand,error,alert" {
		t.Fatalf("unexpected tags %q", captured.tags)
	}
	if captured.priority != "high" {
		t.Fatalf("unexpected priority %q", captured.priority)
	}
}

func TestNtfyServiceSuppressesDisabledCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed notification: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Errors = false
	cfg.Notifications.Lifecycle = false

	svc := notifications.NewService(&cfg)
	ctx := context.Background()
	if err := svc.NotifyShowStarted(ctx, 3); err != nil {
		t.Fatalf("suppressed lifecycle notification errored: %v", err)
	}
	if err := svc.NotifyShowStopped(ctx, 12); err != nil {
		t.Fatalf("suppressed lifecycle notification errored: %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("boom"), "engine"); err != nil {
		t.Fatalf("suppressed error notification errored: %v", err)
	}
}

func TestNtfyServiceSendsLifecycleWhenEnabled(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Lifecycle = true

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyShowStarted(context.Background(), 2); err != nil {
		t.Fatalf("NotifyShowStarted: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one ntfy call, got %d", calls)
	}
}

func TestNtfyServiceSurfacesHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected an error for http 403")
	}
}
