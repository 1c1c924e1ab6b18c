package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stagehand/internal/config"
)

const userAgent = "Stagehand/0.1.0"

// Service defines the notification surface exposed to the daemon and
// engine.
type Service interface {
	NotifyShowStarted(ctx context.Context, products int) error
	NotifyShowStopped(ctx context.Context, switches uint64) error
	NotifyChatDisconnected(ctx context.Context, err error) error
	NotifyConfigWarning(ctx context.Context, warning string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		errors:    cfg.Notifications.Errors,
		lifecycle: cfg.Notifications.Lifecycle,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	errors    bool
	lifecycle bool
}

func (n *ntfyService) NotifyShowStarted(ctx context.Context, products int) error {
	if !n.lifecycle {
		return nil
	}
	data := payload{
		title:   "Stagehand - Show Started",
		message: fmt.Sprintf("Show started with %d products in the catalog", products),
		tags:    []string{"stagehand", "show", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyShowStopped(ctx context.Context, switches uint64) error {
	if !n.lifecycle {
		return nil
	}
	data := payload{
		title:   "Stagehand - Show Stopped",
		message: fmt.Sprintf("Show stopped after %d scene switches", switches),
		tags:    []string{"stagehand", "show", "stopped"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyChatDisconnected(ctx context.Context, err error) error {
	if !n.errors {
		return nil
	}
	message := "Chat feed disconnected, reconnecting"
	if err != nil {
		message = fmt.Sprintf("%s: %s", message, strings.TrimSpace(err.Error()))
	}
	data := payload{
		title:    "Stagehand - Chat Disconnected",
		message:  message,
		tags:     []string{"stagehand", "chat", "disconnected"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyConfigWarning(ctx context.Context, warning string) error {
	warning = strings.TrimSpace(warning)
	if warning == "" {
		return nil
	}
	data := payload{
		title:   "Stagehand - Configuration Warning",
		message: warning,
		tags:    []string{"stagehand", "config", "warning"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Stagehand - Error",
		message:  builder.String(),
		tags:     []string{"stagehand", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Stagehand - Test",
		message:  "Notification system test",
		tags:     []string{"stagehand", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyShowStarted(context.Context, int) error          { return nil }
func (noopService) NotifyShowStopped(context.Context, uint64) error       { return nil }
func (noopService) NotifyChatDisconnected(context.Context, error) error   { return nil }
func (noopService) NotifyConfigWarning(context.Context, string) error     { return nil }
func (noopService) NotifyError(context.Context, error, string) error      { return nil }
func (noopService) TestNotification(context.Context) error                { return nil }
