package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shuffle/internal/config"
)

const userAgent = "Shuffle/0.1.0"

// Service defines the notification surface used by batch runs.
type Service interface {
	NotifyBatchStarted(ctx context.Context, source string, count int) error
	NotifyBatchCompleted(ctx context.Context, summary Summary) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// Summary carries the counts reported when a batch finishes.
type Summary struct {
	Source    string
	Succeeded int
	Failed    int
	NotFound  int
	Cancelled bool
	Duration  time.Duration
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyBatchStarted(ctx context.Context, source string, count int) error {
	message := fmt.Sprintf("Started downloading %d items", count)
	if source = strings.TrimSpace(source); source != "" {
		message = fmt.Sprintf("%s from %s", message, source)
	}
	data := payload{
		title:   "Shuffle - Batch Started",
		message: message,
		tags:    []string{"shuffle", "batch", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, summary Summary) error {
	duration := summary.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()

	total := summary.Succeeded + summary.Failed + summary.NotFound
	var title string
	switch {
	case summary.Cancelled:
		title = "Shuffle - Batch Cancelled"
	case summary.Succeeded == total && total > 0:
		title = "Shuffle - Batch Complete"
	case summary.Succeeded > 0:
		title = "Shuffle - Batch Complete (with errors)"
	default:
		title = "Shuffle - Batch Failed"
	}
	message := fmt.Sprintf("%d of %d downloaded, %d failed, %d not found in %s",
		summary.Succeeded, total, summary.Failed, summary.NotFound, durationText)
	if source := strings.TrimSpace(summary.Source); source != "" {
		message = fmt.Sprintf("%s\nSource: %s", message, source)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"shuffle", "batch", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" during ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Shuffle - Error",
		message:  builder.String(),
		tags:     []string{"shuffle", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Shuffle - Test",
		message:  "Notification system test",
		tags:     []string{"shuffle", "test"},
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

func (noopService) NotifyBatchStarted(context.Context, string, int) error { return nil }
func (noopService) NotifyBatchCompleted(context.Context, Summary) error   { return nil }
func (noopService) NotifyError(context.Context, error, string) error      { return nil }
func (noopService) TestNotification(context.Context) error                { return nil }
