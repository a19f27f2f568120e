package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// webhookTimeout bounds each webhook POST independently of the caller's
// context, so a hung sink fails the send instead of stalling it.
const webhookTimeout = 30 * time.Second

// DiscordWebhook announces entries by posting to a Discord webhook URL.
type DiscordWebhook struct {
	httpClient *http.Client
	webhookURL string
	logger     *slog.Logger
}

func NewDiscordWebhook(webhookURL string, logger *slog.Logger) *DiscordWebhook {
	return &DiscordWebhook{
		httpClient: &http.Client{Timeout: webhookTimeout},
		webhookURL: webhookURL,
		logger:     logger.With("notifier", "discord"),
	}
}

type webhookPayload struct {
	Content string `json:"content"`
}

// Send posts one announcement. Any non-2xx response is a send failure; the
// caller leaves the ledger record unposted and moves on.
func (d *DiscordWebhook) Send(ctx context.Context, sourceName, title, link string) error {
	body, err := json.Marshal(webhookPayload{
		Content: Render(sourceName, title, link),
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	d.logger.Debug("announcement delivered", "title", title)

	return nil
}

// Close implements the sink lifecycle; a webhook holds no connection state.
func (d *DiscordWebhook) Close() error {
	return nil
}
