package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// WebhookNotifier отправляет события в чат операторов через входящий вебхук.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

// NewWebhookNotifier создаёт новый экземпляр WebhookNotifier.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Notify реализует Notifier.
func (w *WebhookNotifier) Notify(ctx context.Context, to Recipient, eventType string, payload map[string]any) error {
	eventID := uuid.New().String()
	body, err := json.Marshal(struct {
		EventID string `json:"eventId"`
		SentAt  string `json:"sentAt"`
		Event
	}{
		EventID: eventID,
		SentAt:  time.Now().UTC().Format(time.RFC3339),
		Event:   Event{Type: eventType, Recipient: to, Payload: payload},
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-ID", eventID)
	req.Header.Set("X-Event-Type", eventType)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}
	return nil
}
