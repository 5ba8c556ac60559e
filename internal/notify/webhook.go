package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ticker-alerts/internal/errors"
	"ticker-alerts/internal/models"
)

// WebhookNotifier posts triggered alerts to the notification service.
type WebhookNotifier struct {
	url       string
	authToken string
	client    *http.Client
}

// WebhookConfig holds the notification service endpoint settings.
type WebhookConfig struct {
	URL       string
	AuthToken string
	Timeout   time.Duration
}

// NewWebhookNotifier creates a webhook channel for cfg.URL.
func NewWebhookNotifier(cfg WebhookConfig) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:       cfg.URL,
		authToken: cfg.AuthToken,
		client:    &http.Client{Timeout: timeout},
	}
}

// webhookPayload is the wire shape the notification service expects.
type webhookPayload struct {
	AlertID      string                `json:"alertId"`
	AlertList    []models.TriggerEvent `json:"alertList"`
	RecipientRef string                `json:"recipientRef"`
	Frequency    string                `json:"frequency"`
	Date         string                `json:"date"` // MM-DD-YYYY
}

// Send posts the delivery as JSON. Non-2xx responses become a DeliveryError.
func (w *WebhookNotifier) Send(ctx context.Context, d Delivery) error {
	events := make([]models.TriggerEvent, len(d.Events))
	for i, ev := range d.Events {
		// The service renders messages on a single line.
		ev.Message = strings.ReplaceAll(ev.Message, "\n", " ")
		events[i] = ev
	}

	at := d.At
	if at.IsZero() {
		at = time.Now()
	}

	payload := webhookPayload{
		AlertID:      d.AlertID,
		AlertList:    events,
		RecipientRef: d.Recipient,
		Frequency:    d.Frequency,
		Date:         at.Format("01-02-2006"),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.NewDeliveryError(d.AlertID, d.Recipient, 0,
			errors.Wrap(err, "marshaling notification payload"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return errors.NewDeliveryError(d.AlertID, d.Recipient, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+w.authToken)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return errors.NewDeliveryError(d.AlertID, d.Recipient, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Body text helps diagnose rejections; capped to keep logs sane.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.NewDeliveryError(d.AlertID, d.Recipient, resp.StatusCode,
			fmt.Errorf("notification service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}
	return nil
}
