package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Webhook implementa ports.Alerter con un POST JSON one-way.
// Best-effort: si el webhook está deshabilitado o falla, el aviso
// termina en el log y el ciclo continúa.
type Webhook struct {
	http    *http.Client
	url     string
	enabled bool
}

// NewWebhook crea el alerter. Con enabled=false o URL vacía los avisos
// solo se loguean.
func NewWebhook(url string, enabled bool) *Webhook {
	return &Webhook{
		http:    &http.Client{Timeout: 3 * time.Second},
		url:     url,
		enabled: enabled && url != "",
	}
}

type alertPayload struct {
	Level   string `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Alert envía el aviso al webhook configurado.
func (w *Webhook) Alert(ctx context.Context, title, message string) error {
	if !w.enabled {
		slog.Warn("alert (webhook disabled)", "title", title, "message", message)
		return nil
	}

	b, err := json.Marshal(alertPayload{Level: "WARNING", Title: title, Message: message})
	if err != nil {
		return fmt.Errorf("notify.Webhook.Alert: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("notify.Webhook.Alert: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		slog.Error("failed to send alert", "url", w.url, "err", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		slog.Error("alert webhook rejected", "url", w.url, "status", resp.StatusCode)
	}
	return nil
}
