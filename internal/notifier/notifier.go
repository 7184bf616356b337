package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/raventech75/suivi-clients-sub000/internal/lib/logger/sl"
	"github.com/raventech75/suivi-clients-sub000/internal/metrics"
)

// Типы исходящих уведомлений. Конверт всегда {"type": ..., payload...}.
const (
	EventInvite       = "invite"
	EventStepUpdate   = "step_update"
	EventNewMessage   = "new_message"
	EventInternalChat = "internal_chat"
)

// Notifier отправляет события во внешний webhook. Отправка best-effort:
// ошибка логируется и гасится, вызывающий код её никогда не видит, потому
// что запись в базу к этому моменту уже состоялась.
type Notifier interface {
	Notify(ctx context.Context, eventType string, payload map[string]interface{})
}

type WebhookNotifier struct {
	log     *slog.Logger
	client  *http.Client
	url     string
}

func New(log *slog.Logger, url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &WebhookNotifier{
		log:    log,
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, eventType string, payload map[string]interface{}) {
	const op = "notifier.Notify"

	log := n.log.With(
		slog.String("op", op),
		slog.String("type", eventType),
	)

	if n.url == "" {
		return
	}

	envelope := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		envelope[k] = v
	}
	envelope["type"] = eventType

	body, err := json.Marshal(envelope)
	if err != nil {
		log.Error("failed to marshal webhook payload", sl.Err(err))
		metrics.WebhookDeliveries.WithLabelValues(eventType, "error").Inc()
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		log.Error("failed to build webhook request", sl.Err(err))
		metrics.WebhookDeliveries.WithLabelValues(eventType, "error").Inc()
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		log.Warn("webhook delivery failed", sl.Err(err))
		metrics.WebhookDeliveries.WithLabelValues(eventType, "error").Inc()
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Warn("webhook endpoint returned error", slog.String("status", fmt.Sprint(resp.StatusCode)))
		metrics.WebhookDeliveries.WithLabelValues(eventType, "error").Inc()
		return
	}

	metrics.WebhookDeliveries.WithLabelValues(eventType, "ok").Inc()
}

// Noop заглушка для тестов и окружений без настроенного webhook.
type Noop struct{}

func (Noop) Notify(context.Context, string, map[string]interface{}) {}
