// Package alerting delivers webhook notifications when a node or instance
// transitions into a failure state (C14), adapted from the teacher's
// webhook notification sender.
package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fleetd-sh/fleetd/shared/types"
)

// Kind identifies the category of alert.
type Kind = types.AlertKind

const (
	KindNodeFailing    = types.AlertNodeFailing
	KindNodeFailed     = types.AlertNodeFailed
	KindInstanceFailed = types.AlertInstanceFailed
)

// Event is the payload delivered to every webhook subscriber.
type Event = types.AlertEvent

// Notifier posts Events to a static list of webhook URLs. Delivery is
// fire-and-forget with a bounded linear-backoff retry; failures are logged
// but never fatal to the Controller.
type Notifier struct {
	client   *http.Client
	webhooks []string
	logger   *zap.Logger
}

// New returns a Notifier posting to webhooks.
func New(webhooks []string, logger *zap.Logger) *Notifier {
	return &Notifier{
		client:   &http.Client{Timeout: 10 * time.Second},
		webhooks: webhooks,
		logger:   logger.Named("alerting"),
	}
}

// Fire delivers ev to every configured webhook. Each delivery runs in its
// own goroutine so a slow or unreachable subscriber cannot block the caller
// (the node/instance status forwarding path).
func (n *Notifier) Fire(ev Event) {
	if len(n.webhooks) == 0 {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		n.logger.Error("failed to marshal alert event", zap.Error(err))
		return
	}
	for _, url := range n.webhooks {
		go n.deliver(url, body, ev)
	}
}

const (
	maxAttempts  = 3
	retryBackoff = 2 * time.Second
)

// deliver attempts up to maxAttempts POSTs with a linear backoff between
// attempts, logging the outcome but never returning an error to the caller.
func (n *Notifier) deliver(url string, body []byte, ev Event) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := n.post(ctx, url, body)
		cancel()
		if err == nil {
			return
		}
		lastErr = err
		if attempt < maxAttempts {
			time.Sleep(time.Duration(attempt) * retryBackoff)
		}
	}
	n.logger.Warn("alert webhook delivery failed",
		zap.String("url", url),
		zap.String("kind", string(ev.Kind)),
		zap.String("subject_id", ev.SubjectID),
		zap.Error(lastErr),
	)
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "fleetd-controller/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned non-2xx status %d", resp.StatusCode)
	}
	return nil
}
