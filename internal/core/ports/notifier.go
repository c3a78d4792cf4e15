package ports

import (
	"context"

	"github.com/hive-corporation/keyguard/internal/core/domain"
)

// Notifier defines the interface for sending incident summaries to external systems
type Notifier interface {
	// Name identifies the channel in logs and metrics (sns, slack, nats)
	Name() string

	// Notify delivers the notification. Callers treat errors as best effort.
	Notify(ctx context.Context, n Notification) error
}

// Notification carries the rendered summary plus the structured outcome so
// channels with richer formats (Slack blocks, JSON events) can use either.
type Notification struct {
	Subject string
	Body    string
	Outcome domain.OutcomeRecord
}
