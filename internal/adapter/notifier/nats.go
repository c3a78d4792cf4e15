package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/hive-corporation/keyguard/internal/core/domain"
	"github.com/hive-corporation/keyguard/internal/core/ports"
)

// Publisher is the part of *nats.Conn the notifier needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// IncidentEvent is the JSON document published on the event bus.
type IncidentEvent struct {
	Subject  string               `json:"subject"`
	Summary  string               `json:"summary"`
	Severity domain.Severity      `json:"severity,omitempty"`
	Outcome  domain.OutcomeRecord `json:"outcome"`
}

// NATSNotifier publishes one IncidentEvent per incident.
type NATSNotifier struct {
	conn    Publisher
	closer  func()
	subject string
}

// NewNATSNotifier connects to the NATS server at url.
func NewNATSNotifier(url, subject string, logger *slog.Logger) (*NATSNotifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(url,
		nats.Name("keyguard"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}

	logger.Info("connected to nats", "url", url, "subject", subject)

	return &NATSNotifier{conn: conn, closer: conn.Close, subject: subject}, nil
}

// NewNATSNotifierWithPublisher builds a notifier on an existing connection.
func NewNATSNotifierWithPublisher(conn Publisher, subject string) *NATSNotifier {
	return &NATSNotifier{conn: conn, subject: subject}
}

func (n *NATSNotifier) Name() string { return "nats" }

func (n *NATSNotifier) Notify(ctx context.Context, msg ports.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(IncidentEvent{
		Subject:  msg.Subject,
		Summary:  msg.Body,
		Severity: msg.Outcome.Analysis.HighestSeverity(),
		Outcome:  msg.Outcome,
	})
	if err != nil {
		return fmt.Errorf("marshal incident event: %w", err)
	}

	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", n.subject, err)
	}
	return nil
}

func (n *NATSNotifier) Close() {
	if n.closer != nil {
		n.closer()
	}
}
