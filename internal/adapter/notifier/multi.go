package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hive-corporation/keyguard/internal/core/ports"
	"github.com/hive-corporation/keyguard/internal/platform/metrics"
)

// MultiNotifier fans a notification out to every channel in order. One
// failing channel does not stop the others.
type MultiNotifier struct {
	channels []ports.Notifier
	logger   *slog.Logger
}

func NewMultiNotifier(logger *slog.Logger, channels ...ports.Notifier) *MultiNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiNotifier{channels: channels, logger: logger}
}

func (m *MultiNotifier) Name() string {
	names := make([]string, len(m.channels))
	for i, ch := range m.channels {
		names[i] = ch.Name()
	}
	return strings.Join(names, ",")
}

func (m *MultiNotifier) Len() int { return len(m.channels) }

// Notify returns the joined errors of all failed channels.
func (m *MultiNotifier) Notify(ctx context.Context, n ports.Notification) error {
	var errs []error
	for _, ch := range m.channels {
		if err := ch.Notify(ctx, n); err != nil {
			m.logger.Error("notification channel failed", "channel", ch.Name(), "error", err)
			metrics.RecordNotification(ch.Name(), "error")
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		metrics.RecordNotification(ch.Name(), "success")
	}
	return errors.Join(errs...)
}
