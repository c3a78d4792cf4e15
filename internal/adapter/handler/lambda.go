package handler

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hive-corporation/keyguard/internal/core/domain"
	"github.com/hive-corporation/keyguard/internal/core/service"
)

// LambdaHandler adapts EventBridge deliveries to the responder.
type LambdaHandler struct {
	responder EventResponder
	logger    *slog.Logger
}

func NewLambdaHandler(responder EventResponder, logger *slog.Logger) *LambdaHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LambdaHandler{responder: responder, logger: logger}
}

// Handle is registered with lambda.Start. A returned error marks the
// invocation as failed so the platform can retry it.
func (h *LambdaHandler) Handle(ctx context.Context, event events.CloudWatchEvent) (service.Response, error) {
	resp, err := h.responder.Respond(ctx, toTriggerEvent(event))
	if err != nil {
		h.logger.Error("invocation failed", "event_id", event.ID, "error", err)
		return service.Response{}, err
	}
	return resp, nil
}

func toTriggerEvent(event events.CloudWatchEvent) domain.TriggerEvent {
	return domain.TriggerEvent{
		ID:         event.ID,
		Source:     event.Source,
		DetailType: event.DetailType,
		Account:    event.AccountID,
		Region:     event.Region,
		Detail:     event.Detail,
	}
}
