package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// EventRecorder logs domain events and counts them per type.
type EventRecorder struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewEventRecorder creates the recorder. metrics may be nil.
func NewEventRecorder(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *EventRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventRecorder{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to every event type.
func (r *EventRecorder) RegisterHandlers() {
	if r.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		r.dispatcher.Subscribe(eventType, r.handle)
	}
}

func (r *EventRecorder) handle(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Time("timestamp", event.Timestamp),
	}
	if event.TicketID != 0 {
		fields = append(fields, zap.Int64("ticket_id", event.TicketID))
	}
	if event.UserID != 0 {
		fields = append(fields, zap.Int64("user_id", event.UserID))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	r.logger.Info("domain event", fields...)
	r.metrics.RecordEvent(string(event.Type))
	return nil
}
