package events

import (
	"context"
	"time"

	"concierge-be/internal/pkg/logger"
)

const (
	ExchangeCompleted = "EXCHANGE_COMPLETED"
	ExchangeFailed    = "EXCHANGE_FAILED"
)

// NewExchangeEvent picks the event type from whether the exchange failed.
func NewExchangeEvent(failed bool, data map[string]interface{}, at time.Time) BaseEvent {
	eventType := ExchangeCompleted
	if failed {
		eventType = ExchangeFailed
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: at}
}

// Sink is anything events can be published to, such as the NATS publisher.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Forwarder publishes to a Sink and only logs failures; a nil Sink is a no-op.
type Forwarder struct {
	sink   Sink
	logger logger.ILogger
}

func NewForwarder(sink Sink, log logger.ILogger) *Forwarder {
	return &Forwarder{sink: sink, logger: log}
}

func (f *Forwarder) Forward(ctx context.Context, evt Event) {
	if f == nil || f.sink == nil {
		return
	}
	if err := f.sink.Publish(ctx, evt); err != nil {
		f.logger.Error("EVENTS", "Failed to forward "+evt.EventType()+" event", map[string]interface{}{"error": err.Error()})
	}
}
