package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"concierge-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
)

type captureSink struct {
	got []Event
	err error
}

func (s *captureSink) Publish(_ context.Context, evt Event) error {
	s.got = append(s.got, evt)
	return s.err
}

func TestNewExchangeEvent(t *testing.T) {
	at := time.Now()
	ok := NewExchangeEvent(false, map[string]interface{}{"backend": "demo"}, at)
	failed := NewExchangeEvent(true, nil, at)

	assert.Equal(t, ExchangeCompleted, ok.EventType())
	assert.Equal(t, "demo", ok.Payload()["backend"])
	assert.Equal(t, at, ok.Timestamp())
	assert.Equal(t, ExchangeFailed, failed.EventType())
}

func TestForwarder(t *testing.T) {
	evt := NewExchangeEvent(false, nil, time.Now())

	t.Run("nil forwarder is a no-op", func(t *testing.T) {
		var f *Forwarder
		f.Forward(context.Background(), evt)
	})

	t.Run("publishes", func(t *testing.T) {
		sink := &captureSink{}
		NewForwarder(sink, logger.NewNopLogger()).Forward(context.Background(), evt)
		assert.Equal(t, []Event{evt}, sink.got)
	})

	t.Run("sink errors are swallowed", func(t *testing.T) {
		sink := &captureSink{err: errors.New("nats down")}
		NewForwarder(sink, logger.NewNopLogger()).Forward(context.Background(), evt)
		assert.Len(t, sink.got, 1)
	})
}
