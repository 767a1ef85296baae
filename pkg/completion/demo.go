package completion

import (
	"context"
	"time"
)

// DemoDelay simulates backend latency in demo mode.
const DemoDelay = 1000 * time.Millisecond

// DemoBackend echoes the user's message after DemoDelay. It never touches the network.
type DemoBackend struct{}

var _ Client = DemoBackend{}

func (DemoBackend) Kind() Kind {
	return KindDemo
}

func (DemoBackend) Complete(ctx context.Context, turn Turn) (string, error) {
	timer := time.NewTimer(DemoDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return Echo(turn.UserMessage), nil
	case <-ctx.Done():
		return "", &BackendError{Kind: KindDemo, Message: ctx.Err().Error(), Err: ctx.Err()}
	}
}

// Echo is the demo reply for message.
func Echo(message string) string {
	return "You said: " + message
}
