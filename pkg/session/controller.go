package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"concierge-be/internal/pkg/logger"
	"concierge-be/pkg/completion"

	"github.com/google/uuid"
)

const module = "SessionController"

// TurnFunc builds the completion turn for one accepted user message.
type TurnFunc func(ctx context.Context, userMessage string) completion.Turn

// Exchange describes one settled submission.
type Exchange struct {
	ID           uuid.UUID
	UserMessage  string
	Reply        string
	Err          error
	Backend      completion.Kind
	PromptDigest string
	StartedAt    time.Time
	Duration     time.Duration
}

func (e Exchange) Failed() bool {
	return e.Err != nil
}

// Observer is notified after every settled exchange, outside the controller lock.
type Observer func(Exchange)

type Option func(*Controller)

func WithLogger(log logger.ILogger) Option {
	return func(c *Controller) {
		c.logger = log
	}
}

func WithObserver(obs Observer) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, obs)
	}
}

// WithTurnFunc replaces the default turn builder, which only sets UserMessage.
func WithTurnFunc(fn TurnFunc) Option {
	return func(c *Controller) {
		c.turn = fn
	}
}

// Controller owns the conversation and runs at most one exchange at a time.
type Controller struct {
	mu        sync.Mutex
	state     State
	renderer  Renderer
	client    completion.Client
	turn      TurnFunc
	observers []Observer
	logger    logger.ILogger
}

func NewController(renderer Renderer, client completion.Client, opts ...Option) *Controller {
	if renderer == nil {
		renderer = NopRenderer{}
	}
	c := &Controller{
		renderer: renderer,
		client:   client,
		logger:   logger.NewNopLogger(),
		turn: func(_ context.Context, userMessage string) completion.Turn {
			return completion.Turn{UserMessage: userMessage}
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// dispatch applies ev and executes its render effects. Callers hold c.mu.
func (c *Controller) dispatch(ev Event) []Effect {
	next, effects := Transition(c.state, ev)
	c.state = next
	for _, e := range effects {
		Apply(c.renderer, e)
	}
	return effects
}

// Materialize appends the greeting. Only the first call has any effect.
func (c *Controller) Materialize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.dispatch(Greet{})) > 0 {
		c.logger.Debug(module, "Interface materialized", nil)
	}
}

// Input records the host's input buffer and toggles the submit control.
func (c *Controller) Input(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatch(InputChanged{Text: text})
}

// Submit starts an exchange for text and blocks until it settles. It returns
// false without doing anything when text is blank or an exchange is already
// in flight.
func (c *Controller) Submit(ctx context.Context, text string) bool {
	c.mu.Lock()
	effects := c.dispatch(Submit{Text: text})
	c.mu.Unlock()

	var request *RequestCompletion
	for _, e := range effects {
		if rc, ok := e.(RequestCompletion); ok {
			request = &rc
		}
	}
	if request == nil {
		return false
	}

	c.exchange(ctx, request.Text)
	return true
}

func (c *Controller) exchange(ctx context.Context, text string) {
	ex := Exchange{
		ID:          uuid.New(),
		UserMessage: text,
		StartedAt:   time.Now(),
	}
	if c.client != nil {
		ex.Backend = c.client.Kind()
	}

	// Settlement runs even if building the turn or the client call panics.
	defer func() {
		if r := recover(); r != nil {
			ex.Err = &completion.BackendError{Kind: ex.Backend, Message: fmt.Sprintf("completion panicked: %v", r)}
		}
		ex.Duration = time.Since(ex.StartedAt)

		c.mu.Lock()
		if ex.Err != nil {
			c.logger.Error(module, "Exchange failed", map[string]interface{}{
				"exchange_id": ex.ID.String(),
				"backend":     string(ex.Backend),
				"error":       ex.Err.Error(),
			})
			c.dispatch(Failed{Err: ex.Err})
		} else {
			c.logger.Info(module, "Exchange completed", map[string]interface{}{
				"exchange_id": ex.ID.String(),
				"backend":     string(ex.Backend),
				"duration_ms": ex.Duration.Milliseconds(),
			})
			c.dispatch(Succeeded{Text: ex.Reply})
		}
		observers := c.observers
		c.mu.Unlock()

		for _, obs := range observers {
			obs(ex)
		}
	}()

	if c.client == nil {
		ex.Err = &completion.BackendError{Message: "no completion backend configured"}
		return
	}

	turn := c.turn(ctx, text)
	ex.PromptDigest = Digest(turn.ComposedPrompt)
	ex.Reply, ex.Err = c.client.Complete(ctx, turn)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Conversation = append([]Message(nil), c.state.Conversation...)
	return s
}

// Pending reports whether an exchange is in flight.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Pending
}

// Digest is the hex sha256 of a composed prompt, empty for an empty prompt.
func Digest(prompt string) string {
	if prompt == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
