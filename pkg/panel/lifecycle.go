package panel

import (
	"sync"
	"time"

	"concierge-be/internal/pkg/logger"
)

const module = "PanelLifecycle"

// CloseDelay must equal the CSS transition duration of the panel.
const CloseDelay = 500 * time.Millisecond

// Visibility of the panel.
type Visibility string

const (
	Hidden  Visibility = "hidden"
	Opening Visibility = "opening"
	Open    Visibility = "open"
	Closing Visibility = "closing"
)

// Surface is what the lifecycle needs from the host's panel element.
type Surface interface {
	// SetPaintable adds the container to (or removes it from) the layout.
	SetPaintable(paintable bool)
	// SetOpen applies or removes the animated "open" visual state.
	SetOpen(open bool)
	// RequestFrame runs fn at the next paint opportunity, never synchronously.
	RequestFrame(fn func())
}

// Transition observers see every visibility change in order.
type TransitionFunc func(from, to Visibility)

type Option func(*Lifecycle)

func WithLogger(log logger.ILogger) Option {
	return func(l *Lifecycle) {
		l.logger = log
	}
}

// WithAfterFunc replaces time.AfterFunc for the close delay.
func WithAfterFunc(fn func(d time.Duration, f func())) Option {
	return func(l *Lifecycle) {
		l.afterFunc = fn
	}
}

// Lifecycle is the Hidden -> Opening -> Open -> Closing -> Hidden state machine.
type Lifecycle struct {
	mu        sync.Mutex
	state     Visibility
	surface   Surface
	observers []TransitionFunc
	afterFunc func(d time.Duration, f func())
	logger    logger.ILogger
}

func New(surface Surface, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		state:   Hidden,
		surface: surface,
		logger:  logger.NewNopLogger(),
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Observe registers fn for every later transition.
func (l *Lifecycle) Observe(fn TransitionFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, fn)
}

func (l *Lifecycle) State() Visibility {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Open makes the container paintable now and applies the open state on the
// next frame, so the transition animates instead of jumping. No-op unless Hidden.
func (l *Lifecycle) Open() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Hidden {
		return
	}

	l.surface.SetPaintable(true)
	l.set(Opening)

	l.surface.RequestFrame(func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.state != Opening {
			return
		}
		l.surface.SetOpen(true)
		l.set(Open)
	})
}

// Close removes the open state now and hides the container after CloseDelay.
// No-op unless Open.
func (l *Lifecycle) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Open {
		return
	}

	l.surface.SetOpen(false)
	l.set(Closing)

	l.afterFunc(CloseDelay, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.state != Closing {
			return
		}
		l.surface.SetPaintable(false)
		l.set(Hidden)
	})
}

// OverlayClicked handles a click outside the panel.
func (l *Lifecycle) OverlayClicked() {
	l.Close()
}

// set records a transition. Callers hold l.mu.
func (l *Lifecycle) set(to Visibility) {
	from := l.state
	l.state = to
	l.logger.Debug(module, "Panel transition", map[string]interface{}{
		"from": string(from),
		"to":   string(to),
	})
	for _, fn := range l.observers {
		fn(from, to)
	}
}
