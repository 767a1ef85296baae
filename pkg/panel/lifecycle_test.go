package panel

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeSurface struct {
	mu      sync.Mutex
	calls   []string
	pending []func()
}

func (s *fakeSurface) SetPaintable(p bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p {
		s.calls = append(s.calls, "paintable")
	} else {
		s.calls = append(s.calls, "unpaintable")
	}
}

func (s *fakeSurface) SetOpen(o bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o {
		s.calls = append(s.calls, "open")
	} else {
		s.calls = append(s.calls, "closed")
	}
}

func (s *fakeSurface) RequestFrame(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, fn)
}

// flush runs queued frame callbacks the way a paint loop would.
func (s *fakeSurface) flush() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

func (s *fakeSurface) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

type fakeTimer struct {
	delays []time.Duration
	fns    []func()
}

func (f *fakeTimer) after(d time.Duration, fn func()) {
	f.delays = append(f.delays, d)
	f.fns = append(f.fns, fn)
}

func (f *fakeTimer) fire() {
	fns := f.fns
	f.fns = nil
	for _, fn := range fns {
		fn()
	}
}

func TestLifecycle_OpenAppliesStateOnNextFrame(t *testing.T) {
	surface := &fakeSurface{}
	l := New(surface)

	l.Open()
	assert.Equal(t, Opening, l.State())
	assert.Equal(t, []string{"paintable"}, surface.Calls())

	surface.flush()
	assert.Equal(t, Open, l.State())
	assert.Equal(t, []string{"paintable", "open"}, surface.Calls())
}

func TestLifecycle_CloseHidesAfterDelay(t *testing.T) {
	surface := &fakeSurface{}
	timer := &fakeTimer{}
	l := New(surface, WithAfterFunc(timer.after))

	l.Open()
	surface.flush()
	l.Close()

	assert.Equal(t, Closing, l.State())
	assert.Equal(t, []string{"paintable", "open", "closed"}, surface.Calls())
	require.Equal(t, []time.Duration{CloseDelay}, timer.delays)

	timer.fire()
	assert.Equal(t, Hidden, l.State())
	assert.Equal(t, []string{"paintable", "open", "closed", "unpaintable"}, surface.Calls())
}

func TestLifecycle_IgnoresOutOfOrderCommands(t *testing.T) {
	tests := []struct {
		name      string
		run       func(l *Lifecycle, s *fakeSurface, timer *fakeTimer)
		wantState Visibility
		wantCalls []string
	}{
		{
			name:      "close while hidden",
			run:       func(l *Lifecycle, s *fakeSurface, timer *fakeTimer) { l.Close() },
			wantState: Hidden,
		},
		{
			name: "open twice",
			run: func(l *Lifecycle, s *fakeSurface, timer *fakeTimer) {
				l.Open()
				l.Open()
				s.flush()
				l.Open()
			},
			wantState: Open,
			wantCalls: []string{"paintable", "open"},
		},
		{
			name: "close while opening",
			run: func(l *Lifecycle, s *fakeSurface, timer *fakeTimer) {
				l.Open()
				l.Close()
				s.flush()
			},
			wantState: Open,
			wantCalls: []string{"paintable", "open"},
		},
		{
			name: "open while closing",
			run: func(l *Lifecycle, s *fakeSurface, timer *fakeTimer) {
				l.Open()
				s.flush()
				l.Close()
				l.Open()
				timer.fire()
			},
			wantState: Hidden,
			wantCalls: []string{"paintable", "open", "closed", "unpaintable"},
		},
		{
			name: "overlay click closes",
			run: func(l *Lifecycle, s *fakeSurface, timer *fakeTimer) {
				l.Open()
				s.flush()
				l.OverlayClicked()
				l.OverlayClicked()
				timer.fire()
			},
			wantState: Hidden,
			wantCalls: []string{"paintable", "open", "closed", "unpaintable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface := &fakeSurface{}
			timer := &fakeTimer{}
			l := New(surface, WithAfterFunc(timer.after))

			tt.run(l, surface, timer)

			assert.Equal(t, tt.wantState, l.State())
			assert.Equal(t, tt.wantCalls, surface.Calls())
		})
	}
}

func TestLifecycle_ObserversSeeEveryTransition(t *testing.T) {
	surface := &fakeSurface{}
	timer := &fakeTimer{}
	l := New(surface, WithAfterFunc(timer.after))

	var seen []string
	l.Observe(func(from, to Visibility) { seen = append(seen, string(from)+">"+string(to)) })

	l.Open()
	surface.flush()
	l.Close()
	timer.fire()

	assert.Equal(t, []string{"hidden>opening", "opening>open", "open>closing", "closing>hidden"}, seen)
}

type realFrameSurface struct {
	fakeSurface
}

func (s *realFrameSurface) RequestFrame(fn func()) {
	NextFrame(fn)
}

func TestLifecycle_RealTimers(t *testing.T) {
	defer goleak.VerifyNone(t)

	surface := &realFrameSurface{}
	l := New(surface)

	l.Open()
	assert.Eventually(t, func() bool { return l.State() == Open }, time.Second, FrameInterval)

	start := time.Now()
	l.Close()
	assert.Eventually(t, func() bool { return l.State() == Hidden }, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), CloseDelay)
}
