package store

import (
	"sync"
	"time"

	"concierge-be/pkg/concierge"

	"github.com/google/uuid"
)

// Session is a widget hosted by the server on behalf of a remote client.
type Session struct {
	ID        uuid.UUID
	Widget    *concierge.Widget
	CreatedAt time.Time

	mu         sync.Mutex
	lastActive time.Time
}

func NewSession(id uuid.UUID, widget *concierge.Widget) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Widget:     widget,
		CreatedAt:  now,
		lastActive: now,
	}
}

func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
