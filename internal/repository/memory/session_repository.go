package memory

import (
	"time"

	"concierge-be/pkg/store"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Sessions idle for an hour are dropped; expired items are purged every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID.String(), session, cache.DefaultExpiration)
}

// Get returns the session and extends its expiry.
func (r *SessionRepository) Get(sessionID uuid.UUID) (*store.Session, bool) {
	x, found := r.cache.Get(sessionID.String())
	if !found {
		return nil, false
	}
	session := x.(*store.Session)
	session.Touch()
	r.cache.Set(sessionID.String(), session, cache.DefaultExpiration)
	return session, true
}

func (r *SessionRepository) Delete(sessionID uuid.UUID) {
	r.cache.Delete(sessionID.String())
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
