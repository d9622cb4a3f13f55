// Package session keeps per-client state server side and binds it to a signed cookie.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/mahalaxmi-group/site-api/shared/domain"
	"github.com/mahalaxmi-group/site-api/shared/logger"
)

type entry struct {
	createdAt    time.Time
	lastSubmitAt time.Time
	admin        domain.AdminSession
	lastSeen     time.Time
}

// Store is an in-memory session table with an idle timeout.
// It hands out copies so concurrent requests of one client never share a *domain.Session.
type Store struct {
	mu      sync.Mutex
	entries map[domain.SessionId]*entry
	idleTTL time.Duration
	now     func() time.Time
}

func NewStore(idleTTL time.Duration) *Store {
	return &Store{
		entries: make(map[domain.SessionId]*entry),
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Get returns the stored session and refreshes its idle timer.
func (s *Store) Get(id domain.SessionId) (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(e.lastSeen) > s.idleTTL {
		delete(s.entries, id)
		return nil, false
	}
	e.lastSeen = now

	return &domain.Session{
		Id:           id,
		CreatedAt:    e.createdAt,
		LastSubmitAt: e.lastSubmitAt,
		Admin:        e.admin,
	}, true
}

func (s *Store) Save(sess *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[sess.Id] = &entry{
		createdAt:    sess.CreatedAt,
		lastSubmitAt: sess.LastSubmitAt,
		admin:        sess.Admin,
		lastSeen:     s.now(),
	}
}

func (s *Store) Delete(id domain.SessionId) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops every session idle for longer than the TTL and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) > s.idleTTL {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// StartBackgroundCleanup sweeps the store every interval until ctx is cancelled.
func (s *Store) StartBackgroundCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	logger.Log.Info("started session cleanup", "interval", interval, "idle_ttl", s.idleTTL)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := s.Sweep(); removed > 0 {
					logger.Log.Debug("expired sessions removed", "count", removed, "remaining", s.Len())
				}
			case <-ctx.Done():
				logger.Log.Info("session cleanup shutting down")
				return
			}
		}
	}()
}
