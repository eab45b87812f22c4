package session

import (
	"context"
	"time"

	"github.com/NomadCrew/feedback-collector/types"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore keeps sessions in a bounded, expiring LRU. Sessions are lost
// on restart and evicted oldest-first when maxEntries is reached.
type MemoryStore struct {
	cache *expirable.LRU[string, types.Session]
	ttl   time.Duration
	now   clock
}

func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: expirable.NewLRU[string, types.Session](maxEntries, nil, ttl),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, username string) (*types.Session, error) {
	sess, err := newSession(username, s.ttl, s.now())
	if err != nil {
		return nil, err
	}
	s.cache.Add(sess.ID, *sess)
	return sess, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*types.Session, error) {
	sess, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if sess.Expired(s.now()) {
		s.cache.Remove(id)
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Save re-adds the session. The LRU entry TTL restarts, but Get still
// honours the original ExpiresAt.
func (s *MemoryStore) Save(_ context.Context, sess *types.Session) error {
	if sess.Expired(s.now()) {
		s.cache.Remove(sess.ID)
		return ErrNotFound
	}
	s.cache.Add(sess.ID, *sess)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Remove(id)
	return nil
}

// Len returns the number of sessions held, including ones not yet purged.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
