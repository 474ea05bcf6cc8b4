package wallet

import (
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Keys of the session store.
const (
	storeKey = "c13.store"
	cacheKey = "c13.cache"
)

// Session is the persisted part of a wallet connection.
type Session struct {
	ConnectorID string
	Snapshot    Snapshot
}

// SessionStore keeps the last wallet session and its cached balance for a
// limited time.
type SessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewSessionStore creates a store whose entries expire after ttl. A
// non-positive ttl keeps entries until cleared.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	cleanup := ttl
	if cleanup == cache.NoExpiration {
		cleanup = 0
	}
	return &SessionStore{cache: cache.New(ttl, cleanup), ttl: ttl}
}

// Save records the session.
func (s *SessionStore) Save(sess Session) {
	s.cache.Set(storeKey, sess, cache.DefaultExpiration)
}

// Load returns the recorded session, if any.
func (s *SessionStore) Load() (Session, bool) {
	x, found := s.cache.Get(storeKey)
	if !found {
		return Session{}, false
	}
	sess, ok := x.(Session)
	if !ok {
		zap.L().Warn("session store data type mismatch", zap.String("key", storeKey))
		return Session{}, false
	}
	return sess, true
}

// SaveBalance caches the last formatted native balance.
func (s *SessionStore) SaveBalance(balance string) {
	s.cache.Set(cacheKey, balance, cache.DefaultExpiration)
}

// Balance returns the cached native balance, if any.
func (s *SessionStore) Balance() (string, bool) {
	x, found := s.cache.Get(cacheKey)
	if !found {
		return "", false
	}
	b, ok := x.(string)
	return b, ok
}

// ClearState drops the session and the cached balance.
func (s *SessionStore) ClearState() error {
	s.cache.Delete(storeKey)
	s.cache.Delete(cacheKey)
	return nil
}
