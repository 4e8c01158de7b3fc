package repository

import (
	"context"
	"sync"
	"time"

	"jobseeker-bot/internal/session/domain"
)

type entry struct {
	session  domain.Session
	lastSeen time.Time
}

// MemoryStore is an in-process Repository. Sessions are lost on restart.
// With a positive ttl, a session untouched for longer than ttl is treated as absent.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[int64]entry
	ttl  time.Duration
	nowF func() time.Time
}

// NewMemoryStore returns an empty store. ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		m:    make(map[int64]entry),
		ttl:  ttl,
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Get returns a copy of the session for userID if present and not expired.
func (s *MemoryStore) Get(ctx context.Context, userID int64) (domain.Session, bool, error) {
	s.mu.RLock()
	e, ok := s.m[userID]
	s.mu.RUnlock()
	if !ok {
		return domain.Session{}, false, nil
	}
	if s.expired(e) {
		s.mu.Lock()
		// A Save may have landed since the read lock was released.
		if cur, ok := s.m[userID]; ok && !s.expired(cur) {
			s.mu.Unlock()
			return clone(cur.session), true, nil
		}
		delete(s.m, userID)
		s.mu.Unlock()
		return domain.Session{}, false, nil
	}
	return clone(e.session), true, nil
}

// Init stores a fresh session for userID, replacing any previous one.
func (s *MemoryStore) Init(ctx context.Context, userID int64) (domain.Session, error) {
	now := s.nowF()
	sess := domain.New(userID, now)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = entry{session: sess, lastSeen: now}
	return clone(sess), nil
}

// Save replaces the stored session.
func (s *MemoryStore) Save(ctx context.Context, sess domain.Session) error {
	now := s.nowF()
	sess.UpdatedAt = now
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sess.UserID] = entry{session: clone(sess), lastSeen: now}
	return nil
}

// Update applies fn under the store lock so concurrent updates for one user do not interleave.
func (s *MemoryStore) Update(ctx context.Context, userID int64, fn func(*domain.Session)) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[userID]
	if !ok || s.expired(e) {
		delete(s.m, userID)
		return domain.Session{}, ErrNotFound
	}
	sess := clone(e.session)
	fn(&sess)
	now := s.nowF()
	sess.UserID = userID
	sess.UpdatedAt = now
	s.m[userID] = entry{session: clone(sess), lastSeen: now}
	return sess, nil
}

func (s *MemoryStore) expired(e entry) bool {
	return s.ttl > 0 && s.nowF().Sub(e.lastSeen) > s.ttl
}

// clone copies the pointer field so callers never share storage with the store.
func clone(sess domain.Session) domain.Session {
	if sess.ProfileImage != nil {
		img := *sess.ProfileImage
		sess.ProfileImage = &img
	}
	return sess
}
