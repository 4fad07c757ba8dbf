package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"mission-quiz-service/internal/app"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Sessions stay in process; Redis only carries a liveness marker per player
// (player:session:{playerID}) that expires after ttl. Lookups refresh the marker
// at most once per half ttl.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	clock    func() time.Time
	mu       sync.RWMutex
	sessions map[string]*app.Session
	touched  map[string]time.Time
}

const markerTimeout = 250 * time.Millisecond

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]*app.Session),
		touched:  make(map[string]time.Time),
	}
}

func (s *SessionStore) GetOrCreate(playerID string) *app.Session {
	s.mu.Lock()
	session, ok := s.sessions[playerID]
	if !ok {
		session = app.NewSessionWithClock(s.clock)
		s.sessions[playerID] = session
		delete(s.touched, playerID)
	}
	s.mu.Unlock()
	s.touch(playerID)
	return session
}

func (s *SessionStore) Get(playerID string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[playerID]
	s.mu.RUnlock()
	if ok {
		s.touch(playerID)
	}
	return session, ok
}

func (s *SessionStore) Delete(playerID string) {
	s.mu.Lock()
	delete(s.sessions, playerID)
	delete(s.touched, playerID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()
	_ = s.client.Del(ctx, s.key(playerID)).Err()
}

// Online reports whether any instance has seen the player within ttl.
func (s *SessionStore) Online(ctx context.Context, playerID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(playerID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// touch writes the best-effort liveness marker unless it was written within half the ttl.
func (s *SessionStore) touch(playerID string) {
	now := s.clock()
	s.mu.Lock()
	if last, ok := s.touched[playerID]; ok && now.Sub(last) < s.ttl/2 {
		s.mu.Unlock()
		return
	}
	s.touched[playerID] = now
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()
	_ = s.client.Set(ctx, s.key(playerID), now.UTC().Format(time.RFC3339), s.ttl).Err()
}

func (s *SessionStore) key(playerID string) string {
	return "player:session:" + playerID
}
