package repository

import (
	"context"
	"sync"
	"time"

	"eventhub/internal/models"
)

type memoryState struct {
	redirectTo string
	expiresAt  time.Time
}

type rateWindow struct {
	count   int
	resetAt time.Time
}

// MemorySessionRepository is the in-process fallback used when Redis is
// unavailable. State does not survive restarts.
type MemorySessionRepository struct {
	mu     sync.Mutex
	states map[string]memoryState
	rates  map[string]rateWindow
	ttl    time.Duration
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	if ttl == 0 {
		ttl = models.OAuthStateTTL * time.Second
	}
	return &MemorySessionRepository{
		states: make(map[string]memoryState),
		rates:  make(map[string]rateWindow),
		ttl:    ttl,
	}
}

func (r *MemorySessionRepository) SetOAuthState(ctx context.Context, state, redirectTo string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state] = memoryState{redirectTo: redirectTo, expiresAt: time.Now().Add(r.ttl)}
	return nil
}

func (r *MemorySessionRepository) ConsumeOAuthState(ctx context.Context, state string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.states[state]
	if !ok {
		return "", false, nil
	}
	delete(r.states, state)

	if time.Now().After(s.expiresAt) {
		return "", false, nil
	}
	return s.redirectTo, true, nil
}

func (r *MemorySessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	w, ok := r.rates[key]
	if !ok || now.After(w.resetAt) {
		r.rates[key] = rateWindow{count: 1, resetAt: now.Add(window)}
		return true, nil
	}

	w.count++
	r.rates[key] = w
	return w.count <= limit, nil
}
