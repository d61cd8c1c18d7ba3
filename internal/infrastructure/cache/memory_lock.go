package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryGenerationLock serializes generation within one process. It is used when
// Redis is disabled.
type InMemoryGenerationLock struct {
	mu    sync.Mutex
	held  map[string]heldLock
	clock func() time.Time
}

type heldLock struct {
	token   string
	expires time.Time
}

// NewInMemoryGenerationLock creates an empty process-local lock
func NewInMemoryGenerationLock() *InMemoryGenerationLock {
	return &InMemoryGenerationLock{held: make(map[string]heldLock), clock: time.Now}
}

// Acquire takes key for ttl unless an unexpired holder exists
func (l *InMemoryGenerationLock) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if h, ok := l.held[key]; ok && now.Before(h.expires) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[key] = heldLock{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

// Release frees key if token still owns it
func (l *InMemoryGenerationLock) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if h, ok := l.held[key]; ok && h.token == token {
		delete(l.held, key)
	}
	return nil
}
