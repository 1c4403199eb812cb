package reminder

import (
	"context"
	"sync"
	"time"
)

// MemoryGuardStore keeps guard keys in process memory. Suitable for a single
// instance (mirrors the browser client's localStorage guard); multi-instance
// deployments use the DynamoDB-backed store instead.
type MemoryGuardStore struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewMemoryGuardStore() *MemoryGuardStore {
	return &MemoryGuardStore{keys: make(map[string]struct{})}
}

func (g *MemoryGuardStore) Acquire(_ context.Context, key string, _ time.Time) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.keys[key]; held {
		return false, nil
	}
	g.keys[key] = struct{}{}
	return true, nil
}
