package blocklist

import (
	"context"
	"sync"
	"time"
)

// MemoryBlocklist is an in-process Blocklist for tests and single-node dev runs.
// Entries expire lazily on lookup.
type MemoryBlocklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemory() *MemoryBlocklist {
	return &MemoryBlocklist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (b *MemoryBlocklist) Add(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[jti] = b.now().Add(ttl)
	return nil
}

func (b *MemoryBlocklist) Contains(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	deadline, ok := b.entries[jti]
	if !ok {
		return false, nil
	}

	if b.now().After(deadline) {
		delete(b.entries, jti)
		return false, nil
	}

	return true, nil
}
