package cache

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = time.Minute

type MemoryCache struct {
	mu     sync.RWMutex
	data   map[string]memoryEntry
	stopCh chan struct{}
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	mc := &MemoryCache{
		data:   make(map[string]memoryEntry),
		stopCh: make(chan struct{}),
	}

	go mc.sweepLoop()

	return mc
}

func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	entry, ok := mc.data[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.data[key] = memoryEntry{
		value:     valueCopy,
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}

func (mc *MemoryCache) Delete(ctx context.Context, key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	delete(mc.data, key)
	return nil
}

func (mc *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	entry, ok := mc.data[key]
	return ok && time.Now().Before(entry.expiresAt), nil
}

func (mc *MemoryCache) Close() error {
	close(mc.stopCh)
	return nil
}

func (mc *MemoryCache) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.sweep()
		case <-mc.stopCh:
			return
		}
	}
}

func (mc *MemoryCache) sweep() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := time.Now()
	for key, entry := range mc.data {
		if now.After(entry.expiresAt) {
			delete(mc.data, key)
		}
	}
}
