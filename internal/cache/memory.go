package cache

import (
	"context"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Store backed by a sharded concurrent map. Entries
// are replaced whole on Set, never mutated in place. A background janitor
// sweeps expired entries so the map does not grow without bound; reads never
// depend on the janitor, expiry is always checked on Get.
type Memory struct {
	entries *xsync.MapOf[string, memoryEntry]
	now     func() time.Time
	stop    chan struct{}
}

type memoryConfig struct {
	now             func() time.Time
	janitorInterval time.Duration
}

// MemoryOption customizes a Memory store.
type MemoryOption func(*memoryConfig)

// WithClock replaces the time source. Tests use it to cross TTL boundaries
// deterministically.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *memoryConfig) {
		c.now = now
	}
}

// WithJanitorInterval sets how often expired entries are swept.
// Zero disables the janitor.
func WithJanitorInterval(d time.Duration) MemoryOption {
	return func(c *memoryConfig) {
		c.janitorInterval = d
	}
}

// NewMemory creates an in-process cache store. The default janitor interval
// is one minute.
func NewMemory(opts ...MemoryOption) *Memory {
	cfg := memoryConfig{
		now:             time.Now,
		janitorInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Memory{
		entries: xsync.NewMapOf[string, memoryEntry](),
		now:     cfg.now,
		stop:    make(chan struct{}),
	}

	if cfg.janitorInterval > 0 {
		go m.janitor(cfg.janitorInterval)
	}

	return m
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool) {
	e, ok := m.entries.Load(key)
	if !ok {
		return nil, false
	}
	// equality counts as expired
	if !m.now().Before(e.expiresAt) {
		m.entries.Delete(key)
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	// the store owns the payload; copy so callers cannot mutate it afterwards
	v := make([]byte, len(value))
	copy(v, value)
	m.entries.Store(key, memoryEntry{value: v, expiresAt: m.now().Add(ttl)})
}

func (m *Memory) Invalidate(ctx context.Context, key string) {
	m.entries.Delete(key)
}

func (m *Memory) InvalidatePrefix(ctx context.Context, prefix string) {
	m.entries.Range(func(key string, _ memoryEntry) bool {
		if strings.HasPrefix(key, prefix) {
			m.entries.Delete(key)
		}
		return true
	})
}

// Close stops the janitor.
func (m *Memory) Close() {
	close(m.stop)
}

func (m *Memory) janitor(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			now := m.now()
			m.entries.Range(func(key string, e memoryEntry) bool {
				if !now.Before(e.expiresAt) {
					m.entries.Delete(key)
				}
				return true
			})
		}
	}
}
