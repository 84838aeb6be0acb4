package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryRequestLimiter is the in-process cooldown ledger. Suitable for a
// single replica; entries are pruned lazily on acquisition.
type MemoryRequestLimiter struct {
	cooldown time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

func NewMemoryRequestLimiter(cooldown time.Duration) *MemoryRequestLimiter {
	return &MemoryRequestLimiter{
		cooldown: cooldown,
		last:     make(map[string]time.Time),
	}
}

func (l *MemoryRequestLimiter) TryAcquire(_ context.Context, addr string, now time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if at, ok := l.last[addr]; ok && now.Sub(at) < l.cooldown {
		return false, nil
	}

	l.last[addr] = now
	l.prune(now)
	return true, nil
}

// prune drops windows that already elapsed so the map does not grow without
// bound under churn of distinct addresses.
func (l *MemoryRequestLimiter) prune(now time.Time) {
	if len(l.last) < 1024 {
		return
	}
	for addr, at := range l.last {
		if now.Sub(at) >= l.cooldown {
			delete(l.last, addr)
		}
	}
}
