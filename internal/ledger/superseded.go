package ledger

import (
	"context"
	"sync"
	"time"
)

// supersededBackdate is how far into the past a retired token's deadline is
// set, so that any later expiry check on it reports expired.
const supersededBackdate = time.Minute

// MemorySupersededLedger keeps retired reset tokens in process memory.
type MemorySupersededLedger struct {
	mu      sync.RWMutex
	entries map[string]SupersededToken
}

func NewMemorySupersededLedger() *MemorySupersededLedger {
	return &MemorySupersededLedger{
		entries: make(map[string]SupersededToken),
	}
}

func (l *MemorySupersededLedger) Supersede(_ context.Context, token, identityID, loginID string, now time.Time) error {
	if token == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[token]; ok {
		return nil
	}
	l.entries[token] = SupersededToken{
		Token:      token,
		IdentityID: identityID,
		LoginID:    loginID,
		ExpiresAt:  now.Add(-supersededBackdate),
	}
	return nil
}

func (l *MemorySupersededLedger) Lookup(_ context.Context, token string) (*SupersededToken, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, ok := l.entries[token]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (l *MemorySupersededLedger) Remove(_ context.Context, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, token)
	return nil
}
