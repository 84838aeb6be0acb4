package ledger

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"sync"
	"time"
)

type otpEntry struct {
	codeHash  [32]byte
	expiresAt time.Time
}

// MemoryOTPLedger keeps pending login codes in process memory, hashed.
type MemoryOTPLedger struct {
	mu      sync.Mutex
	pending map[string]otpEntry
}

func NewMemoryOTPLedger() *MemoryOTPLedger {
	return &MemoryOTPLedger{
		pending: make(map[string]otpEntry),
	}
}

func (l *MemoryOTPLedger) Issue(_ context.Context, email, code string, now time.Time, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pending[normalizeEmail(email)] = otpEntry{
		codeHash:  sha256.Sum256([]byte(code)),
		expiresAt: now.Add(ttl),
	}
	return nil
}

func (l *MemoryOTPLedger) Consume(_ context.Context, email, code string, now time.Time) (ConsumeResult, error) {
	key := normalizeEmail(email)

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.pending[key]
	if !ok {
		return ConsumeNotFound, nil
	}
	if now.After(entry.expiresAt) {
		delete(l.pending, key)
		return ConsumeExpired, nil
	}

	provided := sha256.Sum256([]byte(code))
	if subtle.ConstantTimeCompare(entry.codeHash[:], provided[:]) != 1 {
		return ConsumeMismatch, nil
	}

	delete(l.pending, key)
	return ConsumeOk, nil
}
