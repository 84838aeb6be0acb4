package ledger

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrUnavailable reports that a ledger backend could not be reached.
var ErrUnavailable = errors.New("ledger backend unavailable")

// ConsumeResult classifies the outcome of a single-use code consumption.
type ConsumeResult int

const (
	// ConsumeOk means the code matched and the entry was removed.
	ConsumeOk ConsumeResult = iota
	// ConsumeNotFound means no pending code exists for the subject.
	ConsumeNotFound
	// ConsumeExpired means a code existed but its deadline had passed; the
	// entry was removed.
	ConsumeExpired
	// ConsumeMismatch means a live code exists but the provided value did
	// not match; the entry is retained.
	ConsumeMismatch
)

// RequestLimiter enforces a per-address cooldown on reset requests.
// TryAcquire returns true when the address may proceed and atomically starts
// its cooldown window.
type RequestLimiter interface {
	TryAcquire(ctx context.Context, addr string, now time.Time) (bool, error)
}

// SupersededToken is a retired reset token kept so that later lookups can
// report it as expired instead of unknown.
type SupersededToken struct {
	Token      string
	IdentityID string
	LoginID    string
	ExpiresAt  time.Time
}

// SupersededLedger records reset tokens that were replaced by a newer
// issuance. Supersede is idempotent; Lookup returns nil when the token was
// never superseded.
type SupersededLedger interface {
	Supersede(ctx context.Context, token, identityID, loginID string, now time.Time) error
	Lookup(ctx context.Context, token string) (*SupersededToken, error)
	Remove(ctx context.Context, token string) error
}

// OTPLedger holds at most one pending login code per email address. Issue
// replaces any earlier code. Consume removes the entry on a match or on
// expiry, and retains it on a mismatch.
type OTPLedger interface {
	Issue(ctx context.Context, email, code string, now time.Time, ttl time.Duration) error
	Consume(ctx context.Context, email, code string, now time.Time) (ConsumeResult, error)
}

// normalizeEmail folds the keying address so that lookups are
// case-insensitive regardless of how the caller captured the input.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
