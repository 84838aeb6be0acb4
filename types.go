package authcore

import (
	"context"
	"io"
	"strings"
	"time"

	internalaudit "github.com/campuspoints/authcore/internal/audit"
	"github.com/campuspoints/authcore/internal/ledger"
)

// UserIdentity is the account record exchanged with the [UserDirectory].
// The directory owns creation and deletion; authcore only reads identities and
// writes the password hash, the reset-token pair, and the last-login stamp.
//
// Invariant: ResetToken and ResetTokenExpiresAt are written and cleared
// together. A non-empty token always carries a non-nil expiry.
type UserIdentity struct {
	ID                  string
	LoginID             string
	Name                string
	Email               string
	PasswordHash        string // empty means password login is disabled
	Role                string
	ResetToken          string
	ResetTokenExpiresAt *time.Time
	LastLoginAt         *time.Time
}

// UserDirectory is the durable identity store consumed by the Service.
// Implementations return [ErrUserNotFound] (directly or wrapped) when no
// identity matches a lookup; any other error is treated as a backend failure.
//
// FindByEmail matches case-insensitively. FindByLoginID is exact-match; the
// Service performs its own case-insensitive comparison where the reset flow
// requires one.
type UserDirectory interface {
	FindByLoginID(ctx context.Context, loginID string) (*UserIdentity, error)
	FindByEmail(ctx context.Context, email string) (*UserIdentity, error)
	FindByResetToken(ctx context.Context, token string) (*UserIdentity, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateResetToken(ctx context.Context, id, token string, expiresAt *time.Time) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// Notifier delivers reset links and login codes. Calls are dispatched on a
// background goroutine; a returned error is audited and logged, never
// surfaced to the request that triggered the send.
type Notifier interface {
	SendResetEmail(ctx context.Context, to, resetURL, displayName, token, loginID string) error
	SendLoginCode(ctx context.Context, to, displayName, code string) error
}

// DomainValidator decides whether an email address belongs to the accepted
// institutional domain set. Validation happens before any directory lookup.
type DomainValidator interface {
	Validate(email string) error
}

// AllowedDomains is the builtin [DomainValidator]: an address is accepted when
// its domain part equals one of the listed domains, case-insensitively.
type AllowedDomains []string

// Validate reports [ErrInvalidEmailDomain] for addresses outside the set.
func (d AllowedDomains) Validate(email string) error {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return ErrInvalidEmailDomain
	}
	domain := email[at+1:]
	for _, allowed := range d {
		if strings.EqualFold(domain, allowed) {
			return nil
		}
	}
	return ErrInvalidEmailDomain
}

// Session is a signed, time-bounded proof of authenticated identity, returned
// by every successful login path.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// ResetIssue is returned by [Service.RequestPasswordReset]. The raw token is
// returned to the caller as well as emailed, preserving the observed contract
// of the source system.
type ResetIssue struct {
	Token     string
	ExpiresAt time.Time
}

// EmailLoginIssue is returned by [Service.RequestEmailLogin]. Unlike the
// reset flow, the code itself is only ever delivered by email.
type EmailLoginIssue struct {
	ExpiresAt time.Time
}

// SupersededToken records a reset token that was replaced before use. Its
// expiry is always in the past, so stale links resolve to a deterministic
// "expired" outcome instead of a generic not-found.
type SupersededToken = ledger.SupersededToken

// AuditEvent is a structured audit record emitted by the Service.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the Service's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
