package authcore

import (
	"context"
	"log"
	"time"

	internalaudit "github.com/campuspoints/authcore/internal/audit"
	"github.com/campuspoints/authcore/internal/ledger"
	"github.com/campuspoints/authcore/password"
	"github.com/campuspoints/authcore/session"
)

const (
	auditEventLoginSuccess      = "login_success"
	auditEventLoginFailure      = "login_failure"
	auditEventResetRequest      = "password_reset_request"
	auditEventResetRateLimited  = "password_reset_rate_limited"
	auditEventResetConfirm      = "password_reset_confirm"
	auditEventEmailLoginRequest = "email_login_request"
	auditEventEmailLoginConfirm = "email_login_confirm"
	auditEventNotifyFailure     = "notification_failure"
)

// notifyTimeout bounds a background notification attempt so a hung SMTP
// relay cannot pin goroutines forever.
const notifyTimeout = 30 * time.Second

// Service composes the credential hasher, token generator, session issuer,
// and the three transient ledgers into the public credential operations.
// All methods are safe for concurrent use.
type Service struct {
	config    Config
	directory UserDirectory
	notifier  Notifier
	validator DomainValidator
	hasher    *password.Argon2
	issuer    *session.Issuer

	requests   ledger.RequestLimiter
	superseded ledger.SupersededLedger
	otps       ledger.OTPLedger

	audit *internalaudit.Dispatcher

	// now is the clock for every temporal decision; replaced in tests.
	now func() time.Time
}

// Close drains and stops the audit dispatcher. The Service must not be used
// after Close.
func (s *Service) Close() {
	if s == nil {
		return
	}
	s.audit.Close()
}

// AuditDropped reports how many audit events were discarded because the
// dispatch buffer was full.
func (s *Service) AuditDropped() uint64 {
	if s == nil {
		return 0
	}
	return s.audit.Dropped()
}

// AuditDroppedByEvent breaks the discard count down by event type, so an
// operator can tell whether a full buffer cost login failures or reset
// requests.
func (s *Service) AuditDroppedByEvent() map[string]uint64 {
	if s == nil {
		return nil
	}
	return s.audit.DroppedByEvent()
}

func (s *Service) ready() bool {
	return s != nil && s.directory != nil && s.notifier != nil &&
		s.hasher != nil && s.issuer != nil &&
		s.requests != nil && s.superseded != nil && s.otps != nil
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *Service) emitAudit(ctx context.Context, eventType string, success bool, identityID, loginID, sourceIP string, cause error, metadata map[string]string) {
	if s == nil || s.audit == nil {
		return
	}
	event := internalaudit.Event{
		Timestamp:  s.clock(),
		EventType:  eventType,
		IdentityID: identityID,
		LoginID:    loginID,
		SourceIP:   sourceIP,
		Success:    success,
		Metadata:   metadata,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	s.audit.Emit(ctx, event)
}

// dispatchNotification runs send on its own goroutine with a detached
// context. Failures are audited and logged; the triggering request never
// observes them.
func (s *Service) dispatchNotification(kind string, send func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := send(ctx); err != nil {
			log.Printf("authcore: %s notification failed: %v", kind, err)
			s.emitAudit(ctx, auditEventNotifyFailure, false, "", "", "", err, map[string]string{
				"kind": kind,
			})
		}
	}()
}

func (s *Service) issueSession(user *UserIdentity) (*Session, error) {
	token, expiresAt, err := s.issuer.Issue(user.ID, user.LoginID, user.Role)
	if err != nil {
		return nil, ErrSessionCreationFailed
	}
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}

func displayName(user *UserIdentity) string {
	if user.Name != "" {
		return user.Name
	}
	return user.LoginID
}
