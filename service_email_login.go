package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/campuspoints/authcore/internal"
	"github.com/campuspoints/authcore/internal/ledger"
)

// RequestEmailLogin issues a one-time login code for the identity behind
// email and dispatches it in the background. The domain validator runs
// before any directory lookup; a new request overwrites any code still
// pending for the address. The code itself is never returned to the caller,
// only its expiry.
func (s *Service) RequestEmailLogin(ctx context.Context, email string) (*EmailLoginIssue, error) {
	if !s.ready() {
		return nil, ErrServiceNotReady
	}

	if err := s.validator.Validate(email); err != nil {
		if errors.Is(err, ErrInvalidEmailDomain) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidEmailDomain, err)
	}

	now := s.clock()

	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			if !s.config.Reset.DiscloseUnknownUser {
				return &EmailLoginIssue{ExpiresAt: now.Add(s.config.EmailLogin.CodeTTL)}, nil
			}
			s.emitAudit(ctx, auditEventEmailLoginRequest, false, "", "", "", ErrUserNotFound, nil)
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	code, err := internal.NewOTP(s.config.EmailLogin.OTPDigits)
	if err != nil {
		return nil, fmt.Errorf("otp generation: %w", err)
	}

	ttl := s.config.EmailLogin.CodeTTL
	if err := s.otps.Issue(ctx, user.Email, code, now, ttl); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	to := user.Email
	name := displayName(user)
	s.dispatchNotification("login_code", func(ctx context.Context) error {
		return s.notifier.SendLoginCode(ctx, to, name, code)
	})

	s.emitAudit(ctx, auditEventEmailLoginRequest, true, user.ID, user.LoginID, "", nil, nil)
	return &EmailLoginIssue{ExpiresAt: now.Add(ttl)}, nil
}

// VerifyEmailLogin consumes a pending login code and returns a signed
// session. A mismatched or absent code fails with [ErrInvalidOrExpiredCode]
// and a live entry survives for retry; an expired code fails with
// [ErrCodeExpired] and the entry is gone, so even the correct code fails
// afterwards.
func (s *Service) VerifyEmailLogin(ctx context.Context, email, code string) (*Session, error) {
	if !s.ready() {
		return nil, ErrServiceNotReady
	}

	result, err := s.otps.Consume(ctx, email, code, s.clock())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	switch result {
	case ledger.ConsumeOk:
	case ledger.ConsumeExpired:
		s.emitAudit(ctx, auditEventEmailLoginConfirm, false, "", "", "", ErrCodeExpired, nil)
		return nil, ErrCodeExpired
	default:
		s.emitAudit(ctx, auditEventEmailLoginConfirm, false, "", "", "", ErrInvalidOrExpiredCode, nil)
		return nil, ErrInvalidOrExpiredCode
	}

	// Re-resolve in case the account vanished between issuance and
	// verification.
	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	if err := s.directory.UpdateLastLogin(ctx, user.ID, s.clock()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	sess, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}

	s.emitAudit(ctx, auditEventEmailLoginConfirm, true, user.ID, user.LoginID, "", nil, nil)
	return sess, nil
}
