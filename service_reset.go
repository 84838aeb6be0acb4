package authcore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/campuspoints/authcore/internal"
)

// RequestPasswordReset issues a fresh reset token for the identity behind
// loginID, superseding any token already outstanding, and dispatches the
// reset notification in the background.
//
// Requests from one source address are limited to one per cooldown window;
// a denied request changes no state. The raw token is returned to the caller
// as well as emailed.
func (s *Service) RequestPasswordReset(ctx context.Context, loginID, sourceAddr string) (*ResetIssue, error) {
	if !s.ready() {
		return nil, ErrServiceNotReady
	}

	now := s.clock()

	user, err := s.directory.FindByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			if !s.config.Reset.DiscloseUnknownUser {
				// Synthetic success: same shape and timing as the real path,
				// minus the token, so the caller cannot probe for accounts.
				return &ResetIssue{ExpiresAt: now.Add(s.config.Reset.TokenTTL)}, nil
			}
			s.emitAudit(ctx, auditEventResetRequest, false, "", loginID, sourceAddr, ErrUserNotFound, nil)
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	allowed, err := s.requests.TryAcquire(ctx, sourceAddr, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	if !allowed {
		s.emitAudit(ctx, auditEventResetRateLimited, false, user.ID, user.LoginID, sourceAddr, ErrRateLimited, nil)
		return nil, ErrRateLimited
	}

	// Retire the outstanding token first: a crash between here and the
	// persist below leaves the user with no valid token, never with two.
	if user.ResetToken != "" {
		if err := s.superseded.Supersede(ctx, user.ResetToken, user.ID, user.LoginID, now); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
		}
	}

	token := internal.NewResetToken()
	expiresAt := now.Add(s.config.Reset.TokenTTL)

	to := user.Email
	name := displayName(user)
	login := user.LoginID
	url := s.resetURL(token)
	s.dispatchNotification("password_reset", func(ctx context.Context) error {
		return s.notifier.SendResetEmail(ctx, to, url, name, token, login)
	})

	if err := s.directory.UpdateResetToken(ctx, user.ID, token, &expiresAt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	s.emitAudit(ctx, auditEventResetRequest, true, user.ID, user.LoginID, sourceAddr, nil, nil)
	return &ResetIssue{Token: token, ExpiresAt: expiresAt}, nil
}

// FindIdentityByResetToken resolves a reset token against the durable store
// first, then the superseded ledger. Exactly one of the returns is non-nil
// for a known token; both are nil when the token matches nothing.
func (s *Service) FindIdentityByResetToken(ctx context.Context, token string) (*UserIdentity, *SupersededToken, error) {
	if !s.ready() {
		return nil, nil, ErrServiceNotReady
	}

	user, err := s.directory.FindByResetToken(ctx, token)
	if err == nil {
		return user, nil, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	entry, err := s.superseded.Lookup(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return nil, entry, nil
}

// IsResetTokenExpired answers "expired", not "exists": superseded tokens and
// durable tokens with a nil or past expiry report true; live tokens and
// tokens matching nothing report false.
func (s *Service) IsResetTokenExpired(ctx context.Context, token string) (bool, error) {
	if !s.ready() {
		return false, ErrServiceNotReady
	}

	entry, err := s.superseded.Lookup(ctx, token)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	if entry != nil {
		return true, nil
	}

	user, err := s.directory.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	if user.ResetTokenExpiresAt == nil {
		return true, nil
	}
	return !s.clock().Before(*user.ResetTokenExpiresAt), nil
}

// ResetPassword completes a reset. Failures follow a fixed precedence of
// existence, then ownership, then freshness, so a caller holding a stale
// mismatched token gets the most specific applicable error:
// [ErrTokenNotFound], then [ErrLoginMismatch], then [ErrTokenExpired].
func (s *Service) ResetPassword(ctx context.Context, token, loginID, newPassword string) error {
	if !s.ready() {
		return ErrServiceNotReady
	}

	user, err := s.directory.FindByResetToken(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
		}

		entry, lerr := s.superseded.Lookup(ctx, token)
		if lerr != nil {
			return fmt.Errorf("%w: %v", ErrLedgerUnavailable, lerr)
		}
		if entry == nil {
			return ErrTokenNotFound
		}
		if !strings.EqualFold(loginID, entry.LoginID) {
			return ErrLoginMismatch
		}
		return ErrTokenExpired
	}

	if !strings.EqualFold(loginID, user.LoginID) {
		return ErrLoginMismatch
	}

	if user.ResetTokenExpiresAt == nil || !s.clock().Before(*user.ResetTokenExpiresAt) {
		return ErrTokenExpired
	}

	// Complexity rules live with the caller; only the empty string is
	// rejected here, since it would otherwise read as "no password login".
	if newPassword == "" {
		return ErrPasswordPolicy
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("password hash: %w", err)
	}

	if err := s.directory.UpdatePassword(ctx, user.ID, newHash); err != nil {
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if err := s.directory.UpdateResetToken(ctx, user.ID, "", nil); err != nil {
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	// Defensive cleanup; the consumed token should not be in the ledger, but
	// leaving it there would resolve a spent token as "expired" forever.
	if err := s.superseded.Remove(ctx, token); err != nil {
		log.Printf("authcore: superseded ledger cleanup failed: %v", err)
	}

	s.emitAudit(ctx, auditEventResetConfirm, true, user.ID, user.LoginID, "", nil, nil)
	return nil
}

func (s *Service) resetURL(token string) string {
	base := s.config.Reset.BaseURL
	if base == "" {
		return token
	}
	return strings.TrimRight(base, "/") + "/" + token
}
