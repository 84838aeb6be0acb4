package authcore

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Login authenticates a password credential and returns a signed session.
//
// Unknown identifier, disabled password login, and wrong password all fail
// with [ErrAuthFailed]; the caller gets no signal distinguishing them.
func (s *Service) Login(ctx context.Context, loginID, password string) (*Session, error) {
	if !s.ready() {
		return nil, ErrServiceNotReady
	}

	user, err := s.directory.FindByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.emitAudit(ctx, auditEventLoginFailure, false, "", loginID, "", ErrAuthFailed, map[string]string{
				"reason": "unknown_login_id",
			})
			return nil, ErrAuthFailed
		}
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	if user.PasswordHash == "" {
		s.emitAudit(ctx, auditEventLoginFailure, false, user.ID, loginID, "", ErrAuthFailed, map[string]string{
			"reason": "password_login_disabled",
		})
		return nil, ErrAuthFailed
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.emitAudit(ctx, auditEventLoginFailure, false, user.ID, loginID, "", ErrAuthFailed, map[string]string{
			"reason": "password_mismatch",
		})
		return nil, ErrAuthFailed
	}

	s.maybeRehash(ctx, user, password)

	now := s.clock()
	if err := s.directory.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	sess, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}

	s.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, user.LoginID, "", nil, nil)
	return sess, nil
}

// maybeRehash upgrades the stored hash after a verified login when the
// current parameters are stronger. Best-effort: any failure is logged and the
// login proceeds on the old hash.
func (s *Service) maybeRehash(ctx context.Context, user *UserIdentity, password string) {
	if !s.config.Password.RehashOnLogin {
		return
	}
	if !s.hasher.NeedsRehash(user.PasswordHash) {
		return
	}

	newHash, err := s.hasher.Hash(password)
	if err != nil {
		log.Printf("authcore: rehash failed for identity %s: %v", user.ID, err)
		return
	}
	if err := s.directory.UpdatePassword(ctx, user.ID, newHash); err != nil {
		log.Printf("authcore: rehash persist failed for identity %s: %v", user.ID, err)
		return
	}
	user.PasswordHash = newHash
}
