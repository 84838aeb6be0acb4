package authcore

import "errors"

var (
	// ErrAuthFailed is returned for unknown login ids, disabled password
	// logins, and wrong passwords alike. The message is deliberately generic
	// so callers cannot distinguish the three cases.
	ErrAuthFailed = errors.New("invalid credentials")
	// ErrUserNotFound is returned by the reset-request and email-login flows,
	// which disclose non-existence by observed contract. See
	// [ResetConfig.DiscloseUnknownUser] for the policy point.
	ErrUserNotFound = errors.New("user not found")
	// ErrRateLimited indicates a reset request arrived inside the per-address
	// cooldown window.
	ErrRateLimited = errors.New("reset request rate limited")
	// ErrTokenNotFound indicates a reset token that matches neither an active
	// identity token nor a superseded entry.
	ErrTokenNotFound = errors.New("reset token not found")
	// ErrLoginMismatch indicates a reset token presented with a login id that
	// does not belong to the token's identity.
	ErrLoginMismatch = errors.New("reset token login mismatch")
	// ErrTokenExpired indicates a superseded reset token, or a durable token
	// whose expiry is missing or in the past.
	ErrTokenExpired = errors.New("reset token expired")
	// ErrInvalidOrExpiredCode covers both an absent and a mismatched login
	// code; the two are indistinguishable to the caller.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired login code")
	// ErrCodeExpired indicates the login code outlived its TTL. The pending
	// entry is deleted on detection, so a retry with the correct code also
	// fails.
	ErrCodeExpired = errors.New("login code expired")
	// ErrInvalidEmailDomain indicates the address failed institutional-domain
	// validation before any directory lookup.
	ErrInvalidEmailDomain = errors.New("email domain not allowed")
	// ErrPasswordPolicy indicates the replacement password was rejected before
	// hashing.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrServiceNotReady indicates the Service was not built through Builder.
	ErrServiceNotReady = errors.New("service not initialized")
	// ErrDirectoryUnavailable wraps transport or storage failures from the
	// caller-supplied UserDirectory.
	ErrDirectoryUnavailable = errors.New("user directory unavailable")
	// ErrLedgerUnavailable wraps backend failures from a ledger implementation
	// (only the Redis-backed ledgers can fail this way).
	ErrLedgerUnavailable = errors.New("ledger backend unavailable")
	// ErrSessionCreationFailed indicates the session credential could not be
	// signed.
	ErrSessionCreationFailed = errors.New("session creation failed")
)
