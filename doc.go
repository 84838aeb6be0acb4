// Package authcore implements the credential and ephemeral-token lifecycle for
// the campus points platform: password login, password-reset token issuance and
// completion with per-address cooldowns, and one-time-passcode email login.
//
// The package is designed for concurrent server workloads: Service methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Service], [Builder], [Config],
// the [UserDirectory] and [Notifier] collaborator interfaces, and value types
// (Session, ResetIssue, SupersededToken). Ledger state, audit dispatch, and
// token generation live under internal/ and are never exported directly.
//
// The durable user record belongs to the caller's directory; authcore only
// reads identities and writes password hashes, reset-token fields, and
// last-login timestamps through [UserDirectory]. Notification delivery is
// fire-and-forget through [Notifier]: a failed email never fails the request
// that triggered it.
//
// # What this package must NOT do
//
//   - Persist identities or render email bodies — both belong to the caller.
//   - Expose Redis clients or ledger encodings in its public API.
//   - Block an operation on notification delivery.
package authcore
