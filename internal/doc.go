// Package internal contains helper utilities that are intentionally private
// to authcore, currently secure random generation for reset tokens and
// one-time passcodes.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - ledger — transient credential state: reset-request cooldowns,
//     superseded reset tokens, pending login codes
//
// # What this package must NOT do
//
//   - Be imported by any package outside the authcore module. Types that
//     callers need (the superseded-token record, audit events) are surfaced
//     through aliases in the root package.
package internal
