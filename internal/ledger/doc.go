// Package ledger holds the transient credential state that outlives a single
// request but not an account: reset-request cooldowns per source address,
// superseded reset tokens, and pending one-time login codes.
//
// Every ledger is an interface with two implementations. The memory variants
// are the default and need no infrastructure; the Redis variants survive
// process restarts and are safe to share across replicas. Both obey the same
// contracts, so callers never branch on the backend.
//
// # What this package must NOT do
//
//   - Store plaintext login codes. Only SHA-256 digests go into an OTP ledger.
//   - Import authcore or decide policy; TTLs and cooldowns arrive from the
//     caller.
package ledger
