// Package session mints and verifies the signed bearer tokens returned by
// successful logins.
//
// Tokens are JWTs carrying the identity ID as the subject, the login ID in a
// private "lid" claim, and the role when present. HS256 and Ed25519 signing
// are supported; the method is fixed at construction and enforced on parse.
//
// # Architecture boundaries
//
// This package owns token format and signature verification only. Who may
// obtain a token, and under what credentials, is decided by the service
// layer.
//
// # What this package must NOT do
//
//   - Persist tokens or keep a revocation list.
//   - Import any other authcore package.
package session
