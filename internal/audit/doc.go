// Package audit provides the asynchronous audit pipeline: an [Event] model,
// pluggable [Sink] implementations, and a buffered [Dispatcher] that decouples
// credential operations from sink latency.
//
// # What this package must NOT do
//
//   - Import authcore or any sibling internal package.
//   - Block a credential operation on sink delivery when DropIfFull is set.
//   - Carry secrets (passwords, codes, tokens) in event metadata.
package audit
