// Package log provides structured logging helpers for scidigest.
//
// The crawl logs request headers and diagnostic payloads, and the process
// carries an API credential for the oracle backend. SecureHandler wraps any
// slog.Handler and masks attribute values that look like credentials before
// they reach the underlying handler, so a debug-level crawl log can be
// shared without leaking the key.
package log
