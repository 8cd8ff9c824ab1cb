// Package logging provides concrete implementations of the dwca.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: slog with a tint handler on stderr, coloured on terminals
//   - NullLogger: Discards all messages (useful for testing)
//   - Recorder: Keeps messages in memory so tests can assert on warnings
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
