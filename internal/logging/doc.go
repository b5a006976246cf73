// Package logging assembles structured slog loggers for the discchapters CLI
// and parsers.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// standard field keys. A run id stamped once per CLI invocation ties together
// every line a command emits. NewNop gives parsers and tests a logger that
// cannot fail.
package logging
