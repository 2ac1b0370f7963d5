// Package logging builds the slog loggers used across vidstitch.
//
// It centralizes handler selection (console or JSON), level parsing, and the
// attribute helpers components use so log fields stay consistently named.
package logging
