// Package logging assembles the slog loggers used by the webmfix tool.
//
// Console output goes through console-slog with colors enabled only when the
// destination is a terminal; the json format emits one object per line. Use
// NewNop in tests and in wiring code that must not fail.
package logging
