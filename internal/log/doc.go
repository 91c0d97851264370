// Package log provides logging helpers for manualmirror.
//
// manualmirror handles portal credentials and an authenticated session
// cookie for every request, both of which would otherwise be one careless
// slog attribute away from the log file. RedactHandler wraps any
// slog.Handler and masks attribute values whose keys look credential- or
// session-related before they reach the underlying handler.
package log
