// Package logging constructs the slog loggers used across noticeboard.
//
// Loggers write to stdout plus an optional log file and support console and
// JSON formats selected through configuration. Helper aliases keep call
// sites terse, and component loggers attach a standardized component
// attribute so pipeline stages can be filtered in aggregate output.
package logging
