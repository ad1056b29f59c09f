// Package logger provides structured logging for the rendezvous service.
//
// It wraps log/slog with JSON output, runtime level adjustment, and
// automatic masking of group keys and other secrets before they reach
// the log stream.
package logger
