// Package logger provides structured logging built on the Zap library.
// It manages a process-wide logger with a runtime-adjustable level and
// exposes context-aware helpers for plain, formatted, and key-value logging.
package logger
