// Package utils provides small helpers shared across the application:
// filename sanitization, safe numeric conversions, pauses between requests,
// and content type checks for HTTP logging.
package utils
