// Package http provides custom HTTP transport utilities for the catalog client,
// including request/response logging at debug level and User-Agent header injection.
package http
