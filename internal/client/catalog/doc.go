// Package catalog provides a Go client for the remote music catalog API.
// It handles HTTP/GraphQL communication with retry logic,
// cookie-based authentication, and user-agent management.
// Key features include playlist and track metadata retrieval,
// stream URL generation, and audio content downloading.
// Playlist metadata is cached to avoid redundant API calls,
// and errors are reported through structured sentinel values.
package catalog
