package catalog

import "errors"

var (
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	// ErrPlaylistNotFound is returned when a playlist is missing from the GraphQL response.
	ErrPlaylistNotFound = errors.New("playlist not found or unexpected response format")
	// ErrUnexpectedPlaylistFormat is returned when a playlist response has unexpected format.
	ErrUnexpectedPlaylistFormat = errors.New("unexpected playlist response format")
	// ErrFailedToFetchStreamMetadata indicates failure to fetch stream metadata after all retry attempts.
	ErrFailedToFetchStreamMetadata = errors.New("failed to fetch stream metadata after retries")
)
