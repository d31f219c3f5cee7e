package catalog

import "io"

// GetPlaylistsMetadataResponse represents the result of resolving playlists with their tracks.
type GetPlaylistsMetadataResponse struct {
	// Tracks is a map of track ID to track metadata.
	Tracks map[string]*Track `json:"tracks"`
	// Playlists is a map of playlist ID to playlist metadata.
	Playlists map[string]*Playlist `json:"playlists"`
}

// GetStreamMetadataResponse represents the response structure for fetching stream metadata.
type GetStreamMetadataResponse struct {
	// Result contains the stream metadata including the URL.
	Result *StreamMetadata `json:"result"`
}

// StreamMetadata represents metadata for an audio stream.
type StreamMetadata struct {
	// Stream is the URL for streaming the audio content.
	Stream string `json:"stream"`
}

// Playlist represents metadata for a playlist.
type Playlist struct {
	// ID is the unique playlist identifier.
	ID int64 `json:"id"`
	// Title is the playlist name.
	Title string `json:"title"`
	// TrackIDs is the list of track IDs in the playlist, in playlist order.
	TrackIDs []int64 `json:"track_ids"`
}

// Track represents metadata for a music track.
type Track struct {
	// ID is the unique track identifier.
	ID int64 `json:"id"`
	// Title is the track name.
	Title string `json:"title"`
	// ArtistNames is the list of artist names for the track.
	ArtistNames []string `json:"artist_names"`
	// AlbumTitle is the name of the album containing this track.
	AlbumTitle string `json:"album_title"`
	// Position is the track's position in the playlist.
	Position int64 `json:"position"`
	// Duration is the track length in seconds.
	Duration int64 `json:"duration"`
	// PageURL is the track's public page URL on the catalog.
	PageURL string `json:"page_url"`
	// AvailableBitrates lists the bitrate variants the catalog can stream for this track.
	AvailableBitrates []string `json:"available_bitrates"`
}

// FetchTrackResult contains the result of fetching a track.
type FetchTrackResult struct {
	// Body is the reader for the track content.
	Body io.ReadCloser
	// TotalBytes is the total size of the track in bytes.
	TotalBytes int64
}

// FetchJSONResult is a generic result wrapper for JSON API responses.
type FetchJSONResult[T any] struct {
	// Data contains the decoded response data.
	Data *T
	// StatusCode is the HTTP status code of the response.
	StatusCode int
}
