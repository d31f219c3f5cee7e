// Package download provides the core functionality for batch-downloading playlist tracks.
// It resolves playlists through the catalog client, selects a bitrate variant per track,
// transfers and tags audio files, and records every obtained (track, bitrate) pair
// in a persistent history so reruns skip what is already on disk.
package download
