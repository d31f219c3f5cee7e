package download

import (
	"fmt"
	"strings"
	"time"
)

const (
	// File extensions.
	extensionMP3  = ".mp3"
	extensionFLAC = ".flac"
	extensionBin  = ".bin"
)

// Bitrate represents an audio bitrate variant, ordered by quality.
type Bitrate uint8

// Enum values for Bitrate.
const (
	// BitrateUnknown represents an unknown or unspecified bitrate.
	BitrateUnknown Bitrate = iota
	// BitrateLow represents MP3 format at 96 Kbps.
	BitrateLow
	// BitrateMid represents MP3 format at 320 Kbps.
	BitrateMid
	// BitrateHigh represents FLAC lossless format.
	BitrateHigh
)

// Constants for repeated string literals.
const (
	// BitrateLowString is the string representation for low bitrate.
	BitrateLowString = "low"
	// BitrateMidString is the string representation for mid bitrate.
	BitrateMidString = "mid"
	// BitrateHighString is the string representation for high (lossless) bitrate.
	BitrateHighString = "flac"
)

// String returns the display value of the Bitrate enum.
func (b Bitrate) String() string {
	//nolint:exhaustive // All meaningful cases are explicitly handled; default covers unknown values.
	switch b {
	case BitrateLow:
		return "MP3, 96 Kbps (low quality)"
	case BitrateMid:
		return "MP3, 320 Kbps (high quality)"
	case BitrateHigh:
		return "FLAC, 16/24-bit (lossless quality)"
	default:
		return "unknown format"
	}
}

// Extension returns the file extension for the Bitrate enum.
func (b Bitrate) Extension() string {
	//nolint:exhaustive // All meaningful cases are explicitly handled; default covers unknown values.
	switch b {
	case BitrateLow, BitrateMid:
		return extensionMP3
	case BitrateHigh:
		return extensionFLAC
	default:
		return extensionBin
	}
}

// AsStreamURLParameterValue returns the API parameter value for the Bitrate.
func (b Bitrate) AsStreamURLParameterValue() string {
	//nolint:exhaustive // All meaningful cases are explicitly handled; default covers unknown values.
	switch b {
	case BitrateLow:
		return BitrateLowString
	case BitrateMid:
		return BitrateMidString
	case BitrateHigh:
		return BitrateHighString
	default:
		return ""
	}
}

// ParseBitrate converts a string to a Bitrate enum.
func ParseBitrate(s string) Bitrate {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case BitrateLowString:
		return BitrateLow
	case BitrateMidString:
		return BitrateMid
	case BitrateHighString, "high":
		return BitrateHigh
	default:
		return BitrateUnknown
	}
}

// SelectionMode determines how a bitrate variant is picked for a track.
type SelectionMode uint8

const (
	// SelectionModeDefault tries mid first, then high, then low.
	// A decent MP3 is preferred over a large lossless file.
	SelectionModeDefault SelectionMode = iota
	// SelectionModeHighest picks the best available variant.
	SelectionModeHighest
)

// String returns a human-readable representation of the SelectionMode.
func (m SelectionMode) String() string {
	switch m {
	case SelectionModeDefault:
		return "default"
	case SelectionModeHighest:
		return "highest"
	default:
		return fmt.Sprintf("unknown mode: %d", m)
	}
}

// TrackOutcome represents the final state of a processed track.
type TrackOutcome uint8

const (
	// TrackOutcomeRecorded - track was obtained and recorded in history.
	TrackOutcomeRecorded TrackOutcome = iota
	// TrackOutcomeSkipped - everything obtainable was already in history.
	TrackOutcomeSkipped
	// TrackOutcomeNoVariant - the catalog offers no bitrate variant for the track.
	TrackOutcomeNoVariant
	// TrackOutcomeFailed - transfer or tagging failed, nothing was recorded.
	TrackOutcomeFailed
)

// String returns a human-readable representation of the TrackOutcome.
func (o TrackOutcome) String() string {
	switch o {
	case TrackOutcomeRecorded:
		return "recorded"
	case TrackOutcomeSkipped:
		return "skipped"
	case TrackOutcomeNoVariant:
		return "no variant"
	case TrackOutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown outcome: %d", o)
	}
}

// DownloadStatistics tracks metrics for a download session.
type DownloadStatistics struct {
	// StartTime is when the download session began.
	StartTime time.Time
	// EndTime is when the download session completed.
	EndTime time.Time
	// IsDryRun indicates if this was a dry-run preview.
	IsDryRun bool
	// TotalTracksProcessed is the total number of tracks attempted.
	TotalTracksProcessed int64
	// TracksRecorded is the number of tracks obtained and recorded in history.
	TracksRecorded int64
	// TracksSkipped is the number of tracks skipped because history already covers them.
	TracksSkipped int64
	// TracksWithoutVariants is the number of tracks the catalog offers no variant for.
	TracksWithoutVariants int64
	// TracksFailed is the number of tracks that failed to download or tag.
	TracksFailed int64
	// TotalBytesDownloaded is the total size of downloaded content in bytes.
	TotalBytesDownloaded int64
	// Errors is a list of all errors encountered during the download process.
	Errors []DownloadError
}

// DownloadError represents a single error that occurred during download.
type DownloadError struct {
	// TrackID is the unique identifier of the track that failed.
	TrackID string
	// TrackTitle is the human-readable title of the track.
	TrackTitle string
	// PlaylistID is the ID of the playlist the track came from.
	PlaylistID string
	// PlaylistTitle is the title of the playlist the track came from.
	PlaylistTitle string
	// ErrorMessage is the error message.
	ErrorMessage string
	// Phase indicates when the error occurred (e.g., "fetching stream metadata", "transferring file").
	Phase string
}

// ErrorContext provides context information for recording download errors.
type ErrorContext struct {
	// TrackID is the unique identifier of the track that failed.
	TrackID string
	// TrackTitle is the human-readable title of the track.
	TrackTitle string
	// PlaylistID is the ID of the playlist the track came from.
	PlaylistID string
	// PlaylistTitle is the title of the playlist the track came from.
	PlaylistTitle string
	// Phase indicates when the error occurred.
	Phase string
}

// TransferResult contains the result of a Transferrer.Download operation.
type TransferResult struct {
	// IsExist indicates whether the final track file already existed (transfer was skipped).
	IsExist bool
	// TempPath is the path to the temporary .part file (empty if transfer was skipped).
	TempPath string
	// BytesDownloaded is the number of bytes successfully downloaded.
	BytesDownloaded int64
}
