package download

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{
			name:     "milliseconds only",
			duration: 250 * time.Millisecond,
			expected: "250ms",
		},
		{
			name:     "seconds only",
			duration: 42 * time.Second,
			expected: "42s",
		},
		{
			name:     "minutes and seconds",
			duration: 3*time.Minute + 7*time.Second,
			expected: "3m 7s",
		},
		{
			name:     "hours, minutes and seconds",
			duration: 2*time.Hour + 15*time.Minute + 30*time.Second,
			expected: "2h 15m 30s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, formatDuration(tt.duration))
		})
	}
}

func TestRecordErrorAndGrouping(t *testing.T) {
	t.Parallel()

	service := &ServiceImpl{
		stats:      new(DownloadStatistics),
		statsMutex: new(sync.Mutex),
	}

	service.recordError(errors.New("stream unavailable"), &ErrorContext{
		TrackID:       "1001",
		TrackTitle:    "First Track",
		PlaylistID:    "42",
		PlaylistTitle: "Mix One",
		Phase:         phaseFetchingStream,
	})
	service.recordError(errors.New("disk full"), &ErrorContext{
		TrackID:       "1002",
		TrackTitle:    "Second Track",
		PlaylistID:    "42",
		PlaylistTitle: "Mix One",
		Phase:         phaseTransferringFile,
	})
	service.recordError(errors.New("no playlist"), &ErrorContext{
		TrackID:    "2001",
		TrackTitle: "Orphan Track",
		Phase:      phaseResolvingTrack,
	})

	assert.Len(t, service.stats.Errors, 3)
	assert.Equal(t, "stream unavailable", service.stats.Errors[0].ErrorMessage)
	assert.Equal(t, phaseFetchingStream, service.stats.Errors[0].Phase)

	groups := service.groupErrorsByPlaylist(service.stats.Errors)
	assert.Len(t, groups, 2)
	assert.Len(t, groups["42"], 2)
	assert.Len(t, groups[unknownPlaylistKey], 1)
}

func TestOutcomeCounters(t *testing.T) {
	t.Parallel()

	service := &ServiceImpl{
		stats:      new(DownloadStatistics),
		statsMutex: new(sync.Mutex),
	}

	for range 5 {
		service.incrementTracksProcessed()
	}

	service.incrementTracksRecorded()
	service.incrementTracksRecorded()
	service.incrementTracksSkipped()
	service.incrementTracksWithoutVariants()
	service.incrementTracksFailed()
	service.addBytesDownloaded(1024)
	service.addBytesDownloaded(2048)

	assert.Equal(t, int64(5), service.stats.TotalTracksProcessed)
	assert.Equal(t, int64(2), service.stats.TracksRecorded)
	assert.Equal(t, int64(1), service.stats.TracksSkipped)
	assert.Equal(t, int64(1), service.stats.TracksWithoutVariants)
	assert.Equal(t, int64(1), service.stats.TracksFailed)
	assert.Equal(t, int64(3072), service.stats.TotalBytesDownloaded)
}
