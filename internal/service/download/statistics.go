package download

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/weakish/fm163/internal/logger"
)

const (
	// unknownPlaylistKey is used as a fallback key when the playlist is unknown.
	unknownPlaylistKey = "unknown"
)

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

// incrementTracksProcessed atomically increments the processed tracks counter.
func (s *ServiceImpl) incrementTracksProcessed() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.TotalTracksProcessed++
}

// incrementTracksRecorded atomically increments the recorded tracks counter.
func (s *ServiceImpl) incrementTracksRecorded() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.TracksRecorded++
}

// incrementTracksSkipped atomically increments the skipped tracks counter.
func (s *ServiceImpl) incrementTracksSkipped() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.TracksSkipped++
}

// incrementTracksWithoutVariants atomically increments the no-variant tracks counter.
func (s *ServiceImpl) incrementTracksWithoutVariants() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.TracksWithoutVariants++
}

// incrementTracksFailed atomically increments the failed tracks counter.
func (s *ServiceImpl) incrementTracksFailed() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.TracksFailed++
}

// addBytesDownloaded atomically adds downloaded bytes to the session total.
func (s *ServiceImpl) addBytesDownloaded(bytes int64) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.TotalBytesDownloaded += bytes
}

// recordError stores an error with its context for summary reporting.
func (s *ServiceImpl) recordError(err error, errorContext *ErrorContext) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.Errors = append(s.stats.Errors, DownloadError{
		TrackID:       errorContext.TrackID,
		TrackTitle:    errorContext.TrackTitle,
		PlaylistID:    errorContext.PlaylistID,
		PlaylistTitle: errorContext.PlaylistTitle,
		ErrorMessage:  err.Error(),
		Phase:         errorContext.Phase,
	})
}

// PrintDownloadSummary prints a formatted summary of download statistics.
func (s *ServiceImpl) PrintDownloadSummary(ctx context.Context) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	stats := s.stats

	// If nothing was processed, don't print summary.
	if stats.TotalTracksProcessed == 0 {
		return
	}

	// Check if the context was canceled (CTRL+C or timeout).
	wasInterrupted := ctx.Err() != nil

	s.printSummaryHeader(ctx, wasInterrupted, stats.IsDryRun)
	s.printTrackStatistics(ctx, stats)
	s.printDataTransferStatistics(ctx, stats)
	s.printSummaryFooter(ctx)
	s.printErrorDetails(ctx, stats)
	s.printFinalMessage(ctx, wasInterrupted, stats)
	s.printDryRunSuggestion(ctx, stats)
}

// printSummaryHeader prints the summary header.
func (s *ServiceImpl) printSummaryHeader(ctx context.Context, wasInterrupted, isDryRun bool) {
	logger.Info(ctx, "")

	switch {
	case isDryRun:
		logger.Info(ctx, "═══════════════════════════════════════════════════════════════")
		logger.Info(ctx, "                  DRY-RUN PREVIEW")
		logger.Info(ctx, "═══════════════════════════════════════════════════════════════")
	case wasInterrupted:
		logger.Info(ctx, "═══════════════════════════════════════════════════════════════")
		logger.Info(ctx, "           DOWNLOAD SUMMARY (Interrupted)")
		logger.Info(ctx, "═══════════════════════════════════════════════════════════════")
	default:
		logger.Info(ctx, "═══════════════════════════════════════════════════════════════")
		logger.Info(ctx, "                     DOWNLOAD SUMMARY")
		logger.Info(ctx, "═══════════════════════════════════════════════════════════════")
	}
}

// printTrackStatistics prints track outcome counters.
func (s *ServiceImpl) printTrackStatistics(ctx context.Context, stats *DownloadStatistics) {
	logger.Infof(ctx, "Tracks:           %d total processed", stats.TotalTracksProcessed)

	if stats.TracksRecorded > 0 {
		if stats.IsDryRun {
			logger.Infof(ctx, "  Would Record:   %d", stats.TracksRecorded)
		} else {
			logger.Infof(ctx, "  Recorded:       %d", stats.TracksRecorded)
		}
	}

	if stats.TracksSkipped > 0 {
		logger.Infof(ctx, "  Skipped:        %d", stats.TracksSkipped)
	}

	if stats.TracksWithoutVariants > 0 {
		logger.Infof(ctx, "  No Variant:     %d", stats.TracksWithoutVariants)
	}

	if stats.TracksFailed > 0 {
		logger.Infof(ctx, "  Failed:         %d", stats.TracksFailed)
	}

	// Success rate.
	if stats.TotalTracksProcessed > 0 {
		successCount := stats.TracksRecorded + stats.TracksSkipped
		successRate := float64(successCount) / float64(stats.TotalTracksProcessed) * 100
		logger.Infof(ctx, "  Success Rate:   %.1f%%", successRate)
	}
}

// printDataTransferStatistics prints data transfer statistics.
func (s *ServiceImpl) printDataTransferStatistics(ctx context.Context, stats *DownloadStatistics) {
	if stats.TotalBytesDownloaded > 0 {
		logger.Info(ctx, "")
		//nolint:gosec // TotalBytesDownloaded is always positive, no overflow risk.
		logger.Infof(ctx, "Data Downloaded:  %s", humanize.Bytes(uint64(stats.TotalBytesDownloaded)))
	}

	// Print duration if we have both start and end times (skip for dry-run).
	if !stats.IsDryRun && !stats.StartTime.IsZero() && !stats.EndTime.IsZero() {
		duration := stats.EndTime.Sub(stats.StartTime)

		// Only show if duration is meaningful (> 100ms).
		if duration > 100*time.Millisecond {
			logger.Infof(ctx, "Duration:         %s", formatDuration(duration))

			// Calculate and show average speed if we downloaded anything.
			if stats.TotalBytesDownloaded > 0 {
				bytesPerSecond := float64(stats.TotalBytesDownloaded) / duration.Seconds()
				logger.Infof(ctx, "Average Speed:    %s/s", humanize.Bytes(uint64(bytesPerSecond)))
			}
		}
	}
}

// printSummaryFooter prints the summary footer separator.
func (s *ServiceImpl) printSummaryFooter(ctx context.Context) {
	logger.Info(ctx, "═══════════════════════════════════════════════════════════════")
}

// printErrorDetails prints detailed error information if any errors occurred.
func (s *ServiceImpl) printErrorDetails(ctx context.Context, stats *DownloadStatistics) {
	if len(stats.Errors) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "ERRORS ENCOUNTERED: %d", len(stats.Errors))

	// Group errors by playlist for better readability.
	playlistGroups := s.groupErrorsByPlaylist(stats.Errors)

	for _, errs := range playlistGroups {
		if len(errs) == 0 {
			continue
		}

		s.printPlaylistGroupErrors(ctx, errs)
	}

	logger.Info(ctx, "")
	logger.Info(ctx, "═══════════════════════════════════════════════════════════════")
}

// groupErrorsByPlaylist groups download errors by their playlist.
func (s *ServiceImpl) groupErrorsByPlaylist(errors []DownloadError) map[string][]DownloadError {
	playlistGroups := make(map[string][]DownloadError)

	for i := range errors {
		key := errors[i].PlaylistID
		if key == "" {
			key = unknownPlaylistKey
		}

		playlistGroups[key] = append(playlistGroups[key], errors[i])
	}

	return playlistGroups
}

// printPlaylistGroupErrors prints errors for tracks from a specific playlist.
func (s *ServiceImpl) printPlaylistGroupErrors(ctx context.Context, errs []DownloadError) {
	firstErr := errs[0]

	logger.Info(ctx, "")

	if firstErr.PlaylistTitle != "" {
		logger.Errorf(ctx, "  From playlist: %s (ID: %s)", firstErr.PlaylistTitle, firstErr.PlaylistID)
	} else {
		logger.Errorf(ctx, "  From unknown playlist:")
	}

	for i := range errs {
		logger.Info(ctx, "")
		logger.Errorf(ctx, "    [%d] %s", i+1, errs[i].TrackTitle)
		logger.Errorf(ctx, "        Track ID: %s", errs[i].TrackID)
		logger.Errorf(ctx, "        Phase: %s", errs[i].Phase)
		logger.Errorf(ctx, "        Error: %s", errs[i].ErrorMessage)
	}
}

// printDryRunSuggestion prints a suggestion to proceed with actual download after dry-run.
func (s *ServiceImpl) printDryRunSuggestion(ctx context.Context, stats *DownloadStatistics) {
	if !stats.IsDryRun || stats.TracksRecorded == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Info(ctx, "To proceed with actual download, remove the --dry-run flag:")
	logger.Info(ctx, "  fm163 <same command without --dry-run>")
}

// printFinalMessage prints a helpful message based on download results.
func (s *ServiceImpl) printFinalMessage(ctx context.Context, wasInterrupted bool, stats *DownloadStatistics) {
	// Dry-run specific messages.
	if stats.IsDryRun {
		if stats.TracksRecorded == 0 && stats.TracksSkipped > 0 {
			logger.Info(ctx, "")
			logger.Info(ctx, "All tracks already recorded - nothing to download.")
		}

		return
	}

	// Regular download messages.
	switch {
	case wasInterrupted:
		logger.Info(ctx, "")
		logger.Warn(ctx, "Download interrupted by user (CTRL+C).")

		if stats.TracksRecorded > 0 {
			logger.Infof(ctx, "Successfully recorded %d track(s) before interruption.", stats.TracksRecorded)
		}
	case len(stats.Errors) > 0:
		logger.Info(ctx, "")
		logger.Warnf(ctx, "%d error(s) occurred during download. See detailed error log above.", len(stats.Errors))
	case stats.TracksRecorded > 0:
		logger.Info(ctx, "")
		logger.Info(ctx, "All downloads completed successfully!")
	case stats.TracksSkipped > 0 && stats.TracksRecorded == 0:
		logger.Info(ctx, "")
		logger.Info(ctx, "All tracks already recorded in the history.")
	}
}
