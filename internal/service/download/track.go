package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/weakish/fm163/internal/client/catalog"
	"github.com/weakish/fm163/internal/logger"
	"github.com/weakish/fm163/internal/utils"
)

// Processing phases used in error context reporting.
const (
	phaseResolvingTrack    = "resolving track metadata"
	phaseFetchingStream    = "fetching stream metadata"
	phaseTransferringFile  = "transferring file"
	phaseWritingTags       = "writing metadata tags"
	phaseFinalizingFile    = "finalizing file"
	phasePersistingHistory = "persisting history"
)

// processTrackRequest carries everything needed to process a single playlist track.
type processTrackRequest struct {
	trackIndex  int64
	tracksCount int64
	trackID     int64
	track       *catalog.Track
	playlist    *catalog.Playlist
	mode        SelectionMode
}

// processTrack runs the full pipeline for one track: variant selection,
// stream resolution, transfer, tagging and history recording.
// Failures are recorded in statistics and never propagate.
func (s *ServiceImpl) processTrack(ctx context.Context, request *processTrackRequest) {
	s.incrementTracksProcessed()

	track := request.track
	if track == nil {
		s.recordError(
			fmt.Errorf("track %d missing from playlist response", request.trackID),
			s.buildErrorContext(request, phaseResolvingTrack),
		)
		s.incrementTracksFailed()

		return
	}

	trackName := s.describeTrack(track)

	logger.Infof(ctx, "Processing track %d/%d: %s", request.trackIndex, request.tracksCount, trackName)

	available := ParseBitrates(track.AvailableBitrates)
	if len(available) == 0 {
		// No variant the service knows how to fetch. Remember the track's
		// metadata anyway so the run is visible in meta.json.
		logger.Warnf(ctx, "No downloadable variant for track: %s", trackName)
		s.history.UpsertMeta(request.trackID, s.buildTrackMeta(track, BitrateUnknown))
		s.flushHistory(ctx, request)
		s.incrementTracksWithoutVariants()

		return
	}

	bitrate, ok := NextBitrate(available, s.history.BitratesOf(request.trackID), request.mode)
	if !ok {
		// Everything worth downloading is already in the history.
		logger.Infof(ctx, "SKIP %s %s", trackName, track.PageURL)
		s.incrementTracksSkipped()

		return
	}

	logger.Debugf(ctx, "Selected variant for track %d: %s", request.trackID, bitrate)

	if s.cfg.DryRun {
		logger.Infof(ctx, "[DRY-RUN] Would download: %s (%s)", trackName, bitrate)
		s.recordObtained(ctx, request, bitrate, 0)

		return
	}

	s.downloadTrack(ctx, request, bitrate, trackName)
}

// downloadTrack performs the real transfer, tagging and finalization for a selected variant.
func (s *ServiceImpl) downloadTrack(
	ctx context.Context,
	request *processTrackRequest,
	bitrate Bitrate,
	trackName string,
) {
	trackIDString := strconv.FormatInt(request.trackID, 10)

	streamMetadata, err := s.catalogClient.GetStreamMetadata(ctx, trackIDString, bitrate.AsStreamURLParameterValue())
	if err != nil {
		s.recordError(err, s.buildErrorContext(request, phaseFetchingStream))
		s.incrementTracksFailed()

		return
	}

	trackTags := s.buildTrackTags(request)
	trackFilename := utils.SetFileExtension(
		utils.SanitizeFilename(s.templateManager.GetTrackFilename(ctx, trackTags)),
		bitrate.Extension(),
		true,
	)
	trackPath := filepath.Join(s.cfg.OutputPath, trackFilename)

	transferResult, err := s.transferrer.Download(ctx, streamMetadata.Stream, trackPath)
	if err != nil {
		s.recordError(err, s.buildErrorContext(request, phaseTransferringFile))
		s.incrementTracksFailed()

		return
	}

	if transferResult.IsExist {
		// File already on disk but the pair was absent from history
		// (state file lost or written by another tool). Record it now.
		logger.Infof(ctx, "Track already exists, recording history: %s", trackPath)
		s.recordObtained(ctx, request, bitrate, 0)

		return
	}

	if err = s.tagProcessor.WriteTags(ctx, &WriteTagsRequest{
		TrackPath: transferResult.TempPath,
		Bitrate:   bitrate,
		TrackTags: trackTags,
	}); err != nil {
		s.removeTempFile(ctx, transferResult.TempPath)
		s.recordError(err, s.buildErrorContext(request, phaseWritingTags))
		s.incrementTracksFailed()

		return
	}

	if err = os.Rename(transferResult.TempPath, trackPath); err != nil {
		s.removeTempFile(ctx, transferResult.TempPath)
		s.recordError(err, s.buildErrorContext(request, phaseFinalizingFile))
		s.incrementTracksFailed()

		return
	}

	logger.Infof(ctx, "Downloaded: %s (%s)", trackName, bitrate)

	s.recordObtained(ctx, request, bitrate, transferResult.BytesDownloaded)
}

// recordObtained adds the (track, bitrate) pair to the history,
// flushes state to disk and updates the counters.
func (s *ServiceImpl) recordObtained(
	ctx context.Context,
	request *processTrackRequest,
	bitrate Bitrate,
	bytesDownloaded int64,
) {
	s.history.Add(request.trackID, bitrate, s.buildTrackMeta(request.track, bitrate))
	s.flushHistory(ctx, request)
	s.incrementTracksRecorded()
	s.addBytesDownloaded(bytesDownloaded)
}

// flushHistory persists the history after every track so an interrupted
// run loses at most the track in flight.
func (s *ServiceImpl) flushHistory(ctx context.Context, request *processTrackRequest) {
	if err := s.history.Save(ctx); err != nil {
		logger.Errorf(ctx, "Failed to persist history: %v", err)
		s.recordError(err, s.buildErrorContext(request, phasePersistingHistory))
	}
}

func (s *ServiceImpl) removeTempFile(ctx context.Context, tempPath string) {
	if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
		logger.Warnf(ctx, "Failed to remove temporary file %s: %v", tempPath, err)
	}
}

// buildTrackTags assembles the values available to the filename template and tag writer.
func (s *ServiceImpl) buildTrackTags(request *processTrackRequest) map[string]string {
	track := request.track

	return map[string]string{
		"trackArtist":   strings.Join(track.ArtistNames, ", "),
		"trackTitle":    track.Title,
		"albumTitle":    track.AlbumTitle,
		"trackID":       strconv.FormatInt(track.ID, 10),
		"trackNumber":   strconv.FormatInt(request.trackIndex, 10),
		"playlistTitle": request.playlist.Title,
	}
}

// buildTrackMeta converts catalog track metadata into the history's meta record.
func (s *ServiceImpl) buildTrackMeta(track *catalog.Track, bitrate Bitrate) *TrackMeta {
	meta := &TrackMeta{
		Name:   track.Title,
		Artist: strings.Join(track.ArtistNames, ", "),
		Album:  track.AlbumTitle,
		URL:    track.PageURL,
	}

	if bitrate != BitrateUnknown {
		meta.Bitrate = bitrate.AsStreamURLParameterValue()
	}

	return meta
}

func (s *ServiceImpl) buildErrorContext(request *processTrackRequest, phase string) *ErrorContext {
	errorContext := &ErrorContext{
		TrackID:       strconv.FormatInt(request.trackID, 10),
		PlaylistID:    strconv.FormatInt(request.playlist.ID, 10),
		PlaylistTitle: request.playlist.Title,
		Phase:         phase,
	}

	if request.track != nil {
		errorContext.TrackTitle = s.describeTrack(request.track)
	}

	return errorContext
}

func (s *ServiceImpl) describeTrack(track *catalog.Track) string {
	if len(track.ArtistNames) == 0 {
		return track.Title
	}

	return fmt.Sprintf("%s - %s", strings.Join(track.ArtistNames, ", "), track.Title)
}
