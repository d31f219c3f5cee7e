package download

//go:generate $MOCKGEN -source=service.go -destination=mocks/service_mock.go

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/weakish/fm163/internal/client/catalog"
	"github.com/weakish/fm163/internal/config"
	"github.com/weakish/fm163/internal/constants"
	"github.com/weakish/fm163/internal/logger"
)

// Service provides methods for batch-downloading playlist tracks.
type Service interface {
	// DownloadPlaylists resolves the given playlist arguments and downloads their tracks.
	// It returns an error only for failures that preclude the whole run
	// (bad arguments, playlist resolution); per-track failures are recorded and skipped.
	DownloadPlaylists(ctx context.Context, playlistArgs []string) error
	// ExportHistory regenerates the human-readable history projection.
	ExportHistory(ctx context.Context) error
	// PrintDownloadSummary prints a formatted summary of download statistics.
	PrintDownloadSummary(ctx context.Context)
}

// ServiceImpl implements the playlist download pipeline with history-based deduplication.
type ServiceImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// catalogClient is the client for interacting with the catalog API.
	catalogClient catalog.Client
	// history records obtained (track, bitrate) pairs across runs.
	history HistoryStore
	// urlProcessor parses playlist arguments.
	urlProcessor URLProcessor
	// templateManager generates track filenames.
	templateManager TemplateManager
	// tagProcessor writes metadata tags to audio files.
	tagProcessor TagProcessor
	// transferrer moves track bytes to disk.
	transferrer Transferrer
	// stats tracks download statistics for the current session.
	stats *DownloadStatistics
	// statsMutex protects concurrent access to statistics.
	statsMutex *sync.Mutex
}

// NewService creates a download service instance with dependency-injected components.
func NewService(
	cfg *config.Config,
	catalogClient catalog.Client,
	history HistoryStore,
	urlProcessor URLProcessor,
	templateManager TemplateManager,
	tagProcessor TagProcessor,
	transferrer Transferrer,
) Service {
	return &ServiceImpl{
		cfg:             cfg,
		catalogClient:   catalogClient,
		history:         history,
		urlProcessor:    urlProcessor,
		templateManager: templateManager,
		tagProcessor:    tagProcessor,
		transferrer:     transferrer,
		stats:           new(DownloadStatistics),
		statsMutex:      new(sync.Mutex),
	}
}

// DownloadPlaylists resolves the given playlist arguments and downloads their tracks.
func (s *ServiceImpl) DownloadPlaylists(ctx context.Context, playlistArgs []string) error {
	// Record start time and dry-run mode for statistics.
	s.statsMutex.Lock()
	s.stats.StartTime = time.Now()
	s.stats.IsDryRun = s.cfg.DryRun
	s.statsMutex.Unlock()

	playlistIDs, err := s.urlProcessor.ExtractPlaylistIDs(ctx, playlistArgs)
	if err != nil {
		return err
	}

	// Resolve ALL playlists before touching any state.
	// A resolution failure aborts the run with nothing mutated.
	response, err := s.catalogClient.GetPlaylistsMetadata(ctx, playlistIDs)
	if err != nil {
		return fmt.Errorf("failed to resolve playlists: %w", err)
	}

	// Ensure the output directory exists (skip in dry-run mode).
	if !s.cfg.DryRun {
		if err = os.MkdirAll(s.cfg.OutputPath, constants.DefaultFolderPermissions); err != nil {
			return fmt.Errorf("failed to create output path: %w", err)
		}
	} else {
		logger.Infof(ctx, "[DRY-RUN] Would create output directory: %s", s.cfg.OutputPath)
	}

	logger.Info(ctx, "Starting download process")

	mode := SelectionModeDefault
	if s.cfg.HighestBitrate {
		mode = SelectionModeHighest
	}

	for _, playlistID := range playlistIDs {
		playlist, ok := response.Playlists[playlistID]
		if !ok || playlist == nil {
			// GetPlaylistsMetadata fails on unresolvable playlists, so this is a shape mismatch.
			return fmt.Errorf("%w: playlist %s missing from response", catalog.ErrPlaylistNotFound, playlistID)
		}

		logger.Infof(ctx, "Downloading playlist: %s (%d tracks)", playlist.Title, len(playlist.TrackIDs))

		s.downloadPlaylistTracks(ctx, playlist, response.Tracks, mode)
	}

	logger.Info(ctx, "Download process completed")

	// Record end time for statistics.
	s.statsMutex.Lock()
	s.stats.EndTime = time.Now()
	s.statsMutex.Unlock()

	return nil
}

// downloadPlaylistTracks processes the playlist's tracks sequentially, in playlist order.
// One track's outcome never aborts the run.
func (s *ServiceImpl) downloadPlaylistTracks(
	ctx context.Context,
	playlist *catalog.Playlist,
	tracks map[string]*catalog.Track,
	mode SelectionMode,
) {
	tracksCount := len(playlist.TrackIDs)

	for index, trackID := range playlist.TrackIDs {
		// Check if context was canceled (CTRL+C pressed) - stop immediately.
		select {
		case <-ctx.Done():
			return
		default:
		}

		request := &processTrackRequest{
			// Track numbers start at 1 for user-facing numbering.
			trackIndex:  int64(index) + 1,
			tracksCount: int64(tracksCount),
			trackID:     trackID,
			track:       tracks[strconv.FormatInt(trackID, 10)],
			playlist:    playlist,
			mode:        mode,
		}

		s.processTrack(ctx, request)
	}
}

// ExportHistory regenerates the human-readable history projection.
func (s *ServiceImpl) ExportHistory(ctx context.Context) error {
	if err := s.history.ExportReadable(ctx); err != nil {
		return fmt.Errorf("failed to export history: %w", err)
	}

	logger.Infof(ctx, "Exported %d history entries", s.history.Len())

	return nil
}
