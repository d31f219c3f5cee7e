package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/weakish/fm163/internal/client/catalog"
	"github.com/weakish/fm163/internal/config"
	"github.com/weakish/fm163/internal/constants"
	"github.com/weakish/fm163/internal/logger"
	"github.com/weakish/fm163/internal/service/download"
)

const lockFilename = "fm163.lock"

// ExecuteRootCommand is the entry point for the download command.
// It locks the state directory, loads the history, sets up the necessary
// service components, and starts the download process for the provided
// playlist arguments.
func ExecuteRootCommand(ctx context.Context, cfg *config.Config, playlistArgs []string) {
	stateLock := acquireStateLock(ctx, cfg)
	defer releaseStateLock(ctx, stateLock)

	history := loadHistory(ctx, cfg)

	s := newDownloadService(ctx, cfg, history)

	// Ensure statistics are ALWAYS printed, even on panic.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "Panic recovered: %v", r)
		}

		s.PrintDownloadSummary(ctx)
	}()

	if err := s.DownloadPlaylists(ctx, playlistArgs); err != nil {
		logger.Fatalf(ctx, "Download failed: %v", err)
	}
}

// ExecuteExportCommand regenerates the human-readable history projection.
func ExecuteExportCommand(ctx context.Context, cfg *config.Config) {
	stateLock := acquireStateLock(ctx, cfg)
	defer releaseStateLock(ctx, stateLock)

	history := loadHistory(ctx, cfg)

	s := newDownloadService(ctx, cfg, history)

	if err := s.ExportHistory(ctx); err != nil {
		logger.Fatalf(ctx, "Export failed: %v", err)
	}
}

// newDownloadService wires the catalog client and service components together.
func newDownloadService(
	ctx context.Context,
	cfg *config.Config,
	history download.HistoryStore,
) download.Service {
	catalogClient, err := catalog.NewClient(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize catalog client: %v", err)
	}

	urlProcessor := download.NewURLProcessor()
	templateManager := download.NewTemplateManager(ctx, cfg)
	tagProcessor := download.NewTagProcessor()
	transferrer := download.NewTransferrer(cfg, catalogClient)

	return download.NewService(cfg, catalogClient, history, urlProcessor, templateManager, tagProcessor, transferrer)
}

// acquireStateLock takes an exclusive lock on the state directory so
// concurrent runs cannot corrupt the history files.
func acquireStateLock(ctx context.Context, cfg *config.Config) *flock.Flock {
	if err := os.MkdirAll(cfg.StateDir, constants.DefaultFolderPermissions); err != nil {
		logger.Fatalf(ctx, "Failed to create state directory: %v", err)
	}

	stateLock := flock.New(filepath.Join(cfg.StateDir, lockFilename))

	locked, err := stateLock.TryLock()
	if err != nil {
		logger.Fatalf(ctx, "Failed to acquire state lock: %v", err)
	}

	if !locked {
		logger.Fatalf(ctx, "Another instance is already running (lock held: %s)", stateLock.Path())
	}

	return stateLock
}

func releaseStateLock(ctx context.Context, stateLock *flock.Flock) {
	if err := stateLock.Unlock(); err != nil {
		logger.Warnf(ctx, "Failed to release state lock: %v", err)
	}
}

// loadHistory reads the persisted history. Missing or corrupt state files
// degrade to an empty history inside Load, so only I/O errors are fatal.
func loadHistory(ctx context.Context, cfg *config.Config) download.HistoryStore {
	history := download.NewHistoryStore(cfg.StateDir)
	if err := history.Load(ctx); err != nil {
		logger.Fatalf(ctx, "Failed to load download history: %v", err)
	}

	return history
}
