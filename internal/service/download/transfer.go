package download

//go:generate $MOCKGEN -source=transfer.go -destination=mocks/transfer_mock.go

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/weakish/fm163/internal/client/catalog"
	"github.com/weakish/fm163/internal/config"
	"github.com/weakish/fm163/internal/constants"
	"github.com/weakish/fm163/internal/logger"
	"github.com/weakish/fm163/internal/utils"
)

// Transferrer defines the interface for transferring track bytes to disk.
type Transferrer interface {
	// Download fetches the stream URL into a temporary .part file next to trackPath.
	// The caller renames the temporary file after tagging.
	Download(ctx context.Context, streamURL, trackPath string) (*TransferResult, error)
}

// TransferrerImpl implements Transferrer on top of the catalog client.
type TransferrerImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// client fetches track content.
	client catalog.Client
}

// overwriteFileOptions always truncates the target file.
// Leftover .part files indicate incomplete downloads and are safe to overwrite.
const overwriteFileOptions = os.O_WRONLY | os.O_CREATE | os.O_TRUNC

// ErrIncompleteTransfer indicates that the downloaded file size doesn't match the expected size.
var ErrIncompleteTransfer = errors.New("incomplete transfer")

// NewTransferrer creates a Transferrer instance.
func NewTransferrer(cfg *config.Config, client catalog.Client) Transferrer {
	return &TransferrerImpl{
		cfg:    cfg,
		client: client,
	}
}

// Download fetches the stream URL into a temporary .part file next to trackPath.
//
//nolint:funlen,gocognit,cyclop // Function orchestrates the transfer workflow with multiple sequential steps.
func (t *TransferrerImpl) Download(ctx context.Context, streamURL, trackPath string) (*TransferResult, error) {
	// Check if the final file already exists.
	if !t.cfg.ReplaceTracks {
		isExist, existErr := utils.IsFileExist(trackPath)
		if existErr != nil {
			return nil, fmt.Errorf("failed to check if track exists: %w", existErr)
		}

		if isExist {
			logger.Infof(ctx, "Track '%s' already exists, skipping transfer", trackPath)

			return &TransferResult{
				IsExist:         true,
				TempPath:        "",
				BytesDownloaded: 0,
			}, nil
		}
	}

	// Fetch the track.
	fetchResult, fetchErr := t.client.FetchTrack(ctx, streamURL)
	if fetchErr != nil {
		return nil, fmt.Errorf("failed to fetch track: %w", fetchErr)
	}

	defer fetchResult.Body.Close() //nolint:errcheck // Error on close is not critical here.

	// Download to a temporary .part file first for atomic operation.
	tempFilePath := trackPath + ".part"

	f, openErr := os.OpenFile(filepath.Clean(tempFilePath), overwriteFileOptions, constants.DefaultFilePermissions)
	if openErr != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", openErr)
	}

	// Track whether the download succeeded.
	// If not, the .part file is cleaned up on function exit.
	var downloadSucceeded bool

	defer func() {
		closeErr := f.Close()

		if !downloadSucceeded {
			if removeErr := os.Remove(tempFilePath); removeErr != nil && !os.IsNotExist(removeErr) {
				logger.Warnf(ctx, "Failed to clean up temporary file '%s': %v (close error: %v)",
					tempFilePath, removeErr, closeErr)
			}
		}
	}()

	// Initialize the progress tracker.
	var writer io.Writer

	if logger.Level() <= zap.InfoLevel {
		bar := progressbar.DefaultBytes(
			fetchResult.TotalBytes,
			"Downloading",
		)

		writer = io.MultiWriter(f, bar)
	} else {
		writer = f
	}

	var (
		bytesWritten int64
		err          error
	)

	if t.cfg.ParsedDownloadSpeedLimit == 0 {
		bytesWritten, err = io.Copy(writer, fetchResult.Body)
	} else {
		for {
			var n int64

			n, err = io.CopyN(writer, fetchResult.Body, t.cfg.ParsedDownloadSpeedLimit)
			bytesWritten += n

			if errors.Is(err, io.EOF) {
				err = nil

				break
			}

			if err != nil {
				break
			}

			// Throttle to respect the speed limit.
			time.Sleep(time.Second)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	// Verify that we downloaded the expected number of bytes.
	if fetchResult.TotalBytes >= 0 && bytesWritten != fetchResult.TotalBytes {
		return nil, fmt.Errorf(
			"%w: wrote %d bytes, expected %d bytes",
			ErrIncompleteTransfer,
			bytesWritten,
			fetchResult.TotalBytes,
		)
	}

	// Mark the download as successful to prevent cleanup by defer.
	// The .part file will be renamed to its final name by the caller after tags are written.
	downloadSucceeded = true

	return &TransferResult{
		IsExist:         false,
		TempPath:        tempFilePath,
		BytesDownloaded: bytesWritten,
	}, nil
}
