package download

//go:generate $MOCKGEN -source=url_processor.go -destination=mocks/url_processor_mock.go

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// URLProcessor defines the interface for turning command-line arguments into playlist IDs.
type URLProcessor interface {
	// ExtractPlaylistIDs parses playlist arguments (raw numeric IDs or playlist URLs)
	// into a deduplicated, order-preserving list of playlist IDs.
	ExtractPlaylistIDs(ctx context.Context, args []string) ([]string, error)
}

// URLProcessorImpl implements the URLProcessor interface.
type URLProcessorImpl struct{}

// ErrInvalidPlaylistArgument indicates an argument that is neither a numeric ID nor a playlist URL.
var ErrInvalidPlaylistArgument = errors.New("invalid playlist argument")

// Playlist arguments are either bare numeric IDs or URLs carrying an id query
// parameter, including the fragment style https://music.163.com/#/playlist?id=N.
//
//nolint:gochecknoglobals // Immutable compiled patterns.
var (
	numericIDPattern      = regexp.MustCompile(`^\d+$`)
	urlIDParameterPattern = regexp.MustCompile(`[?&]id=(\d+)(?:$|[&#])`)
)

// NewURLProcessor creates and returns a new instance of URLProcessorImpl.
func NewURLProcessor() URLProcessor {
	return &URLProcessorImpl{}
}

// ExtractPlaylistIDs parses playlist arguments into a deduplicated list of playlist IDs.
// Any argument that cannot be parsed is a usage error and fails the whole call.
func (up *URLProcessorImpl) ExtractPlaylistIDs(_ context.Context, args []string) ([]string, error) {
	seen := make(map[string]struct{}, len(args))
	result := make([]string, 0, len(args))

	for _, arg := range args {
		id, err := up.parsePlaylistID(arg)
		if err != nil {
			return nil, err
		}

		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}

		result = append(result, id)
	}

	return result, nil
}

func (up *URLProcessorImpl) parsePlaylistID(arg string) (string, error) {
	trimmed := strings.TrimSpace(arg)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty argument", ErrInvalidPlaylistArgument)
	}

	if numericIDPattern.MatchString(trimmed) {
		return trimmed, nil
	}

	if match := urlIDParameterPattern.FindStringSubmatch(trimmed); match != nil {
		return match[1], nil
	}

	return "", fmt.Errorf("%w: '%s'", ErrInvalidPlaylistArgument, arg)
}
