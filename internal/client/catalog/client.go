package catalog

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/machinebox/graphql"

	"github.com/weakish/fm163/internal/config"
	"github.com/weakish/fm163/internal/logger"
	http_transport "github.com/weakish/fm163/internal/transport/http"
	"github.com/weakish/fm163/internal/utils"
)

// Client defines the interface for interacting with the catalog API.
type Client interface {
	// FetchTrack fetches track audio content from the specified stream URL.
	FetchTrack(ctx context.Context, trackURL string) (*FetchTrackResult, error)
	// GetBaseURL returns the base URL of the catalog API.
	GetBaseURL() string
	// GetPlaylistsMetadata resolves the specified playlist IDs along with their tracks.
	GetPlaylistsMetadata(ctx context.Context, playlistIDs []string) (*GetPlaylistsMetadataResponse, error)
	// GetStreamMetadata retrieves streaming metadata for a specific track and bitrate.
	GetStreamMetadata(ctx context.Context, trackID, bitrate string) (*StreamMetadata, error)
}

// ClientImpl implements the Client interface for interacting with the catalog API.
type ClientImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// baseURL is the base URL for API requests.
	baseURL string
	// httpClient is the HTTP client for making requests.
	httpClient *http.Client
	// graphQLClient is the GraphQL client for making queries.
	graphQLClient *graphql.Client
	// playlistsCache caches playlist metadata to reduce duplicate API calls for the same playlists.
	playlistsCache *lru.Cache[string, *Playlist]
}

const (
	// catalogAPIGraphQLURI is the URI path for the GraphQL endpoint.
	catalogAPIGraphQLURI = "api/v1/graphql"
	// catalogAPIStreamMetadataURI is the URI path for the stream metadata endpoint.
	catalogAPIStreamMetadataURI = "api/tiny/track/stream"

	// authCookieName is the name of the session cookie carrying the auth token.
	authCookieName = "MUSIC_U"

	// playlistsCacheSize defines the maximum number of playlist entries to cache.
	// Playlists don't change during a run, so repeated IDs on the command line hit the cache.
	playlistsCacheSize = 2000
)

// NewClient creates and returns a new instance of ClientImpl.
// It initializes the HTTP and GraphQL clients with the provided configuration.
func NewClient(cfg *config.Config) (Client, error) {
	// Create a cookie jar to manage cookies for the HTTP client.
	cookies, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	// Parse the base URL for the catalog API.
	baseURL, err := url.Parse(cfg.CatalogBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid host URL: %w", err)
	}

	// Set the authentication cookie when a token is configured.
	// Anonymous access still works for public playlists.
	if cfg.AuthToken != "" {
		cookie := &http.Cookie{
			Name:  authCookieName,
			Value: cfg.AuthToken,
		}
		cookies.SetCookies(baseURL, []*http.Cookie{cookie})
	}

	// Initialize the HTTP client with custom transport and timeout.
	httpClient := &http.Client{
		Transport: http_transport.NewUserAgentInjector(
			http_transport.NewLogTransport(http.DefaultTransport, 0),
			utils.NewSimpleUserAgentProvider(http_transport.DefaultUserAgent)),
		Jar:     cookies,
		Timeout: http_transport.DefaultTimeout,
	}

	// Initialize the GraphQL client.
	graphQLURL := baseURL.JoinPath(catalogAPIGraphQLURI)
	graphqlClient := graphql.NewClient(graphQLURL.String(), graphql.WithHTTPClient(httpClient))

	playlistsCache, err := lru.New[string, *Playlist](playlistsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlists cache: %w", err)
	}

	client := &ClientImpl{
		cfg:            cfg,
		baseURL:        baseURL.String(),
		httpClient:     httpClient,
		graphQLClient:  graphqlClient,
		playlistsCache: playlistsCache,
	}

	return client, nil
}

// FetchTrack fetches track audio content from the specified stream URL.
func (c *ClientImpl) FetchTrack(ctx context.Context, trackURL string) (*FetchTrackResult, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	// Add a Range header to request partial content.
	request.Header.Add("Range", "bytes=0-")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusPartialContent {
		response.Body.Close() //nolint:gosec // Error on close is not critical here.

		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return &FetchTrackResult{
		Body:       response.Body,
		TotalBytes: response.ContentLength,
	}, nil
}

// GetBaseURL returns the base URL of the catalog API.
func (c *ClientImpl) GetBaseURL() string {
	return c.baseURL
}

// GetPlaylistsMetadata resolves the specified playlist IDs along with their tracks.
// Uses an LRU cache to avoid redundant API calls for the same playlists.
// Note: Tracks are not cached from playlist responses to ensure fresh bitrate data.
func (c *ClientImpl) GetPlaylistsMetadata(
	ctx context.Context,
	playlistIDs []string,
) (*GetPlaylistsMetadataResponse, error) {
	playlists := make(map[string]*Playlist)
	tracks := make(map[string]*Track)
	uncachedIDs := make([]string, 0, len(playlistIDs))

	// Check cache first for each playlist ID.
	for _, id := range playlistIDs {
		if cached, ok := c.playlistsCache.Get(id); ok {
			playlists[id] = cached
			logger.Debugf(ctx, "Playlist cache hit for ID: %s", id)
		} else {
			uncachedIDs = append(uncachedIDs, id)
		}
	}

	for _, id := range uncachedIDs {
		playlist, playlistTracks, err := c.getPlaylistViaGraphQL(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve playlist %s: %w", id, err)
		}

		c.playlistsCache.Add(id, playlist)
		playlists[id] = playlist

		for trackID, track := range playlistTracks {
			tracks[trackID] = track
		}
	}

	return &GetPlaylistsMetadataResponse{
		Tracks:    tracks,
		Playlists: playlists,
	}, nil
}

// GetStreamMetadata retrieves streaming metadata for a specific track and bitrate.
// Throttled responses are retried with a randomized pause between attempts.
func (c *ClientImpl) GetStreamMetadata(ctx context.Context, trackID, bitrate string) (*StreamMetadata, error) {
	query := url.Values{}
	query.Set("id", trackID)
	query.Set("bitrate", bitrate)

	var result *StreamMetadata

	for i := range c.cfg.RetryAttemptsCount {
		fetchResult, err := fetchJSONWithQuery[GetStreamMetadataResponse](
			c,
			ctx,
			catalogAPIStreamMetadataURI,
			query,
		)
		if err == nil {
			result = fetchResult.Data.Result

			break
		}

		// Retry on specific HTTP status codes.
		if i < c.cfg.RetryAttemptsCount-1 && fetchResult != nil && fetchResult.StatusCode == http.StatusTeapot {
			logger.Infof(ctx, "Retrying due to error (%d attempts left): %v", c.cfg.RetryAttemptsCount-i-1, err)
			utils.RandomPause(c.cfg.ParsedMinRetryPause, c.cfg.ParsedMaxRetryPause)

			continue
		}

		return nil, err
	}

	if result == nil {
		return nil, ErrFailedToFetchStreamMetadata
	}

	return result, nil
}

// getPlaylistViaGraphQL fetches a single playlist with its tracks using GraphQL.
func (c *ClientImpl) getPlaylistViaGraphQL(
	ctx context.Context,
	playlistID string,
) (*Playlist, map[string]*Track, error) {
	graphqlRequest := graphql.NewRequest(`
		query getPlaylistTracks($ids: [ID!]!) {
			getPlaylists(ids: $ids) {
				id
				title
				tracks {
					...PlaylistTrackData
				}
			}
		}

		fragment PlaylistTrackData on Track {
			id
			title
			position
			duration
			pageUrl
			albumTitle
			artists {
				name
			}
			availableBitrates
		}
	`)

	graphqlRequest.Header.Add("X-Auth-Token", c.cfg.AuthToken)
	graphqlRequest.Var("ids", []string{playlistID})

	var graphQLResponse map[string]any
	if err := c.graphQLClient.Run(ctx, graphqlRequest, &graphQLResponse); err != nil {
		return nil, nil, err
	}

	// Navigate the response map manually.
	data, ok := graphQLResponse["getPlaylists"].([]any)
	if !ok || len(data) == 0 {
		return nil, nil, ErrPlaylistNotFound
	}

	playlistData, dataOk := data[0].(map[string]any)
	if !dataOk {
		return nil, nil, ErrUnexpectedPlaylistFormat
	}

	playlist, err := parsePlaylistFromGraphQL(playlistData, playlistID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse playlist: %w", err)
	}

	// Parse tracks in playlist order.
	tracks := make(map[string]*Track)

	if tracksData, tracksOk := playlistData["tracks"].([]any); tracksOk {
		for _, trackData := range tracksData {
			trackMap, trackOk := trackData.(map[string]any)
			if !trackOk {
				continue
			}

			track, parseErr := parseTrackFromGraphQL(trackMap)
			if parseErr != nil {
				logger.Warnf(ctx, "Failed to parse track: %v", parseErr)
				continue
			}

			tracks[strconv.FormatInt(track.ID, 10)] = track
			playlist.TrackIDs = append(playlist.TrackIDs, track.ID)
		}
	}

	return playlist, tracks, nil
}

//nolint:revive // Has no sense, it's cause Go doesn't allow struct methods to be generic.
func fetchJSONWithQuery[T any](
	c *ClientImpl,
	ctx context.Context,
	uri string,
	query url.Values,
) (*FetchJSONResult[T], error) {
	route, err := url.JoinPath(c.baseURL, uri)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, route, http.NoBody)
	if err != nil {
		return nil, err
	}

	if query != nil {
		request.URL.RawQuery = query.Encode()
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return &FetchJSONResult[T]{
			Data:       nil,
			StatusCode: response.StatusCode,
		}, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	var result T
	if err = json.NewDecoder(response.Body).Decode(&result); err != nil {
		return &FetchJSONResult[T]{
			Data:       nil,
			StatusCode: response.StatusCode,
		}, err
	}

	return &FetchJSONResult[T]{
		Data:       &result,
		StatusCode: response.StatusCode,
	}, nil
}
