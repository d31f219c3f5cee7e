package catalog

import (
	"fmt"
	"strconv"
)

// parsePlaylistFromGraphQL converts a GraphQL playlist response to a Playlist struct.
// TrackIDs are filled by the caller while parsing the playlist's tracks.
func parsePlaylistFromGraphQL(data map[string]any, playlistID string) (*Playlist, error) {
	playlist := &Playlist{}

	// The requested ID is authoritative, the response echoes it as a string.
	parsedID, err := strconv.ParseInt(playlistID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid playlist ID: %w", err)
	}

	playlist.ID = parsedID

	if title, ok := data["title"].(string); ok {
		playlist.Title = title
	}

	return playlist, nil
}

// parseTrackFromGraphQL converts a GraphQL track response to a Track struct.
func parseTrackFromGraphQL(data map[string]any) (*Track, error) {
	track := &Track{}

	// Parse track ID. GraphQL returns IDs as strings.
	rawID, ok := data["id"].(string)
	if !ok {
		return nil, ErrUnexpectedPlaylistFormat
	}

	parsedID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid track ID: %w", err)
	}

	track.ID = parsedID

	if title, titleOk := data["title"].(string); titleOk {
		track.Title = title
	}

	if albumTitle, albumOk := data["albumTitle"].(string); albumOk {
		track.AlbumTitle = albumTitle
	}

	if pageURL, pageOk := data["pageUrl"].(string); pageOk {
		track.PageURL = pageURL
	}

	// JSON numbers decode as float64.
	if position, positionOk := data["position"].(float64); positionOk {
		track.Position = int64(position)
	}

	if duration, durationOk := data["duration"].(float64); durationOk {
		track.Duration = int64(duration)
	}

	// Parse artists.
	if artistsData, artistsOk := data["artists"].([]any); artistsOk {
		for _, artistData := range artistsData {
			artistMap, artistOk := artistData.(map[string]any)
			if !artistOk {
				continue
			}

			if name, nameOk := artistMap["name"].(string); nameOk {
				track.ArtistNames = append(track.ArtistNames, name)
			}
		}
	}

	// Parse available bitrates.
	if bitratesData, bitratesOk := data["availableBitrates"].([]any); bitratesOk {
		for _, bitrateData := range bitratesData {
			if bitrate, bitrateOk := bitrateData.(string); bitrateOk && bitrate != "" {
				track.AvailableBitrates = append(track.AvailableBitrates, bitrate)
			}
		}
	}

	return track, nil
}
