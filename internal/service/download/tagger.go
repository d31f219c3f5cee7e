package download

//go:generate $MOCKGEN -source=tagger.go -destination=mocks/tagger_mock.go

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/oshokin/id3v2/v2"
)

// TagProcessor defines the interface for writing metadata tags to audio files.
type TagProcessor interface {
	WriteTags(ctx context.Context, req *WriteTagsRequest) error
}

// WriteTagsRequest contains parameters for writing metadata to audio files.
type WriteTagsRequest struct {
	// TrackPath is the file path of the audio track.
	TrackPath string
	// Bitrate specifies the obtained bitrate variant, it decides the tag format.
	Bitrate Bitrate
	// TrackTags contains metadata key-value pairs to write.
	TrackTags map[string]string
}

// TagProcessorImpl provides the default implementation of TagProcessor.
type TagProcessorImpl struct{}

// extractFLACCommentResult contains the result of extracting FLAC comment metadata.
type extractFLACCommentResult struct {
	// Comment is the FLAC Vorbis comment metadata block.
	Comment *flacvorbis.MetaDataBlockVorbisComment
	// Index is the index of the comment block in the FLAC file metadata (-1 if not found).
	Index int
}

// ErrEmptyTrackPath indicates that the track file path is empty.
var ErrEmptyTrackPath = errors.New("track path cannot be empty")

// NewTagProcessor creates a new TagProcessor instance.
func NewTagProcessor() TagProcessor {
	return new(TagProcessorImpl)
}

// WriteTags writes metadata to the audio file based on the provided request.
func (tp *TagProcessorImpl) WriteTags(_ context.Context, req *WriteTagsRequest) error {
	if req.TrackPath == "" {
		return ErrEmptyTrackPath
	}

	// Write tags based on the obtained variant (FLAC or MP3).
	if req.Bitrate == BitrateHigh {
		return tp.writeFLACTags(req)
	}

	return tp.writeMP3Tags(req)
}

func (tp *TagProcessorImpl) writeFLACTags(req *WriteTagsRequest) error {
	// Parse the FLAC file.
	f, err := flac.ParseFile(filepath.Clean(req.TrackPath))
	if err != nil {
		return err
	}

	// Extract existing FLAC comments (metadata) from the file.
	commentResult, err := tp.extractFLACComment(req.TrackPath)
	if err != nil {
		return err
	}

	tag := commentResult.Comment

	// If no existing comments are found, create a new metadata block.
	if tag == nil {
		tag = flacvorbis.New()
	}

	// Add tags to the FLAC metadata block.
	if err = tp.addFLACTags(tag, req); err != nil {
		return err
	}

	// Marshal the updated metadata and update the FLAC file's metadata blocks.
	tagMeta := tag.Marshal()
	if commentResult.Index >= 0 {
		f.Meta[commentResult.Index] = &tagMeta
	} else {
		f.Meta = append(f.Meta, &tagMeta)
	}

	// Save the updated FLAC file.
	return f.Save(req.TrackPath)
}

func (tp *TagProcessorImpl) extractFLACComment(filename string) (*extractFLACCommentResult, error) {
	f, err := flac.ParseFile(filepath.Clean(filename))
	if err != nil {
		return nil, err
	}

	// Iterate through the metadata blocks to find the Vorbis comment block.
	for idx, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}

		// Parse the Vorbis comment block.
		var comment *flacvorbis.MetaDataBlockVorbisComment

		comment, err = flacvorbis.ParseFromMetaDataBlock(*meta)
		if err == nil {
			return &extractFLACCommentResult{
				Comment: comment,
				Index:   idx,
			}, nil
		}
	}

	// Return nil comment if no Vorbis comment block is found.
	return &extractFLACCommentResult{
		Comment: nil,
		Index:   -1,
	}, nil
}

func (tp *TagProcessorImpl) addFLACTags(tag *flacvorbis.MetaDataBlockVorbisComment, req *WriteTagsRequest) error {
	// Map of FLAC tag keys to their corresponding values in req.TrackTags.
	flacTags := map[string]string{
		"ALBUM":       req.TrackTags["albumTitle"],
		"ARTIST":      req.TrackTags["trackArtist"],
		"TITLE":       req.TrackTags["trackTitle"],
		"TRACK_ID":    req.TrackTags["trackID"],
		"TRACKNUMBER": req.TrackTags["trackNumber"],
		"PLAYLIST":    req.TrackTags["playlistTitle"],
	}

	// Add each tag to the Vorbis comment block.
	for k, v := range flacTags {
		if v == "" {
			continue
		}

		if err := tag.Add(k, v); err != nil {
			return err
		}
	}

	return nil
}

func (tp *TagProcessorImpl) writeMP3Tags(req *WriteTagsRequest) error {
	// Open the MP3 file for writing metadata.
	//nolint:exhaustruct // ParseFrames intentionally omitted when Parse=false (parsing disabled).
	tag, err := id3v2.Open(req.TrackPath, id3v2.Options{Parse: false})
	if err != nil {
		return err
	}

	defer tag.Close()

	// Set default encoding for the tags.
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	// Add basic metadata tags.
	tag.SetAlbum(req.TrackTags["albumTitle"])
	tag.SetArtist(req.TrackTags["trackArtist"])
	tag.SetTitle(req.TrackTags["trackTitle"])

	if trackNumber := req.TrackTags["trackNumber"]; trackNumber != "" {
		tag.AddTextFrame(
			tag.CommonID("Track number/Position in set"),
			tag.DefaultEncoding(),
			trackNumber,
		)
	}

	// Save the updated MP3 file.
	return tag.Save()
}
