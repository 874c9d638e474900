package audio

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/handiism/media-exporter/internal/model"
)

// TagReader reads ID3 tags from exported audio files.
//
// TagReader uses the id3v2 library and only parses the text frames it
// reports (title, artist, album); attached pictures and other frames are
// skipped.
//
// Example:
//
//	reader := NewTagReader()
//	if reader.Supports(path) {
//	    tags, err := reader.ReadTags(ctx, path)
//	}
type TagReader struct {
	extensions map[string]bool
}

// NewTagReader creates a TagReader for .mp3 files.
func NewTagReader() *TagReader {
	return &TagReader{extensions: map[string]bool{".mp3": true}}
}

// Supports reports whether path has an extension the reader handles.
func (r *TagReader) Supports(path string) bool {
	return r.extensions[strings.ToLower(filepath.Ext(path))]
}

// ReadTags opens the file at path and returns its title, artist and album.
//
// A file without an ID3 tag yields nil tags and no error. Returns an error
// if the file cannot be opened or its tag is corrupt.
func (r *TagReader) ReadTags(ctx context.Context, path string) (*model.AudioTags, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tag, err := id3v2.Open(path, id3v2.Options{
		Parse:       true,
		ParseFrames: []string{"Title", "Artist", "Album"},
	})
	if err != nil {
		return nil, err
	}
	defer tag.Close()

	tags := &model.AudioTags{
		Title:  tag.Title(),
		Artist: tag.Artist(),
		Album:  tag.Album(),
	}
	if *tags == (model.AudioTags{}) {
		return nil, nil
	}
	return tags, nil
}
