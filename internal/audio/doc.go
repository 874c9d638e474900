// Package audio reads metadata from exported audio files.
//
// # ID3 Tags
//
// Use the TagReader to read ID3 tags from MP3 files:
//
//	reader := audio.NewTagReader()
//	tags, err := reader.ReadTags(ctx, "/export/Podcasts/Episode 1.mp3")
//
// The reader reports:
//   - Track Title
//   - Artist
//   - Album Title
package audio
