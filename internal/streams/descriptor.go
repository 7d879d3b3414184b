package streams

import (
	"fmt"
	"mime"
	"sort"
	"strings"
)

// Descriptor is one encoding of a source.
type Descriptor struct {
	SourceID      string `json:"source_id"`
	Itag          int    `json:"itag"`
	MimeType      string `json:"mime_type"`
	Bitrate       int    `json:"bitrate"`
	ContentLength int64  `json:"content_length"`
	AudioOnly     bool   `json:"audio_only"`
	URL           string `json:"-"`
}

// Quality returns the comparison metric used for selection.
func (d Descriptor) Quality() int {
	return d.Bitrate
}

// MediaType returns the MIME type without parameters.
func (d Descriptor) MediaType() string {
	mediaType, _, err := mime.ParseMediaType(d.MimeType)
	if err != nil {
		mediaType, _, _ = strings.Cut(d.MimeType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// Extension returns the file extension for the encoding's container.
func (d Descriptor) Extension() string {
	switch d.MediaType() {
	case "audio/mp4":
		return ".m4a"
	case "audio/webm":
		return ".webm"
	default:
		return ".bin"
	}
}

func (d Descriptor) String() string {
	return fmt.Sprintf("itag=%d %s %dbps", d.Itag, d.MediaType(), d.Bitrate)
}

// SelectBest returns the best audio-only descriptor and false when none exist.
func SelectBest(descriptors []Descriptor) (Descriptor, bool) {
	candidates := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if d.AudioOnly {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return Descriptor{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Quality() != b.Quality() {
			return a.Quality() > b.Quality()
		}
		if a.Itag != b.Itag {
			return a.Itag < b.Itag
		}
		return a.MimeType < b.MimeType
	})
	return candidates[0], true
}
