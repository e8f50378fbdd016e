// Package entity defines the core domain types of the sentiment pipeline: the videos a run
// draws from, the polarity-tagged fragments extracted from their transcripts, and the topic
// summaries assembled for the caller. It also holds the domain errors and input validation.
package entity

import (
	"fmt"
	"regexp"
)

const (
	thumbnailURLFormat = "http://img.youtube.com/vi/%s/maxresdefault.jpg"
	watchURLFormat     = "https://www.youtube.com/watch?v=%s"
)

// videoIDPattern matches watch links and short links carrying an 11-character video id.
var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|shorts/|embed/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// VideoRef identifies one candidate video. Identity is ID.
type VideoRef struct {
	ID           string `json:"id"`
	Title        string `json:"title,omitempty"`
	Link         string `json:"link"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// NewVideoRef builds the canonical watch link and thumbnail for a video id.
func NewVideoRef(id string) VideoRef {
	return VideoRef{
		ID:           id,
		Link:         fmt.Sprintf(watchURLFormat, id),
		ThumbnailURL: fmt.Sprintf(thumbnailURLFormat, id),
	}
}

// ParseVideoID extracts the video id from a raw video reference.
// It returns false when the reference carries no recognizable id.
func ParseVideoID(raw string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(raw)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
