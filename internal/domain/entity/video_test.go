package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantID string
		wantOK bool
	}{
		{name: "watch link", raw: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", wantID: "dQw4w9WgXcQ", wantOK: true},
		{name: "watch link with extra params", raw: "https://www.youtube.com/watch?feature=share&v=abcDEF_12-3&t=10", wantID: "abcDEF_12-3", wantOK: true},
		{name: "short link", raw: "https://youtu.be/dQw4w9WgXcQ?si=x", wantID: "dQw4w9WgXcQ", wantOK: true},
		{name: "shorts link", raw: "https://www.youtube.com/shorts/dQw4w9WgXcQ", wantID: "dQw4w9WgXcQ", wantOK: true},
		{name: "channel link", raw: "https://www.youtube.com/@somechannel", wantOK: false},
		{name: "id too short", raw: "https://youtu.be/abc", wantOK: false},
		{name: "empty", raw: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ParseVideoID(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestNewVideoRef(t *testing.T) {
	ref := NewVideoRef("dQw4w9WgXcQ")

	assert.Equal(t, "dQw4w9WgXcQ", ref.ID)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", ref.Link)
	assert.Equal(t, "http://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", ref.ThumbnailURL)
}

func TestVideoOutcome(t *testing.T) {
	ref := NewVideoRef("dQw4w9WgXcQ")
	pos := []SentimentFragment{{Text: "great battery", Polarity: PolarityPositive, SourceVideoID: ref.ID}}

	accepted := Accepted(ref, pos, nil)
	assert.True(t, accepted.IsAccepted())
	assert.Equal(t, pos, accepted.Fragments(PolarityPositive))
	assert.Empty(t, accepted.Fragments(PolarityNegative))

	skipped := Skipped(ref, SkipTranscriptUnavailable, ErrTranscriptUnavailable)
	assert.False(t, skipped.IsAccepted())
	assert.Equal(t, SkipTranscriptUnavailable, skipped.Reason)
	assert.ErrorIs(t, skipped.Err, ErrTranscriptUnavailable)
}
