package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"

	"yt-sentiment/internal/domain/entity"
)

const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	// Kind is "asr" for auto-generated tracks.
	Kind string `json:"kind"`
	Name struct {
		SimpleText string `json:"simpleText"`
	} `json:"name"`
}

// matches reports whether the track answers to lang by code or display name.
func (t captionTrack) matches(lang string) bool {
	return strings.EqualFold(t.LanguageCode, lang) || strings.EqualFold(t.Name.SimpleText, lang)
}

type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

// TranscriptClient fetches caption segments from the watch page's caption tracks.
type TranscriptClient struct {
	client *Client
}

// NewTranscriptClient creates a TranscriptClient.
func NewTranscriptClient(client *Client) *TranscriptClient {
	return &TranscriptClient{client: client}
}

// Fetch returns the caption segments of videoID in order, choosing the best track
// for languages. Every failure is wrapped in entity.ErrTranscriptUnavailable.
func (t *TranscriptClient) Fetch(ctx context.Context, videoID string, languages []string) ([]string, error) {
	segments, err := t.fetch(ctx, videoID, languages)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", entity.ErrTranscriptUnavailable, videoID, err)
	}
	return segments, nil
}

func (t *TranscriptClient) fetch(ctx context.Context, videoID string, languages []string) ([]string, error) {
	page, err := t.client.get(ctx, t.client.baseURL+"/watch?v="+url.QueryEscape(videoID))
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	data, err := embeddedJSON(page, ytInitialPlayerResponseMarker)
	if err != nil {
		return nil, fmt.Errorf("ytInitialPlayerResponse: %w", err)
	}

	var player playerResponse
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	if player.Captions == nil {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("no captions: %s", player.PlayabilityStatus.Reason)
		}
		return nil, errors.New("no captions")
	}

	track, ok := pickBestTrack(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, languages)
	if !ok {
		return nil, errors.New("no usable caption track")
	}

	body, err := t.client.get(ctx, track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("caption track: %w", err)
	}

	segments, err := parseTimedText(body)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, errors.New("caption track is empty")
	}

	slog.DebugContext(ctx, "transcript fetched",
		slog.String("video_id", videoID),
		slog.String("language", track.LanguageCode),
		slog.Bool("auto_generated", track.Kind == "asr"),
		slog.Int("segments", len(segments)))
	return segments, nil
}

// pickBestTrack prefers a manual track in a preferred language, then an
// auto-generated one, then any English track. Tracks that need a browser
// proof-of-origin token (exp=xpe) cannot be fetched server-side and are skipped.
func pickBestTrack(tracks []captionTrack, languages []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, tr := range tracks {
		if tr.BaseURL != "" && !strings.Contains(tr.BaseURL, "&exp=xpe") {
			usable = append(usable, tr)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}

	for _, lang := range languages {
		for _, tr := range usable {
			if tr.matches(lang) && tr.Kind != "asr" {
				return tr, true
			}
		}
	}
	for _, lang := range languages {
		for _, tr := range usable {
			if tr.matches(lang) {
				return tr, true
			}
		}
	}
	for _, tr := range usable {
		if strings.HasPrefix(tr.LanguageCode, "en") {
			return tr, true
		}
	}
	return captionTrack{}, false
}

// parseTimedText decodes timedtext XML into unescaped, non-empty segments.
func parseTimedText(body []byte) ([]string, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext: %w", err)
	}

	segments := make([]string, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := strings.Join(strings.Fields(html.UnescapeString(line.Text)), " ")
		if text != "" {
			segments = append(segments, text)
		}
	}
	return segments, nil
}
