package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"yt-sentiment/internal/resilience"
	"yt-sentiment/internal/resilience/retry"
	"yt-sentiment/internal/usecase/discovery"
)

const (
	ytInitialDataMarker = "var ytInitialData = "
	// videosOnlyFilter is the results-page "Type: Video" filter.
	videosOnlyFilter = "EgIQAQ%3D%3D"
	// maxDataAPIResults is the Data API's page size limit.
	maxDataAPIResults = 50
)

// Searcher finds videos through the Data API when an API key is configured,
// otherwise by reading ytInitialData from the public results page.
type Searcher struct {
	client  *Client
	dataAPI *ytapi.Service
}

// NewSearcher creates a Searcher. An empty apiKey selects the results-page
// fallback. Extra options are applied to the Data API service.
func NewSearcher(ctx context.Context, client *Client, apiKey string, opts ...option.ClientOption) (*Searcher, error) {
	s := &Searcher{client: client}
	if apiKey == "" {
		slog.Info("youtube data api key not set, searching the results page")
		return s, nil
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	s.dataAPI = svc
	return s, nil
}

// Search implements discovery.Searcher.
func (s *Searcher) Search(ctx context.Context, query string, count int) ([]discovery.Candidate, error) {
	if count <= 0 {
		return []discovery.Candidate{}, nil
	}
	if s.dataAPI != nil {
		return s.searchDataAPI(ctx, query, count)
	}
	return s.searchResultsPage(ctx, query, count)
}

func (s *Searcher) searchDataAPI(ctx context.Context, query string, count int) ([]discovery.Candidate, error) {
	resp, err := resilience.Call(ctx, s.client.circuitBreaker, s.client.retryConfig, func() (*ytapi.SearchListResponse, error) {
		resp, err := s.dataAPI.Search.List([]string{"snippet"}).
			Q(query).
			Type("video").
			MaxResults(int64(min(count, maxDataAPIResults))).
			Context(ctx).
			Do()
		if err != nil {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) {
				return nil, &retry.HTTPError{StatusCode: apiErr.Code, Message: apiErr.Message}
			}
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("youtube data api search: %w", err)
	}

	out := make([]discovery.Candidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		c := discovery.Candidate{}
		if item.Id != nil && item.Id.VideoId != "" {
			c.Link = watchURL(item.Id.VideoId)
		}
		if item.Snippet != nil {
			c.Title = item.Snippet.Title
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Searcher) searchResultsPage(ctx context.Context, query string, count int) ([]discovery.Candidate, error) {
	pageURL := s.client.baseURL + "/results?search_query=" + url.QueryEscape(query) + "&sp=" + videosOnlyFilter

	page, err := s.client.get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("youtube results page: %w", err)
	}

	data, err := embeddedJSON(page, ytInitialDataMarker)
	if err != nil {
		return nil, fmt.Errorf("youtube results page: ytInitialData: %w", err)
	}

	return videosFromInitialData(data, count), nil
}

type textRuns struct {
	Runs []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

type videoRenderer struct {
	VideoID string   `json:"videoId"`
	Title   textRuns `json:"title"`
}

// videosFromInitialData walks ytInitialData depth-first and collects
// videoRenderer entries in page order.
func videosFromInitialData(data []byte, limit int) []discovery.Candidate {
	results := make([]discovery.Candidate, 0, limit)

	var walk func(v json.RawMessage)
	walk = func(v json.RawMessage) {
		if len(results) >= limit || len(v) == 0 {
			return
		}
		switch v[0] {
		case '{':
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(v, &obj); err != nil {
				return
			}
			if raw, ok := obj["videoRenderer"]; ok {
				var vr videoRenderer
				if err := json.Unmarshal(raw, &vr); err == nil && vr.VideoID != "" {
					title := ""
					if len(vr.Title.Runs) > 0 {
						title = vr.Title.Runs[0].Text
					}
					results = append(results, discovery.Candidate{Link: watchURL(vr.VideoID), Title: title})
					return
				}
			}
			// Map order is random; walk keys in document order.
			for _, key := range orderedKeys(v) {
				walk(obj[key])
			}
		case '[':
			var arr []json.RawMessage
			if err := json.Unmarshal(v, &arr); err != nil {
				return
			}
			for _, item := range arr {
				walk(item)
			}
		}
	}
	walk(data)
	return results
}

// orderedKeys returns the top-level keys of a JSON object in document order.
func orderedKeys(obj json.RawMessage) []string {
	dec := json.NewDecoder(bytes.NewReader(obj))
	if _, err := dec.Token(); err != nil {
		return nil
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys
		}
	}
	return keys
}

func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
