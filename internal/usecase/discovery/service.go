// Package discovery finds candidate videos for a product and turns raw video
// references into deduplicated VideoRefs.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"yt-sentiment/internal/domain/entity"
)

// Candidate is one raw search or feed hit.
type Candidate struct {
	// Link is the playable URL the video id is parsed from.
	Link string
	// Title is used to match channel feed entries against the product.
	Title string
}

// Searcher runs a video search.
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]Candidate, error)
}

// ChannelFeed lists a channel's most recent uploads.
type ChannelFeed interface {
	Latest(ctx context.Context, channelID string) ([]Candidate, error)
}

// Result holds the deduplicated references in encounter order, plus the
// candidates that were dropped because no video id could be parsed.
type Result struct {
	// Query is the normalized search string that was sent.
	Query string
	// Refs are unique by video id, first encounter wins.
	Refs []entity.VideoRef
	// Dropped are skipped outcomes with reason invalid_id.
	Dropped []entity.VideoOutcome
}

// Service discovers videos for a product.
type Service struct {
	searcher Searcher
	// feed is optional; nil disables channel discovery.
	feed       ChannelFeed
	channelIDs []string
}

// NewService creates a discovery service. feed may be nil, in which case
// channelIDs are ignored.
func NewService(searcher Searcher, feed ChannelFeed, channelIDs []string) *Service {
	return &Service{searcher: searcher, feed: feed, channelIDs: channelIDs}
}

// BuildQuery normalizes a product name into a review search query. Commas
// split the search tool's own argument syntax, so they become spaces.
func BuildQuery(product string) string {
	product = strings.ReplaceAll(product, ",", " ")
	return strings.Join(strings.Fields(product), " ") + " review"
}

// Discover searches for up to count videos about product. A failed search is
// fatal and wrapped in entity.ErrDiscovery. Channel feed failures are logged and
// skipped.
func (s *Service) Discover(ctx context.Context, product string, count int) (*Result, error) {
	query := BuildQuery(product)

	candidates, err := s.searcher.Search(ctx, query, count)
	if err != nil {
		return nil, fmt.Errorf("%w: search %q: %w", entity.ErrDiscovery, query, err)
	}

	if s.feed != nil {
		candidates = append(candidates, s.fromChannels(ctx, product)...)
	}

	result := Dedupe(candidates)
	result.Query = query

	slog.InfoContext(ctx, "videos discovered",
		slog.String("query", query),
		slog.Int("candidates", len(candidates)),
		slog.Int("unique", len(result.Refs)),
		slog.Int("invalid", len(result.Dropped)))

	return result, nil
}

// fromChannels returns feed entries whose title mentions the product.
func (s *Service) fromChannels(ctx context.Context, product string) []Candidate {
	needle := strings.ToLower(strings.TrimSpace(product))

	var out []Candidate
	for _, id := range s.channelIDs {
		items, err := s.feed.Latest(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "channel feed unavailable",
				slog.String("channel_id", id),
				slog.Any("error", err))
			continue
		}
		for _, it := range items {
			if strings.Contains(strings.ToLower(it.Title), needle) {
				out = append(out, it)
			}
		}
	}
	return out
}

// Dedupe parses each candidate's video id and keeps the first occurrence of
// every id. Candidates without a parseable id are dropped and reported.
func Dedupe(candidates []Candidate) *Result {
	result := &Result{Refs: make([]entity.VideoRef, 0, len(candidates))}
	seen := make(map[string]struct{}, len(candidates))

	for _, c := range candidates {
		id, ok := entity.ParseVideoID(c.Link)
		if !ok {
			result.Dropped = append(result.Dropped, entity.Skipped(
				entity.VideoRef{Link: c.Link, Title: c.Title},
				entity.SkipInvalidID,
				fmt.Errorf("%w: no video id in %q", entity.ErrInvalidInput, c.Link),
			))
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		ref := entity.NewVideoRef(id)
		ref.Title = c.Title
		result.Refs = append(result.Refs, ref)
	}

	return result
}
