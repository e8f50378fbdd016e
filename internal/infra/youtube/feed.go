package youtube

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mmcdole/gofeed"

	"yt-sentiment/internal/usecase/discovery"
)

// ChannelFeed reads a channel's uploads from its public Atom feed.
type ChannelFeed struct {
	client *Client
}

// NewChannelFeed creates a ChannelFeed.
func NewChannelFeed(client *Client) *ChannelFeed {
	return &ChannelFeed{client: client}
}

// Latest implements discovery.ChannelFeed.
func (f *ChannelFeed) Latest(ctx context.Context, channelID string) ([]discovery.Candidate, error) {
	feedURL := f.client.baseURL + "/feeds/videos.xml?channel_id=" + url.QueryEscape(channelID)

	body, err := f.client.get(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("channel feed %s: %w", channelID, err)
	}

	// gofeed parsers keep per-parse state, so each call gets its own.
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse channel feed %s: %w", channelID, err)
	}

	out := make([]discovery.Candidate, 0, len(feed.Items))
	for _, it := range feed.Items {
		out = append(out, discovery.Candidate{Link: it.Link, Title: it.Title})
	}
	return out, nil
}
