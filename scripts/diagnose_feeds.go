package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"yt-sentiment/internal/domain/entity"
	"yt-sentiment/internal/infra/youtube"
	"yt-sentiment/pkg/config"
)

// FeedDiagnostic is the result for one channel feed.
type FeedDiagnostic struct {
	ChannelID    string `json:"channel_id"`
	Status       string `json:"status"` // "OK", "EMPTY", "NO_VIDEO_IDS", "ERROR"
	ItemCount    int    `json:"item_count"`
	VideoIDs     int    `json:"video_ids"`
	FirstTitle   string `json:"first_title,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
}

func main() {
	channels := flag.String("channels", "", "comma-separated channel IDs (default YOUTUBE_CHANNEL_IDS)")
	timeout := flag.Duration("timeout", 30*time.Second, "per-feed timeout")
	out := flag.String("out", "feed_diagnostic_report", "report path without extension")
	flag.Parse()

	ids := config.GetEnvStringList("YOUTUBE_CHANNEL_IDS", nil)
	if *channels != "" {
		ids = strings.Split(*channels, ",")
	}
	if len(ids) == 0 {
		log.Fatal("no channel IDs: set YOUTUBE_CHANNEL_IDS or pass -channels")
	}

	client := youtube.NewClient(nil, youtube.ClientConfig{RequestsPerSecond: 2})
	feed := youtube.NewChannelFeed(client)

	log.Printf("Diagnosing %d channel feeds...", len(ids))
	diagnostics := make([]FeedDiagnostic, 0, len(ids))
	for i, id := range ids {
		id = strings.TrimSpace(id)
		log.Printf("[%d/%d] Diagnosing: %s", i+1, len(ids), id)
		diagnostics = append(diagnostics, diagnoseFeed(feed, id, *timeout))
	}

	if err := writeReport(*out+".txt", diagnostics); err != nil {
		log.Printf("Failed to write report: %v", err)
	}
	if err := writeJSONReport(*out+".json", diagnostics); err != nil {
		log.Printf("Failed to write JSON report: %v", err)
	}
}

func diagnoseFeed(feed *youtube.ChannelFeed, channelID string, timeout time.Duration) FeedDiagnostic {
	diag := FeedDiagnostic{ChannelID: channelID}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	candidates, err := feed.Latest(ctx, channelID)
	diag.ResponseTime = time.Since(start).Milliseconds()
	if err != nil {
		diag.Status = "ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	diag.ItemCount = len(candidates)
	for _, c := range candidates {
		if _, ok := entity.ParseVideoID(c.Link); ok {
			diag.VideoIDs++
		}
	}
	if len(candidates) > 0 {
		diag.FirstTitle = candidates[0].Title
	}

	switch {
	case diag.ItemCount == 0:
		diag.Status = "EMPTY"
	case diag.VideoIDs == 0:
		diag.Status = "NO_VIDEO_IDS"
	default:
		diag.Status = "OK"
	}
	return diag
}

func writeReport(path string, diagnostics []FeedDiagnostic) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close report file: %v", err)
		}
	}()

	if err := renderReport(f, diagnostics, time.Now()); err != nil {
		return err
	}
	log.Printf("Report generated: %s", path)
	return nil
}

func renderReport(w io.Writer, diagnostics []FeedDiagnostic, now time.Time) error {
	counts := map[string]int{}
	for _, d := range diagnostics {
		counts[d.Status]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "===============================================\n")
	fmt.Fprintf(&b, "YouTube Channel Feed Diagnostic Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&b, "Total Channels: %d\n", len(diagnostics))
	fmt.Fprintf(&b, "===============================================\n\n")
	fmt.Fprintf(&b, "OK: %d  EMPTY: %d  NO_VIDEO_IDS: %d  ERROR: %d\n\n",
		counts["OK"], counts["EMPTY"], counts["NO_VIDEO_IDS"], counts["ERROR"])

	for _, d := range diagnostics {
		fmt.Fprintf(&b, "[%s] %s\n", d.Status, d.ChannelID)
		fmt.Fprintf(&b, "  items: %d, video ids: %d, %d ms\n", d.ItemCount, d.VideoIDs, d.ResponseTime)
		if d.FirstTitle != "" {
			fmt.Fprintf(&b, "  latest: %s\n", d.FirstTitle)
		}
		if d.ErrorMessage != "" {
			fmt.Fprintf(&b, "  error: %s\n", d.ErrorMessage)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeJSONReport(path string, diagnostics []FeedDiagnostic) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close JSON report file: %v", err)
		}
	}()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(diagnostics); err != nil {
		return err
	}
	log.Printf("JSON report generated: %s", path)
	return nil
}
