// Command analyze runs one sentiment analysis for a product and prints the
// result on stdout.
//
// Usage:
//
//	analyze -product "Pixel 9" [-count 20] [-format json|text] [-search "battery life" -k 10] [-reset-schema]
//
// With DATABASE_URL unset the fragments live in an in-memory store, so -search
// only sees the run made by the same invocation.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"yt-sentiment/internal/app"
	"yt-sentiment/internal/domain/entity"
	"yt-sentiment/internal/observability/logging"
	"yt-sentiment/internal/usecase/analysis"
	"yt-sentiment/internal/usecase/search"
)

type options struct {
	product string
	count   int
	format  string
	query   string
	topK    int
	reset   bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.product, "product", "", "product name to analyze")
	fs.IntVar(&o.count, "count", 0, "number of videos to search for (0 = VIDEO_SEARCH_COUNT)")
	fs.StringVar(&o.format, "format", "json", "output format: json or text")
	fs.StringVar(&o.query, "search", "", "similarity search over stored fragments")
	fs.IntVar(&o.topK, "k", 0, "hits per polarity for -search (0 = SEARCH_TOP_K)")
	fs.BoolVar(&o.reset, "reset-schema", false, "drop and recreate the pgvector partition tables first")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.product == "" && o.query == "" {
		return nil, errors.New("one of -product or -search is required")
	}
	if o.format != "json" && o.format != "text" {
		return nil, fmt.Errorf("unknown format %q", o.format)
	}
	return &o, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	logger := logging.NewTextLogger()
	slog.SetDefault(logger)

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Error("invalid arguments", slog.Any("error", err))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, logger, opts, os.Stdout))
}

func run(ctx context.Context, logger *slog.Logger, opts *options, stdout io.Writer) int {
	buildOpts := app.OptionsFromEnv()
	buildOpts.ResetSchema = opts.reset
	pipeline, err := app.Build(ctx, logger, buildOpts)
	if err != nil {
		logger.Error("failed to build pipeline", slog.Any("error", err))
		return 1
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.Warn("failed to close pipeline", slog.Any("error", err))
		}
	}()

	code := 0
	if opts.product != "" {
		result, err := pipeline.Aggregator.Run(ctx, analysis.Request{Product: opts.product, Count: opts.count})
		if result == nil {
			logger.Error("analysis failed", slog.Any("error", err))
			return 1
		}
		if err != nil {
			logger.Warn("analysis finished with failures", slog.Any("error", err))
			code = 3
		}
		if err := writeResult(stdout, opts.format, result); err != nil {
			logger.Error("failed to write result", slog.Any("error", err))
			return 1
		}
	}

	if opts.query != "" {
		hits, err := pipeline.Search.Search(ctx, opts.query, opts.topK)
		if err != nil {
			logger.Error("search failed", slog.Any("error", err))
			return 1
		}
		if err := writeSearch(stdout, opts.format, hits); err != nil {
			logger.Error("failed to write search result", slog.Any("error", err))
			return 1
		}
	}

	return code
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeResult(w io.Writer, format string, r *entity.AnalysisResult) error {
	if format == "json" {
		return writeJSON(w, r)
	}

	pos, neg := r.SentimentShare()
	fmt.Fprintf(w, "%s  (run %s)\n", r.Product, r.RunID)
	fmt.Fprintf(w, "videos: %d accepted, %d skipped\n", len(r.AcceptedVideos), len(r.SkippedVideos))
	fmt.Fprintf(w, "sentiment: %.1f%% positive, %.1f%% negative\n", pos, neg)

	for _, p := range entity.Polarities() {
		fmt.Fprintf(w, "\n%s topics:\n", p)
		if msg, failed := r.Failures[p]; failed {
			fmt.Fprintf(w, "  unavailable: %s\n", msg)
			continue
		}
		for _, t := range r.Topics(p) {
			fmt.Fprintf(w, "  [%d] %s\n", t.Count, t.Label)
		}
	}

	if len(r.AcceptedVideos) > 0 {
		fmt.Fprintln(w, "\nsources:")
		for _, v := range r.AcceptedVideos {
			fmt.Fprintf(w, "  %s\n", v.Link)
		}
	}
	return nil
}

func writeSearch(w io.Writer, format string, res *search.Result) error {
	if format == "json" {
		return writeJSON(w, res)
	}

	fmt.Fprintf(w, "search: %q\n", res.Query)
	for _, group := range []struct {
		name string
		hits []entity.SimilarFragment
	}{{"positive", res.Positive}, {"negative", res.Negative}} {
		fmt.Fprintf(w, "\n%s:\n", group.name)
		for _, h := range group.hits {
			fmt.Fprintf(w, "  %.3f  %s\n", h.Score, h.Text)
		}
	}
	return nil
}
