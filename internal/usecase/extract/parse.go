package extract

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"yt-sentiment/internal/domain/entity"
)

const (
	fieldPositive = "positive_sentiment"
	fieldNegative = "negative_sentiment"
)

// fencePattern captures the body of the first fenced code block.
var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// Sentiment is the typed form of a structured completion.
type Sentiment struct {
	// Positive holds the positive_sentiment sentences, blanks removed.
	Positive []string
	// Negative holds the negative_sentiment sentences, blanks removed.
	Negative []string
}

// wireSentiment uses pointers so a missing field is distinguishable from an empty list.
type wireSentiment struct {
	Positive *[]string `json:"positive_sentiment"`
	Negative *[]string `json:"negative_sentiment"`
}

// ParseSentiment decodes a structured completion. It fails closed with
// *entity.ParseError when the JSON is malformed or either list is absent or null.
// Blank sentences are dropped.
func ParseSentiment(raw string) (Sentiment, error) {
	body := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(body); m != nil {
		body = strings.TrimSpace(m[1])
	} else if i, j := strings.Index(body, "{"), strings.LastIndex(body, "}"); i >= 0 && j > i {
		body = body[i : j+1]
	}

	var w wireSentiment
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return Sentiment{}, &entity.ParseError{Raw: raw, Err: err}
	}
	if w.Positive == nil {
		return Sentiment{}, &entity.ParseError{Field: fieldPositive, Raw: raw, Err: errors.New("missing list")}
	}
	if w.Negative == nil {
		return Sentiment{}, &entity.ParseError{Field: fieldNegative, Raw: raw, Err: errors.New("missing list")}
	}

	return Sentiment{
		Positive: compact(*w.Positive),
		Negative: compact(*w.Negative),
	}, nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
