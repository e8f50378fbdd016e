package entity

import "fmt"

// Polarity is the top-level partition of all fragments.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// Polarities returns both polarities in the order results are reported.
func Polarities() []Polarity {
	return []Polarity{PolarityPositive, PolarityNegative}
}

// Valid reports whether p is one of the known polarities.
func (p Polarity) Valid() bool {
	return p == PolarityPositive || p == PolarityNegative
}

// ParsePolarity converts a string into a Polarity.
func ParsePolarity(s string) (Polarity, error) {
	p := Polarity(s)
	if !p.Valid() {
		return "", &ValidationError{Field: "polarity", Message: fmt.Sprintf("unknown polarity %q", s)}
	}
	return p, nil
}

// SentimentFragment is one extracted sentiment-bearing sentence.
type SentimentFragment struct {
	Text          string
	Polarity      Polarity
	SourceVideoID string
}

// EmbeddingRecord is the persisted form of a fragment: its text and embedding vector.
type EmbeddingRecord struct {
	Text     string
	Polarity Polarity
	Vector   []float32
}

// SimilarFragment is a stored fragment returned by a similarity search.
type SimilarFragment struct {
	Text     string   `json:"text"`
	Polarity Polarity `json:"sentiment"`
	Score    float64  `json:"score"`
}
