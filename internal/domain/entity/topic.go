package entity

import "time"

const othersLabelPrefix = "others - "

// OthersLabel returns the label of the catch-all topic for a polarity.
func OthersLabel(p Polarity) string {
	return othersLabelPrefix + string(p)
}

// TopicSummary is one labeled group of fragments.
// Count always equals len(Members).
type TopicSummary struct {
	Label    string   `json:"label"`
	Members  []string `json:"members"`
	Count    int      `json:"count"`
	Polarity Polarity `json:"polarity"`
	Others   bool     `json:"others,omitempty"`
}

// NewTopicSummary builds a summary whose Count is derived from members.
func NewTopicSummary(label string, p Polarity, members []string) TopicSummary {
	if members == nil {
		members = []string{}
	}
	return TopicSummary{
		Label:    label,
		Members:  members,
		Count:    len(members),
		Polarity: p,
	}
}

// NewOthersSummary builds the catch-all topic for a polarity. It may have no members.
func NewOthersSummary(p Polarity, members []string) TopicSummary {
	s := NewTopicSummary(OthersLabel(p), p, members)
	s.Others = true
	return s
}

// AnalysisResult is the output of one analysis run for a product.
type AnalysisResult struct {
	RunID          string              `json:"run_id"`
	Product        string              `json:"product"`
	AcceptedVideos []VideoRef          `json:"accepted_videos"`
	SkippedVideos  []SkippedVideo      `json:"skipped_videos,omitempty"`
	PositiveTopics []TopicSummary      `json:"positive_topics"`
	NegativeTopics []TopicSummary      `json:"negative_topics"`
	Failures       map[Polarity]string `json:"failures,omitempty"`
	GeneratedAt    time.Time           `json:"generated_at"`
}

// SkippedVideo records why a candidate video did not contribute to a run.
type SkippedVideo struct {
	VideoID string     `json:"video_id"`
	Reason  SkipReason `json:"reason"`
}

// Topics returns the topic list for a polarity.
func (r *AnalysisResult) Topics(p Polarity) []TopicSummary {
	if p == PolarityNegative {
		return r.NegativeTopics
	}
	return r.PositiveTopics
}

// FragmentCount returns the number of fragments summarized for a polarity.
func (r *AnalysisResult) FragmentCount(p Polarity) int {
	n := 0
	for _, t := range r.Topics(p) {
		n += t.Count
	}
	return n
}

// SentimentShare returns the positive and negative percentages over all summarized fragments.
// Both are 0 when no fragment was summarized.
func (r *AnalysisResult) SentimentShare() (positive, negative float64) {
	pos := r.FragmentCount(PolarityPositive)
	neg := r.FragmentCount(PolarityNegative)
	total := pos + neg
	if total == 0 {
		return 0, 0
	}
	return float64(pos) * 100 / float64(total), float64(neg) * 100 / float64(total)
}
