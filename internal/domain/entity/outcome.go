package entity

// OutcomeStatus tells whether a video contributed fragments to a run.
type OutcomeStatus string

const (
	OutcomeAccepted OutcomeStatus = "accepted"
	OutcomeSkipped  OutcomeStatus = "skipped"
)

// SkipReason names why a video was skipped.
type SkipReason string

const (
	SkipInvalidID             SkipReason = "invalid_id"
	SkipTranscriptUnavailable SkipReason = "transcript_unavailable"
	SkipExtractionFailed      SkipReason = "extraction_failed"
	SkipParseError            SkipReason = "parse_error"
)

// VideoOutcome is the result of processing one video: either accepted with its
// fragments, or skipped with a reason.
type VideoOutcome struct {
	Ref      VideoRef
	Status   OutcomeStatus
	Reason   SkipReason
	Positive []SentimentFragment
	Negative []SentimentFragment
	Err      error
}

// Accepted builds an accepted outcome.
func Accepted(ref VideoRef, positive, negative []SentimentFragment) VideoOutcome {
	return VideoOutcome{Ref: ref, Status: OutcomeAccepted, Positive: positive, Negative: negative}
}

// Skipped builds a skipped outcome.
func Skipped(ref VideoRef, reason SkipReason, err error) VideoOutcome {
	return VideoOutcome{Ref: ref, Status: OutcomeSkipped, Reason: reason, Err: err}
}

// IsAccepted reports whether the video contributed to the run.
func (o VideoOutcome) IsAccepted() bool {
	return o.Status == OutcomeAccepted
}

// Fragments returns the outcome's fragments for a polarity.
func (o VideoOutcome) Fragments(p Polarity) []SentimentFragment {
	if p == PolarityNegative {
		return o.Negative
	}
	return o.Positive
}
