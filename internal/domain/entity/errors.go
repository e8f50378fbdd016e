package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")

	// ErrDiscovery indicates that the video search failed. It aborts the whole run.
	ErrDiscovery = errors.New("video discovery failed")

	// ErrTranscriptUnavailable indicates that no transcript could be retrieved for a video.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")

	// ErrExtractionParse indicates that model output did not satisfy the two-list contract.
	ErrExtractionParse = errors.New("extraction output could not be parsed")

	// ErrEmbedding indicates that the embedding service failed for a polarity.
	ErrEmbedding = errors.New("embedding service failed")

	// ErrLabeling indicates that topic labeling exhausted its retry budget.
	ErrLabeling = errors.New("topic labeling failed")

	// ErrStoreUnavailable indicates that the embedding store could not be reset or read.
	ErrStoreUnavailable = errors.New("embedding store unavailable")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ParseError is returned when a structured completion misses a required field
// or cannot be decoded. It matches ErrExtractionParse with errors.Is.
type ParseError struct {
	Field string
	Raw   string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse extraction output: field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("parse extraction output: %v", e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrExtractionParse, e.Err}
}

// PolarityError ties a stage failure to the polarity whose processing it aborted.
type PolarityError struct {
	Polarity Polarity
	Err      error
}

func (e *PolarityError) Error() string {
	return fmt.Sprintf("%s polarity: %v", e.Polarity, e.Err)
}

func (e *PolarityError) Unwrap() error {
	return e.Err
}
