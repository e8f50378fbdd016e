package repository

import (
	"context"

	"yt-sentiment/internal/domain/entity"
)

// SentimentEmbeddingRepository persists embedded fragments in one partition per polarity.
//
// The store is a per-run scratch area, not an archive: callers Drop a partition
// before the first Write of a run. Drop, Write and ReadAll are not atomic with
// respect to each other; concurrent runs serialize through Lock.
type SentimentEmbeddingRepository interface {
	// Drop removes every record of the partition.
	Drop(ctx context.Context, polarity entity.Polarity) error

	// Write appends records to the partition. Records keep insertion order.
	Write(ctx context.Context, polarity entity.Polarity, records []entity.EmbeddingRecord) error

	// ReadAll returns every record of the partition in insertion order.
	// Returns an empty slice (not nil) when the partition is empty.
	ReadAll(ctx context.Context, polarity entity.Polarity) ([]entity.EmbeddingRecord, error)

	// SearchSimilar returns up to limit records of the partition ordered by
	// cosine similarity to vector, highest first.
	SearchSimilar(ctx context.Context, polarity entity.Polarity, vector []float32, limit int) ([]entity.SimilarFragment, error)

	// Lock blocks until the caller holds the store exclusively or ctx is done.
	// The returned func releases the lock and is safe to call more than once.
	Lock(ctx context.Context) (release func(), err error)
}
