// Package sqlite provides an embedded SQLite implementation of the embedding
// store. It backs single-process runs that have no PostgreSQL at hand.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/pgvector/pgvector-go"
	"gonum.org/v1/gonum/floats"
	_ "modernc.org/sqlite"

	"yt-sentiment/internal/domain/entity"
	"yt-sentiment/internal/repository"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SentimentEmbeddingRepo implements repository.SentimentEmbeddingRepository on SQLite.
// Vectors are stored in pgvector's text form and ranked in process.
type SentimentEmbeddingRepo struct {
	db   *sql.DB
	lock chan struct{}
}

// Open opens (or creates) the database at path and creates the partition tables.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one connection keeps :memory: a single database
	db.SetMaxOpenConns(1)

	for _, table := range []string{"sentiment_positive", "sentiment_negative"} {
		if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS ` + table + ` (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	text       TEXT NOT NULL,
	embedding  TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
)`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create table %s: %w", table, err)
		}
	}
	return db, nil
}

// NewSentimentEmbeddingRepo creates a SQLite-backed SentimentEmbeddingRepository.
// db must come from Open.
func NewSentimentEmbeddingRepo(db *sql.DB) repository.SentimentEmbeddingRepository {
	return &SentimentEmbeddingRepo{
		db:   db,
		lock: make(chan struct{}, 1),
	}
}

func tableFor(p entity.Polarity) (string, error) {
	switch p {
	case entity.PolarityPositive:
		return "sentiment_positive", nil
	case entity.PolarityNegative:
		return "sentiment_negative", nil
	default:
		return "", fmt.Errorf("%w: unknown polarity %q", entity.ErrInvalidInput, p)
	}
}

// Drop deletes every row of the polarity's table.
func (repo *SentimentEmbeddingRepo) Drop(ctx context.Context, polarity entity.Polarity) error {
	table, err := tableFor(polarity)
	if err != nil {
		return fmt.Errorf("Drop: %w", err)
	}
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("Drop: ExecContext: %w", err)
	}
	return nil
}

// Write inserts records in one transaction.
func (repo *SentimentEmbeddingRepo) Write(ctx context.Context, polarity entity.Polarity, records []entity.EmbeddingRecord) error {
	table, err := tableFor(polarity)
	if err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Write: BeginTx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, rec := range records {
		if len(rec.Vector) == 0 {
			return fmt.Errorf("Write: record %d: %w: empty vector", i, entity.ErrInvalidInput)
		}
		encoded, err := pgvector.NewVector(rec.Vector).Value()
		if err != nil {
			return fmt.Errorf("Write: record %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO "+table+" (text, embedding) VALUES (?, ?)",
			rec.Text, encoded,
		); err != nil {
			return fmt.Errorf("Write: record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Write: Commit: %w", err)
	}
	return nil
}

// ReadAll returns the partition in insertion order.
func (repo *SentimentEmbeddingRepo) ReadAll(ctx context.Context, polarity entity.Polarity) ([]entity.EmbeddingRecord, error) {
	table, err := tableFor(polarity)
	if err != nil {
		return nil, fmt.Errorf("ReadAll: %w", err)
	}

	rows, err := repo.db.QueryContext(ctx, "SELECT text, embedding FROM "+table+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("ReadAll: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]entity.EmbeddingRecord, 0, 64)
	for rows.Next() {
		var (
			text   string
			vector pgvector.Vector
		)
		if err := rows.Scan(&text, &vector); err != nil {
			return nil, fmt.Errorf("ReadAll: Scan: %w", err)
		}
		records = append(records, entity.EmbeddingRecord{
			Text:     text,
			Polarity: polarity,
			Vector:   vector.Slice(),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ReadAll: rows iteration: %w", err)
	}
	return records, nil
}

// SearchSimilar scans the partition and ranks it by cosine similarity.
// Records whose dimension differs from vector are skipped.
func (repo *SentimentEmbeddingRepo) SearchSimilar(ctx context.Context, polarity entity.Polarity, vector []float32, limit int) ([]entity.SimilarFragment, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("SearchSimilar: %w: empty query vector", entity.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 10
	}

	records, err := repo.ReadAll(ctx, polarity)
	if err != nil {
		return nil, fmt.Errorf("SearchSimilar: %w", err)
	}

	query := toFloat64(vector)
	hits := make([]entity.SimilarFragment, 0, len(records))
	for _, rec := range records {
		if len(rec.Vector) != len(query) {
			continue
		}
		hits = append(hits, entity.SimilarFragment{
			Text:     rec.Text,
			Polarity: polarity,
			Score:    cosine(query, toFloat64(rec.Vector)),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Lock serializes runs within this process.
func (repo *SentimentEmbeddingRepo) Lock(ctx context.Context) (func(), error) {
	select {
	case repo.lock <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("Lock: %w", ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-repo.lock })
	}, nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// cosine returns 0 when either vector has zero norm.
func cosine(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}
