package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pgvector/pgvector-go"

	"yt-sentiment/internal/domain/entity"
	"yt-sentiment/internal/observability/metrics"
	"yt-sentiment/internal/repository"
	"yt-sentiment/internal/resilience/circuitbreaker"
)

// DefaultSearchTimeout is the default timeout for similarity search queries.
const DefaultSearchTimeout = 5 * time.Second

// runLockKey is the advisory lock key shared by every process analyzing into this database.
const runLockKey int64 = 0x79745f73656e74

// SentimentEmbeddingRepo implements repository.SentimentEmbeddingRepository on
// two pgvector tables, one per polarity.
type SentimentEmbeddingRepo struct {
	db *circuitbreaker.DBCircuitBreaker
}

// NewSentimentEmbeddingRepo creates a PostgreSQL-backed SentimentEmbeddingRepository.
func NewSentimentEmbeddingRepo(db *sql.DB) repository.SentimentEmbeddingRepository {
	return &SentimentEmbeddingRepo{
		db: circuitbreaker.NewDBCircuitBreaker(db),
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

	start := time.Now()
	result, err := repo.db.ExecContext(ctx, "DELETE FROM "+table)
	metrics.RecordDBQuery("drop", time.Since(start))
	if err != nil {
		return fmt.Errorf("Drop: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil {
		slog.Debug("embedding partition dropped",
			slog.String("table", table),
			slog.Int64("rows", n))
	}
	return nil
}

// Write inserts records in one transaction so a partition never holds half a batch.
func (repo *SentimentEmbeddingRepo) Write(ctx context.Context, polarity entity.Polarity, records []entity.EmbeddingRecord) error {
	table, err := tableFor(polarity)
	if err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("write", time.Since(start)) }()

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Write: BeginTx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+table+" (text, embedding) VALUES ($1, $2)")
	if err != nil {
		return fmt.Errorf("Write: Prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, rec := range records {
		if len(rec.Vector) == 0 {
			return fmt.Errorf("Write: record %d: %w: empty vector", i, entity.ErrInvalidInput)
		}
		if _, err := stmt.ExecContext(ctx, rec.Text, pgvector.NewVector(rec.Vector)); err != nil {
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

	start := time.Now()
	defer func() { metrics.RecordDBQuery("read_all", time.Since(start)) }()

	rows, err := repo.db.QueryContext(ctx, "SELECT text, embedding FROM "+table+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("ReadAll: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]entity.EmbeddingRecord, 0)
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
		return nil, fmt.Errorf("ReadAll: %w", err)
	}

	return records, nil
}

// SearchSimilar ranks the partition by cosine distance (<=>) to vector.
func (repo *SentimentEmbeddingRepo) SearchSimilar(ctx context.Context, polarity entity.Polarity, vector []float32, limit int) ([]entity.SimilarFragment, error) {
	table, err := tableFor(polarity)
	if err != nil {
		return nil, fmt.Errorf("SearchSimilar: %w", err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("SearchSimilar: %w: empty query vector", entity.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 500 {
		limit = 500
	}

	searchCtx, cancel := context.WithTimeout(ctx, DefaultSearchTimeout)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("search", time.Since(start)) }()

	query := `
SELECT text, 1 - (embedding <=> $1) AS similarity
FROM ` + table + `
ORDER BY embedding <=> $1
LIMIT $2`

	rows, err := repo.db.QueryContext(searchCtx, query, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("SearchSimilar: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]entity.SimilarFragment, 0, limit)
	for rows.Next() {
		hit := entity.SimilarFragment{Polarity: polarity}
		if err := rows.Scan(&hit.Text, &hit.Score); err != nil {
			return nil, fmt.Errorf("SearchSimilar: Scan: %w", err)
		}
		results = append(results, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SearchSimilar: %w", err)
	}

	return results, nil
}

// Lock takes a session-level advisory lock on a dedicated connection. The
// connection stays checked out until release, which unlocks and returns it.
func (repo *SentimentEmbeddingRepo) Lock(ctx context.Context) (func(), error) {
	conn, err := repo.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("Lock: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", runLockKey); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("Lock: %w", err)
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := conn.ExecContext(unlockCtx, "SELECT pg_advisory_unlock($1)", runLockKey); err != nil {
				slog.Warn("failed to release run lock", slog.Any("error", err))
			}
			_ = conn.Close()
		})
	}
	return release, nil
}
