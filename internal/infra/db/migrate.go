package db

import (
	"database/sql"
	"fmt"
)

// partitionTables holds one table per polarity. Vectors are stored without a
// fixed dimension so either embedding provider can write to them.
var partitionTables = []string{"sentiment_positive", "sentiment_negative"}

// MigrateUp installs the vector extension and creates the partition tables.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create extension vector: %w", err)
	}

	for _, table := range partitionTables {
		if _, err := db.Exec(fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    id         BIGSERIAL PRIMARY KEY,
    text       TEXT NOT NULL,
    embedding  vector NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, table)); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
	}

	return nil
}

// MigrateDown drops the partition tables. The extension is left installed.
func MigrateDown(db *sql.DB) error {
	for i := len(partitionTables) - 1; i >= 0; i-- {
		if _, err := db.Exec(`DROP TABLE IF EXISTS ` + partitionTables[i]); err != nil {
			return fmt.Errorf("drop table %s: %w", partitionTables[i], err)
		}
	}
	return nil
}
