package circuitbreaker

import (
	"context"
	"database/sql"
	"time"
)

// DBCircuitBreaker guards the embedding store's database handle.
// While the database is unreachable calls fail fast with gobreaker.ErrOpenState.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db *sql.DB
}

// DBConfig opens after 5 straight failures and lets a trial request through after 30 seconds.
func DBConfig() Config {
	return Config{
		Name:             "database",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
	}
}

// NewDBCircuitBreaker wraps db with DBConfig.
func NewDBCircuitBreaker(db *sql.DB) *DBCircuitBreaker {
	return NewDBCircuitBreakerWithConfig(db, DBConfig())
}

// NewDBCircuitBreakerWithConfig wraps db with cfg.
func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg Config) *DBCircuitBreaker {
	return &DBCircuitBreaker{cb: New(cfg), db: db}
}

// guard runs fn through the breaker and restores its static type.
func guard[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (interface{}, error) { return fn() })
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

// ExecContext executes a statement through the breaker.
func (d *DBCircuitBreaker) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return guard(d.cb, func() (sql.Result, error) { return d.db.ExecContext(ctx, query, args...) })
}

// QueryContext runs a query through the breaker.
func (d *DBCircuitBreaker) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return guard(d.cb, func() (*sql.Rows, error) { return d.db.QueryContext(ctx, query, args...) })
}

// BeginTx starts a transaction through the breaker. Statements inside the
// transaction are not guarded one by one.
func (d *DBCircuitBreaker) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return guard(d.cb, func() (*sql.Tx, error) { return d.db.BeginTx(ctx, opts) })
}

// Conn reserves a dedicated connection through the breaker; the run lock
// needs one so its advisory lock and unlock share a session.
func (d *DBCircuitBreaker) Conn(ctx context.Context) (*sql.Conn, error) {
	return guard(d.cb, func() (*sql.Conn, error) { return d.db.Conn(ctx) })
}
