package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDBCircuitBreaker(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	dcb := NewDBCircuitBreaker(db)

	assert.Same(t, db, dcb.db)
	assert.Equal(t, "database", dcb.cb.Name())
	assert.Equal(t, gobreaker.StateClosed, dcb.cb.State())
}

func TestDBCircuitBreaker_ExecContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("TRUNCATE sentiment_positive").WillReturnResult(sqlmock.NewResult(0, 0))

	dcb := NewDBCircuitBreaker(db)
	_, err = dcb.ExecContext(context.Background(), "TRUNCATE sentiment_positive")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBCircuitBreaker_QueryContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT text FROM sentiment_negative").
		WillReturnRows(sqlmock.NewRows([]string{"text"}).AddRow("poor camera"))

	dcb := NewDBCircuitBreaker(db)
	rows, err := dcb.QueryContext(context.Background(), "SELECT text FROM sentiment_negative")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next())
	var text string
	require.NoError(t, rows.Scan(&text))
	assert.Equal(t, "poor camera", text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBCircuitBreaker_BeginTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectCommit()

	dcb := NewDBCircuitBreaker(db)
	tx, err := dcb.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	dbErr := errors.New("connection refused")
	for i := 0; i < 5; i++ {
		mock.ExpectExec("SELECT 1").WillReturnError(dbErr)
	}

	dcb := NewDBCircuitBreakerWithConfig(db, Config{
		Name:             "test-db",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 1.0,
		MinRequests:      5,
	})

	for i := 0; i < 5; i++ {
		_, err := dcb.ExecContext(context.Background(), "SELECT 1")
		assert.ErrorIs(t, err, dbErr)
	}

	assert.True(t, dcb.cb.IsOpen())

	_, err = dcb.ExecContext(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.NoError(t, mock.ExpectationsWereMet())
}
