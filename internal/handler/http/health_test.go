package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPingMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func getHealth(t *testing.T, h http.Handler) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestHealthHandler_Healthy(t *testing.T) {
	db, mock := newPingMock(t)
	mock.ExpectPing()

	code, resp := getHealth(t, &HealthHandler{DB: db, Version: "test-version"})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "test-version", resp.Version)
	assert.NotEmpty(t, resp.Timestamp)
	assert.Equal(t, "healthy", resp.Checks["database"].Status)
	assert.Contains(t, resp.Checks["database"].Details, "open_connections")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	db, mock := newPingMock(t)
	mock.ExpectPing().WillReturnError(errors.New("dial postgres://app:hunter2@db:5432/x: refused"))

	code, resp := getHealth(t, &HealthHandler{DB: db})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.NotContains(t, resp.Checks["database"].Message, "hunter2")
}

func TestHealthHandler_NoDatabase(t *testing.T) {
	code, resp := getHealth(t, &HealthHandler{})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not configured", resp.Checks["database"].Message)
}

func TestHealthHandler_OptionalCheckDegrades(t *testing.T) {
	db, mock := newPingMock(t)
	mock.ExpectPing()

	h := &HealthHandler{
		DB: db,
		Optional: map[string]CheckFunc{
			"transcript_cache": func(context.Context) error { return errors.New("connection refused") },
		},
	}
	code, resp := getHealth(t, h)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "degraded", resp.Checks["transcript_cache"].Status)
	assert.Equal(t, "connection refused", resp.Checks["transcript_cache"].Message)
}

func TestReadyHandler(t *testing.T) {
	db, mock := newPingMock(t)
	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(sql.ErrConnDone)

	h := &ReadyHandler{DB: db}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	(&ReadyHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LiveHandler{}.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", rec.Body.String())
}
