package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"yt-sentiment/internal/handler/http/respond"
	"yt-sentiment/internal/observability/logging"

	"github.com/golang-jwt/jwt/v5"
)

// Authenticator resolves credentials to a role.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (string, error)
}

// tokenResponse is the body returned by TokenHandler.
type tokenResponse struct {
	Token     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueToken signs an HS256 token for subject with the given role.
func IssueToken(secret []byte, subject, role string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	exp := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// TokenHandler exchanges a username and password for a bearer token.
//
// @Summary      Issue a JWT
// @Description  Authenticates a configured account and returns an HS256 bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body Credentials true "Account credentials"
// @Success      200 {object} tokenResponse
// @Failure      400 {object} map[string]string "Malformed body"
// @Failure      401 {object} map[string]string "Invalid credentials"
// @Failure      500 {object} map[string]string "Signing failed"
// @Router       /auth/token [post]
func TokenHandler(a Authenticator, secret []byte, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := logging.WithRequestID(r.Context(), slog.Default())

		fail := func(role string, code int, err error) {
			RecordAuthRequest(role, "failure")
			RecordAuthDuration(role, time.Since(start).Seconds())
			respond.SafeError(w, code, err)
		}

		var creds Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			logger.Warn("token request rejected", slog.String("reason", "invalid_request"))
			fail("unknown", http.StatusBadRequest, errors.New("invalid request body"))
			return
		}

		role, err := a.Authenticate(r.Context(), creds)
		if err != nil {
			logger.Warn("token request rejected", slog.String("reason", "invalid_credentials"))
			fail("unknown", http.StatusUnauthorized, ErrInvalidCredentials)
			return
		}

		signed, exp, err := IssueToken(secret, creds.Username, role, ttl, time.Now())
		if err != nil {
			logger.Error("token signing failed", slog.Any("error", err))
			fail(role, http.StatusInternalServerError, err)
			return
		}

		logger.Info("token issued",
			slog.String("user", creds.Username),
			slog.String("role", role),
			slog.Duration("duration", time.Since(start)))
		RecordAuthRequest(role, "success")
		RecordAuthDuration(role, time.Since(start).Seconds())
		respond.JSON(w, http.StatusOK, tokenResponse{Token: signed, ExpiresAt: exp})
	}
}
