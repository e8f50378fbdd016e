// Package config provides environment variable helpers, value validators and a
// fail-open loader shared by the pipeline, worker and API configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// getEnv parses the variable key with parse. Unset variables return def;
// unparseable ones return def and log a warning naming kind.
func getEnv[T any](key string, def T, kind string, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := parse(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("invalid "+kind+" value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Any("default", def),
			slog.String("error", err.Error()))
		return def
	}
	return v
}

// GetEnvString returns the variable or def when it is unset or empty.
//
//	provider := GetEnvString("LLM_PROVIDER", "gemini")
func GetEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetEnvInt returns the variable as an int.
//
//	count := GetEnvInt("VIDEO_SEARCH_COUNT", 20)
func GetEnvInt(key string, def int) int {
	return getEnv(key, def, "integer", strconv.Atoi)
}

// GetEnvFloat returns the variable as a float64.
//
//	threshold := GetEnvFloat("CLUSTER_CUT_THRESHOLD", 0.5)
func GetEnvFloat(key string, def float64) float64 {
	return getEnv(key, def, "float", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// GetEnvBool returns the variable as a bool, accepting what strconv.ParseBool accepts.
func GetEnvBool(key string, def bool) bool {
	return getEnv(key, def, "boolean", strconv.ParseBool)
}

// GetEnvDuration returns the variable parsed by time.ParseDuration ("30s", "5m").
//
//	budget := GetEnvDuration("LABEL_RETRY_BUDGET", 300*time.Second)
func GetEnvDuration(key string, def time.Duration) time.Duration {
	return getEnv(key, def, "duration", time.ParseDuration)
}

// GetEnvStringList splits a comma-separated variable, trimming entries and
// dropping empty ones. A list with no entries left returns def.
//
//	// TRANSCRIPT_LANGUAGES="en, English"
//	langs := GetEnvStringList("TRANSCRIPT_LANGUAGES", []string{"en"}) // ["en", "English"]
func GetEnvStringList(key string, def []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// RequireEnv returns the variable or an error naming the missing key.
func RequireEnv(key string) (string, error) {
	if v := os.Getenv(key); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%s is required", key)
}
