package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadResult is the outcome of loading one configuration value with fallback.
// When the environment value is unparseable or fails validation, Value holds the
// default, FallbackApplied is set and Warning explains why.
type LoadResult[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// LoadWithFallback reads key from the environment, parses it and validates it.
// An unset variable yields the default without a warning. A parse or validation
// failure yields the default with a warning; it never returns an error.
func LoadWithFallback[T any](key string, defaultValue T, parse func(string) (T, error), validate func(T) error) LoadResult[T] {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return LoadResult[T]{Value: defaultValue}
	}

	value, err := parse(strings.TrimSpace(raw))
	if err != nil {
		return LoadResult[T]{
			Value:           defaultValue,
			Warning:         fmt.Sprintf("%s=%q could not be parsed, using default %v: %v", key, raw, defaultValue, err),
			FallbackApplied: true,
		}
	}

	if validate != nil {
		if err := validate(value); err != nil {
			return LoadResult[T]{
				Value:           defaultValue,
				Warning:         fmt.Sprintf("%s=%q is invalid, using default %v: %v", key, raw, defaultValue, err),
				FallbackApplied: true,
			}
		}
	}

	return LoadResult[T]{Value: value}
}

// ParseString is the identity parser for LoadWithFallback.
func ParseString(s string) (string, error) {
	return s, nil
}

// ParseInt parses a base-10 integer for LoadWithFallback.
func ParseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// ParseDuration parses a time.Duration for LoadWithFallback.
func ParseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
