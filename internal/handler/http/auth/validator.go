package auth

import (
	"errors"
	"fmt"
	"strings"
)

// MinPasswordLength is the shortest password accepted for any account.
const MinPasswordLength = 12

// weakPasswords are rejected outright and as prefixes of short passwords.
var weakPasswords = []string{
	"admin", "password", "123456", "secret", "admin123", "password123",
	"qwerty", "abc123", "letmein", "welcome", "monkey", "test", "default", "root",
	"youtube", "sentiment",
}

var keyboardRuns = []string{"qwertyuiop", "asdfghjkl", "zxcvbnm"}

// ValidatePassword rejects empty, short, repetitive, sequential and well-known passwords.
func ValidatePassword(pass string) error {
	switch {
	case pass == "":
		return errors.New("password must not be empty")
	case len(pass) < MinPasswordLength:
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	case isRepeated(pass):
		return errors.New("password must not be a single repeated character")
	case isDigitSequence(pass):
		return errors.New("password must not be a numeric sequence")
	case hasKeyboardRun(pass):
		return errors.New("password must not contain a keyboard pattern")
	}

	lower := strings.ToLower(pass)
	for _, weak := range weakPasswords {
		if lower == weak || (strings.HasPrefix(lower, weak) && len(pass) < MinPasswordLength+5) {
			return errors.New("password must not be based on a common password")
		}
	}
	return nil
}

func isRepeated(s string) bool {
	return strings.Count(s, s[:1]) == len(s)
}

// isDigitSequence reports an all-digit string that steps by +1 or -1 (mod 10).
func isDigitSequence(s string) bool {
	up, down := true, true
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
		if i == 0 {
			continue
		}
		step := (int(s[i]) - int(s[i-1]) + 10) % 10
		up = up && step == 1
		down = down && step == 9
	}
	return up || down
}

func hasKeyboardRun(s string) bool {
	lower := strings.ToLower(s)
	for _, run := range keyboardRuns {
		for _, window := range []string{run[:6], reverse(run)[:6]} {
			if strings.Contains(lower, window) {
				return true
			}
		}
	}
	return false
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
