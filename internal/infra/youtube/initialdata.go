package youtube

import (
	"bytes"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// errMarkerNotFound is returned when a page carries no embedded JSON for a marker.
var errMarkerNotFound = errors.New("embedded json not found")

// embeddedJSON finds the inline <script> holding marker (for example
// "var ytInitialData = ") and returns the JSON object that follows it.
func embeddedJSON(page []byte, marker string) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}

	var found []byte
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, marker)
		if idx < 0 {
			return true
		}
		found = extractJSON([]byte(strings.TrimLeft(text[idx+len(marker):], " ")))
		return found == nil
	})

	if found == nil {
		return nil, errMarkerNotFound
	}
	return found, nil
}

// extractJSON returns the complete JSON object at the start of b by tracking
// brace depth outside of string literals.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
