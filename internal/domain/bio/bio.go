// Package bio holds the rules for Telegram account bio text.
package bio

import (
	"errors"
	"strings"
)

// MaxLength is the longest bio Telegram accepts for a regular account,
// counted in characters, not bytes.
const MaxLength = 70

// ErrEmpty indicates a bio with no visible content.
var ErrEmpty = errors.New("bio text is empty")

// Truncate cuts text down to MaxLength characters. The second return
// value reports whether anything was cut.
func Truncate(text string) (string, bool) {
	runes := []rune(text)
	if len(runes) <= MaxLength {
		return text, false
	}
	return string(runes[:MaxLength]), true
}

// Sanitize normalizes generated text into a single bio line: surrounding
// whitespace is trimmed and line breaks collapse into single spaces.
func Sanitize(text string) string {
	text = strings.TrimSpace(text)
	if !strings.ContainsAny(text, "\r\n") {
		return text
	}
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\r' || r == '\n'
	})
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return strings.Join(fields, " ")
}

// Validate reports whether text is usable as a bio.
func Validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmpty
	}
	return nil
}

// Length counts characters the way the Telegram limit does.
func Length(text string) int {
	return len([]rune(text))
}
