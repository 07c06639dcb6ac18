// Package sanitize cleans player-provided strings (names, answers) before they reach the engine.
package sanitize

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultMaxInputSize bounds a single player input in bytes.
const DefaultMaxInputSize = 1024

// MaxNameLength bounds a player name in runes after cleaning.
const MaxNameLength = 64

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Input enforces the size limit, validates UTF-8, drops control characters
// (newlines included, since every player input is a single line) and
// normalizes to NFC so composed and decomposed accents compare equal.
func Input(s string) (string, error) {
	if len(s) > DefaultMaxInputSize {
		// Reject rather than truncate so the stored value is exactly what was sent.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(s), DefaultMaxInputSize)
	}
	if !utf8.ValidString(s) {
		return "", ErrInvalidUTF8
	}

	if strings.IndexFunc(s, unicode.IsControl) >= 0 {
		s = strings.Map(func(r rune) rune {
			if unicode.IsControl(r) {
				return -1
			}
			return r
		}, s)
	}
	return norm.NFC.String(s), nil
}

// Name cleans a player name: Input rules, trimmed, and cut to MaxNameLength runes.
func Name(s string) (string, error) {
	clean, err := Input(s)
	if err != nil {
		return "", err
	}
	clean = strings.TrimSpace(clean)
	if utf8.RuneCountInString(clean) > MaxNameLength {
		clean = strings.TrimSpace(string([]rune(clean)[:MaxNameLength]))
	}
	return clean, nil
}
