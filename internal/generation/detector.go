package generation

import (
	"unicode/utf8"

	"listing-writer/internal/domain"
)

// minTruncationLength is measured in domain.TextLen units.
const minTruncationLength = 240

var terminalRunes = map[rune]struct{}{
	'.': {},
	'!': {},
	'?': {},
	'"': {},
	'”': {},
	')': {},
	']': {},
	'`': {},
	'*': {},
}

// LooksTruncated guesses whether generated text was cut off mid-thought.
// Short outputs are always treated as complete.
func LooksTruncated(text string) bool {
	trimmed := domain.TrimText(text)
	if domain.TextLen(trimmed) < minTruncationLength {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(trimmed)
	if _, ok := terminalRunes[last]; ok {
		return false
	}
	// Dangling '-', ':' and ',' land here along with everything else.
	return true
}
