package domain

import (
	"strings"
	"unicode"
	"unicode/utf16"
)

// TextLen counts UTF-16 code units, the unit the web form and the history
// clients measure text in. Characters outside the BMP count as two.
func TextLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// TrimText strips leading and trailing white space, including the byte order
// mark U+FEFF that browsers leave on pasted text.
func TrimText(s string) string {
	return strings.TrimFunc(s, isTrimmable)
}

func isTrimmable(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
