package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"listing-writer/internal/domain"
)

func textEndingWith(length int, last string) string {
	return strings.Repeat("a", length-len([]rune(last))) + last
}

func TestLooksTruncated_ShortTextIsComplete(t *testing.T) {
	for _, last := range []string{",", "-", ":", "a", "."} {
		require.False(t, LooksTruncated(textEndingWith(239, last)), "last=%q", last)
	}
	require.False(t, LooksTruncated(""))
	require.False(t, LooksTruncated("   \n\t"))
}

func TestLooksTruncated_LengthIsMeasuredAfterTrim(t *testing.T) {
	padded := "   " + textEndingWith(239, ",") + "\n\n   "
	require.False(t, LooksTruncated(padded))
	require.True(t, LooksTruncated("  "+textEndingWith(240, ",")+"  \n"))
}

func TestLooksTruncated_TerminalPunctuation(t *testing.T) {
	for _, last := range []string{".", "!", "?", `"`, "”", ")", "]", "`", "*"} {
		require.False(t, LooksTruncated(textEndingWith(240, last)), "last=%q", last)
		require.False(t, LooksTruncated(textEndingWith(500, last)+"  \n"), "last=%q", last)
	}
}

func TestLooksTruncated_DanglingEndings(t *testing.T) {
	for _, last := range []string{"-", ":", ",", "a", "Z", "9", ";", "'", "’", "}", ">", "🎁"} {
		require.True(t, LooksTruncated(textEndingWith(240, last)), "last=%q", last)
	}
}

func TestLooksTruncated_CountsUTF16Units(t *testing.T) {
	// Each gift emoji is two UTF-16 code units.
	text := strings.Repeat("🎁", 120) + ","
	require.Equal(t, 241, domain.TextLen(text))
	require.True(t, LooksTruncated(text))

	short := strings.Repeat("é", 238) + ","
	require.False(t, LooksTruncated(short))
}

func TestLooksTruncated_IgnoresByteOrderMark(t *testing.T) {
	require.False(t, LooksTruncated(textEndingWith(300, ".")+"\uFEFF\n"))
}
