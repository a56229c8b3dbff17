package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLines_StripsMarkersAndBlankLines(t *testing.T) {
	got := ParseLines("1. Try a new cafe\n- Say hi to a stranger\n\n", 5)
	assert.Equal(t, []string{"Try a new cafe", "Say hi to a stranger"}, got)
}

func TestParseLines_DedupPreservesFirstSeenOrder(t *testing.T) {
	text := "Call a friend\n* Call a friend\nWalk outside\ncall a friend\n"
	got := ParseLines(text, 5)
	assert.Equal(t, []string{"Call a friend", "Walk outside", "call a friend"}, got)
}

func TestParseLines_StopsAtLimit(t *testing.T) {
	got := ParseLines("a\nb\nc\nd", 2)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestParseLines_NoUsableLines(t *testing.T) {
	assert.Empty(t, ParseLines("\n  \n---\n•\n", 3))
}

func TestNormalizeLine(t *testing.T) {
	cases := map[string]string{
		"  * Smile at someone  ":    "Smile at someone",
		"2) Write a thank-you note": "Write a thank-you note",
		"• Dance for a minute":      "Dance for a minute",
		"3 deep breaths by a tree":  "3 deep breaths by a tree",
		"Émile's favorite bakery":   "Émile's favorite bakery",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeLine(in), "input %q", in)
	}
}

func TestClampCount(t *testing.T) {
	assert.Equal(t, 1, ClampCount(-3))
	assert.Equal(t, 1, ClampCount(0))
	assert.Equal(t, 3, ClampCount(3))
	assert.Equal(t, 5, ClampCount(9))
}
