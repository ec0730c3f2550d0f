package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/rext/core"
)

func findAll(t *testing.T, pattern, flagStr, subject string) []core.Match {
	t.Helper()
	flags, err := core.ParseFlags(flagStr)
	require.NoError(t, err)
	p, err := core.Compile(pattern, flags)
	require.NoError(t, err)
	matches, err := p.FindAll(subject)
	require.NoError(t, err)
	return matches
}

func TestSplitRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		subject string
	}{
		{"digits between words", `\d+`, "a 1 b 22 c 333"},
		{"match at start", `\w+`, "hello world"},
		{"match at end", `\d+`, "version 42"},
		{"whole subject is one match", ".+", "everything"},
		{"no matches", "xyz", "nothing here"},
		{"adjacent matches", ".", "abc"},
		{"zero-length matches", "a*", "bbb"},
		{"multibyte subject", `é+`, "café crémé"},
		{"empty subject", "a*", ""},
		{"delimiter-like subject", `\d+`, "a <mark>1</mark> b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := findAll(t, tt.pattern, "g", tt.subject)
			segs := Split(tt.subject, matches)
			assert.Equal(t, tt.subject, Join(segs),
				"concatenating segments must reconstruct the subject")
		})
	}
}

func TestSplitSegmentShape(t *testing.T) {
	subject := "a 1 b 22"
	matches := findAll(t, `\d+`, "g", subject)
	segs := Split(subject, matches)

	require.Len(t, segs, 4)
	assert.Equal(t, Segment{Text: "a "}, segs[0])
	assert.Equal(t, Segment{Text: "1", Match: true, Index: 1}, segs[1])
	assert.Equal(t, Segment{Text: " b "}, segs[2])
	assert.Equal(t, Segment{Text: "22", Match: true, Index: 2}, segs[3])
}

func TestSplitMatchOrdinals(t *testing.T) {
	subject := "x1x2x3"
	matches := findAll(t, `\d`, "g", subject)
	segs := Split(subject, matches)

	var ordinals []int
	for _, s := range segs {
		if s.Match {
			ordinals = append(ordinals, s.Index)
		}
	}
	assert.Equal(t, []int{1, 2, 3}, ordinals)
}

func TestSplitZeroLengthMatchesProduceNoSegments(t *testing.T) {
	subject := "bbb"
	matches := findAll(t, "a*", "g", subject)
	require.Len(t, matches, 4)

	segs := Split(subject, matches)
	for _, s := range segs {
		assert.False(t, s.Match, "zero-length matches have no text to mark")
	}
	assert.Equal(t, subject, Join(segs))
}

func TestSplitNoMatches(t *testing.T) {
	segs := Split("plain text", nil)
	require.Len(t, segs, 1)
	assert.Equal(t, Segment{Text: "plain text"}, segs[0])

	assert.Nil(t, Split("", nil))
}

func TestSplitTextsAreVerbatimSubjectText(t *testing.T) {
	// Feeding segments through a markup-unaware extractor (Join) must
	// reproduce the subject even when it contains delimiter-like text.
	subject := `before <mark>inside</mark> after`
	matches := findAll(t, "inside", "g", subject)
	segs := Split(subject, matches)

	assert.Equal(t, subject, Join(segs))
	for _, s := range segs {
		assert.NotContains(t, s.Text, "data-match",
			"segment text is subject text, never renderer markup")
	}
}
