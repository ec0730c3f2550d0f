package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLWrapsMatches(t *testing.T) {
	segs := []Segment{
		{Text: "a "},
		{Text: "1", Match: true, Index: 1},
		{Text: " b "},
		{Text: "22", Match: true, Index: 2},
	}

	out := HTML(segs)
	assert.Equal(t,
		`a <mark data-match="1" title="Match 1">1</mark> b <mark data-match="2" title="Match 2">22</mark>`,
		out)
}

func TestHTMLEscapesSubjectText(t *testing.T) {
	// A subject containing literal delimiter text must never be emitted
	// as structural markup.
	subject := `x <mark>y</mark> z`
	matches := findAll(t, "y", "g", subject)
	segs := Split(subject, matches)

	out := HTML(segs)
	assert.NotContains(t, out, "<mark>y",
		"subject's own <mark> must be escaped")
	assert.Contains(t, out, "&lt;mark&gt;")
	assert.Contains(t, out, `<mark data-match="1" title="Match 1">y</mark>`)

	// Only renderer-inserted marks survive as real tags
	assert.Equal(t, 1, strings.Count(out, "<mark "))
}

func TestHTMLEscapesMatchText(t *testing.T) {
	segs := []Segment{{Text: "<script>", Match: true, Index: 1}}
	out := HTML(segs)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestHTMLEmpty(t *testing.T) {
	assert.Empty(t, HTML(nil))
}

func TestANSIPreservesText(t *testing.T) {
	// With colors forced off the rendering degrades to the plain subject.
	restore := disableColors(t)
	defer restore()

	subject := "a 1 b 22"
	matches := findAll(t, `\d+`, "g", subject)
	segs := Split(subject, matches)

	require.Equal(t, subject, ANSI(segs))
}
