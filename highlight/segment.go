// Package highlight turns a subject string and an ordered match list into
// a structured segment sequence, plus renderers that style the match
// spans for terminals and HTML output.
//
// Segments are the canonical form: subject text is carried verbatim, so
// concatenating segment texts always reconstructs the subject exactly,
// and user-supplied text can never be misread as markup by a renderer.
package highlight

import (
	"strings"

	"github.com/termfx/rext/core"
)

// Segment is one contiguous piece of the subject. Match segments carry
// the 1-based ordinal of the match they belong to; gap segments have
// Index 0.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
	Index int    `json:"index,omitempty"`
}

// Split slices subject into alternating gap and match segments. Matches
// must be non-overlapping and in increasing offset order, as produced by
// core.Pattern.FindAll; offsets are rune indices into the original
// subject. Zero-length matches contribute no segment (there is no text
// to mark) but still consume an ordinal.
func Split(subject string, matches []core.Match) []Segment {
	if len(matches) == 0 {
		if subject == "" {
			return nil
		}
		return []Segment{{Text: subject}}
	}

	runes := []rune(subject)
	segs := make([]Segment, 0, len(matches)*2+1)
	pos := 0
	for i, m := range matches {
		if m.Start > pos {
			segs = append(segs, Segment{Text: string(runes[pos:m.Start])})
		}
		if m.End > m.Start {
			segs = append(segs, Segment{
				Text:  string(runes[m.Start:m.End]),
				Match: true,
				Index: i + 1,
			})
		}
		pos = m.End
	}
	if pos < len(runes) {
		segs = append(segs, Segment{Text: string(runes[pos:])})
	}
	return segs
}

// Join reconstructs the original subject from a segment sequence.
func Join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}
