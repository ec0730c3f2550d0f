package highlight

import (
	"fmt"
	"html"
	"strings"
)

// HTML renders segments as markup, wrapping each match span in a <mark>
// element labeled with its ordinal. Every piece of subject text is
// escaped before insertion, so delimiter-like text in the subject (e.g.
// a literal "<mark>") is displayed as-is and never becomes a structural
// boundary.
func HTML(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Match {
			fmt.Fprintf(&b, `<mark data-match="%d" title="Match %d">%s</mark>`,
				s.Index, s.Index, html.EscapeString(s.Text))
		} else {
			b.WriteString(html.EscapeString(s.Text))
		}
	}
	return b.String()
}
