package highlight

import (
	"strings"

	"github.com/fatih/color"
)

// palette cycles per match ordinal so adjacent matches stay visually
// distinct in terminal output.
var palette = []*color.Color{
	color.New(color.FgBlack, color.BgYellow),
	color.New(color.FgBlack, color.BgCyan),
	color.New(color.FgBlack, color.BgGreen),
	color.New(color.FgBlack, color.BgMagenta),
}

// ANSI renders segments for terminal display, coloring each match span.
// Gap text passes through untouched.
func ANSI(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Match {
			c := palette[(s.Index-1)%len(palette)]
			b.WriteString(c.Sprint(s.Text))
		} else {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
