package core

import (
	"fmt"
	"strings"
)

// Flags mirror the JS-style regex flags exposed by the CLI ("gimsuy").
type Flags struct {
	Global     bool `json:"global"`      // find all matches, not just the first
	IgnoreCase bool `json:"ignore_case"` // case-insensitive matching
	Multiline  bool `json:"multiline"`   // ^ and $ match at line boundaries
	DotAll     bool `json:"dot_all"`     // . matches newlines
	Unicode    bool `json:"unicode"`     // unicode-aware character classes
	Sticky     bool `json:"sticky"`      // matches must be contiguous from the scan cursor
}

// ParseFlags parses a compact flag string like "gi" or "imsu".
// Unknown letters are rejected so typos surface immediately.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	for _, r := range s {
		switch r {
		case 'g':
			f.Global = true
		case 'i':
			f.IgnoreCase = true
		case 'm':
			f.Multiline = true
		case 's':
			f.DotAll = true
		case 'u':
			f.Unicode = true
		case 'y':
			f.Sticky = true
		default:
			return Flags{}, fmt.Errorf("unknown flag %q (expected letters from \"gimsuy\")", string(r))
		}
	}
	return f, nil
}

// String returns the compact flag form in canonical "gimsuy" order.
func (f Flags) String() string {
	var b strings.Builder
	if f.Global {
		b.WriteByte('g')
	}
	if f.IgnoreCase {
		b.WriteByte('i')
	}
	if f.Multiline {
		b.WriteByte('m')
	}
	if f.DotAll {
		b.WriteByte('s')
	}
	if f.Unicode {
		b.WriteByte('u')
	}
	if f.Sticky {
		b.WriteByte('y')
	}
	return b.String()
}

// Group is one capture group's contribution to a match. Matched
// distinguishes a group that did not participate from one that matched
// the empty string.
type Group struct {
	Name    string `json:"name,omitempty"`
	Text    string `json:"text"`
	Matched bool   `json:"matched"`
}

// Match is one located occurrence of a pattern within a subject.
// Start and End are rune offsets into the subject; Text is always the
// exact slice subject[Start:End].
type Match struct {
	Text   string  `json:"text"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Groups []Group `json:"groups,omitempty"`
}

// Result bundles a full matching run for display and persistence.
type Result struct {
	Pattern      string  `json:"pattern"`
	Flags        string  `json:"flags"`
	Matches      []Match `json:"matches"`
	Total        int     `json:"total"`
	DurationUs   int64   `json:"duration_us"`
	Truncated    bool    `json:"truncated,omitempty"` // match cap reached before end of subject
	SubjectRunes int     `json:"subject_runes"`
}
