package core

import (
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// FindAll locates every occurrence of the pattern in subject, left to
// right, non-overlapping, in strictly increasing offset order.
//
// With the global flag the scan cursor advances to the end of each match,
// or by one rune after a zero-length match so the scan always makes
// forward progress. Without it at most the first match is returned. With
// the sticky flag each match must begin exactly at the cursor; the scan
// stops at the first gap.
//
// Every call recomputes the result from scratch. Exceeding the match
// budget fails with *TimeoutError.
func (p *Pattern) FindAll(subject string) ([]Match, error) {
	matches, _, err := p.findAll(subject)
	return matches, err
}

// findAll is FindAll plus a truncation flag: true when the match cap was
// hit while a further match still existed in the subject.
func (p *Pattern) findAll(subject string) ([]Match, bool, error) {
	// The engine indexes matches in runes, so the scan cursor has to be
	// rune-based too. Converting once up front keeps cursor arithmetic
	// and engine offsets in the same unit for multibyte subjects.
	runes := []rune(subject)

	if !p.flags.Global {
		m, err := p.findAt(runes, 0)
		if err != nil {
			return nil, false, err
		}
		if m == nil || (p.flags.Sticky && m.Index != 0) {
			return nil, false, nil
		}
		return []Match{convertMatch(m)}, false, nil
	}

	var matches []Match
	pos := 0
	for pos <= len(runes) {
		m, err := p.findAt(runes, pos)
		if err != nil {
			return nil, false, err
		}
		if m == nil {
			break
		}
		if p.flags.Sticky && m.Index != pos {
			break
		}
		if len(matches) == p.maxMatches {
			return matches, true, nil
		}
		matches = append(matches, convertMatch(m))

		if m.Length == 0 {
			pos = m.Index + 1
		} else {
			pos = m.Index + m.Length
		}
	}
	return matches, false, nil
}

// Run executes FindAll and wraps the outcome with timing and size
// metadata for display and history persistence.
func (p *Pattern) Run(subject string) (*Result, error) {
	start := time.Now()
	matches, truncated, err := p.findAll(subject)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}
	return &Result{
		Pattern:      p.source,
		Flags:        p.flags.String(),
		Matches:      matches,
		Total:        len(matches),
		DurationUs:   elapsed.Microseconds(),
		Truncated:    truncated,
		SubjectRunes: len([]rune(subject)),
	}, nil
}

// findAt returns the leftmost engine match at or after the rune offset
// pos.
func (p *Pattern) findAt(runes []rune, pos int) (*regexp2.Match, error) {
	m, err := p.re.FindRunesMatchStartingAt(runes, pos)
	if err != nil {
		return nil, p.wrapEngineErr(err)
	}
	return m, nil
}

// wrapEngineErr translates the engine's MatchTimeout trip into a
// TimeoutError. Any other engine error passes through unchanged so it
// is never misreported as a timeout.
func (p *Pattern) wrapEngineErr(err error) error {
	if strings.Contains(err.Error(), "timeout") {
		return &TimeoutError{Pattern: p.source, Budget: p.timeout}
	}
	return err
}

// convertMatch flattens an engine match into the exported Match shape.
// Group 0 (the full match) is dropped from the group list; named groups
// keep their names, positional ones report an empty name.
func convertMatch(m *regexp2.Match) Match {
	engineGroups := m.Groups()
	groups := make([]Group, 0, len(engineGroups)-1)
	for i, g := range engineGroups {
		if i == 0 {
			continue
		}
		name := g.Name
		if name == strconv.Itoa(i) {
			name = ""
		}
		grp := Group{Name: name, Matched: len(g.Captures) > 0}
		if grp.Matched {
			grp.Text = g.String()
		}
		groups = append(groups, grp)
	}
	if len(groups) == 0 {
		groups = nil
	}
	return Match{
		Text:   m.String(),
		Start:  m.Index,
		End:    m.Index + m.Length,
		Groups: groups,
	}
}
