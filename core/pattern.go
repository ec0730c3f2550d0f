package core

import (
	"time"

	"github.com/dlclark/regexp2"
)

const (
	// DefaultTimeout bounds a single FindAll or Replace call.
	DefaultTimeout = 2 * time.Second

	// DefaultMaxMatches caps the number of matches collected per run.
	DefaultMaxMatches = 10000
)

// Pattern is a compiled regular expression plus its flag set. It is
// immutable after Compile and safe for concurrent use.
type Pattern struct {
	source     string
	flags      Flags
	re         *regexp2.Regexp
	timeout    time.Duration
	maxMatches int
}

// Option adjusts compile-time settings.
type Option func(*Pattern)

// WithTimeout sets the per-call match budget. Zero or negative values
// fall back to DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Pattern) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithMaxMatches caps how many matches a single FindAll collects.
func WithMaxMatches(n int) Option {
	return func(p *Pattern) {
		if n > 0 {
			p.maxMatches = n
		}
	}
}

// Compile builds a Pattern from source text and flags. Invalid source
// fails with *PatternError carrying the engine diagnostic.
func Compile(source string, flags Flags, opts ...Option) (*Pattern, error) {
	p := &Pattern{
		source:     source,
		flags:      flags,
		timeout:    DefaultTimeout,
		maxMatches: DefaultMaxMatches,
	}
	for _, opt := range opts {
		opt(p)
	}

	re, err := regexp2.Compile(source, engineOptions(flags))
	if err != nil {
		return nil, &PatternError{Pattern: source, Message: err.Error()}
	}
	re.MatchTimeout = p.timeout
	p.re = re
	return p, nil
}

// engineOptions maps the JS-style flag set onto regexp2 options. Global
// and Sticky have no engine-level equivalent; they drive the scan loop
// in FindAll instead.
func engineOptions(f Flags) regexp2.RegexOptions {
	opts := regexp2.None
	if f.IgnoreCase {
		opts |= regexp2.IgnoreCase
	}
	if f.Multiline {
		opts |= regexp2.Multiline
	}
	if f.DotAll {
		opts |= regexp2.Singleline
	}
	if f.Unicode {
		opts |= regexp2.Unicode
	}
	return opts
}

// Source returns the original pattern text.
func (p *Pattern) Source() string { return p.source }

// Flags returns the flag set the pattern was compiled with.
func (p *Pattern) Flags() Flags { return p.flags }

// Timeout returns the per-call match budget.
func (p *Pattern) Timeout() time.Duration { return p.timeout }
