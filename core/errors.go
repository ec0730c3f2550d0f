package core

import (
	"fmt"
	"time"
)

// PatternError reports a pattern that is not valid under the engine's
// grammar. The engine diagnostic is preserved verbatim for display.
type PatternError struct {
	Pattern string
	Message string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %s", e.Pattern, e.Message)
}

// TimeoutError reports a match run that exceeded its time budget,
// typically a catastrophically backtracking pattern. It is recoverable
// and distinct from a syntax error.
type TimeoutError struct {
	Pattern string
	Budget  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("pattern %q exceeded the %v match budget (possible catastrophic backtracking)", e.Pattern, e.Budget)
}
