package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/termfx/rext/core"
	"github.com/termfx/rext/highlight"
)

// patternParams is the argument shape shared by the pattern tools.
type patternParams struct {
	Pattern string `json:"pattern"`
	Flags   string `json:"flags,omitempty"`
	Subject string `json:"subject,omitempty"`
}

// registerBuiltinTools wires the standard tool set into the registry.
func (s *StdioServer) registerBuiltinTools() {
	s.RegisterTool("compile", s.handleCompile)
	s.RegisterTool("find", s.handleFind)
	s.RegisterTool("highlight", s.handleHighlight)
	s.RegisterTool("replace", s.handleReplace)
	s.RegisterTool("save_pattern", s.handleSavePattern)
	s.RegisterTool("list_patterns", s.handleListPatterns)
}

// compilePattern parses flags and compiles with the server's budget,
// translating core errors into protocol errors.
func (s *StdioServer) compilePattern(pattern, flags string) (*core.Pattern, error) {
	f, err := core.ParseFlags(flags)
	if err != nil {
		return nil, NewError(InvalidParams, err.Error())
	}
	p, err := core.Compile(pattern, f,
		core.WithTimeout(s.config.MatchTimeout),
		core.WithMaxMatches(s.config.MaxMatches))
	if err != nil {
		var patErr *core.PatternError
		if errors.As(err, &patErr) {
			return nil, NewError(PatternSyntax, "Invalid pattern", patErr.Message)
		}
		return nil, err
	}
	return p, nil
}

// translateMatchErr maps core matching errors onto protocol errors.
func translateMatchErr(err error) error {
	var timeoutErr *core.TimeoutError
	if errors.As(err, &timeoutErr) {
		return NewError(MatchTimeout, "Match timed out", timeoutErr.Error())
	}
	return NewError(InternalError, err.Error())
}

// handleCompile validates a pattern without running it.
func (s *StdioServer) handleCompile(params json.RawMessage) (any, error) {
	var p patternParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, NewError(InvalidParams, fmt.Sprintf("Invalid params: %v", err))
	}
	if _, err := s.compilePattern(p.Pattern, p.Flags); err != nil {
		return nil, err
	}
	return map[string]any{"valid": true}, nil
}

// handleFind runs the pattern over the subject and returns the result,
// recording a run when a store is attached.
func (s *StdioServer) handleFind(params json.RawMessage) (any, error) {
	var p patternParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, NewError(InvalidParams, fmt.Sprintf("Invalid params: %v", err))
	}
	compiled, err := s.compilePattern(p.Pattern, p.Flags)
	if err != nil {
		return nil, err
	}

	result, err := compiled.Run(p.Subject)
	if err != nil {
		s.recordTimeout(p)
		return nil, translateMatchErr(err)
	}
	s.recordRun(p.Subject, result)
	return result, nil
}

// handleHighlight returns the structured segment rendering of a run.
func (s *StdioServer) handleHighlight(params json.RawMessage) (any, error) {
	var p patternParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, NewError(InvalidParams, fmt.Sprintf("Invalid params: %v", err))
	}
	compiled, err := s.compilePattern(p.Pattern, p.Flags)
	if err != nil {
		return nil, err
	}

	matches, err := compiled.FindAll(p.Subject)
	if err != nil {
		s.recordTimeout(p)
		return nil, translateMatchErr(err)
	}
	segments := highlight.Split(p.Subject, matches)
	return map[string]any{
		"segments": segments,
		"html":     highlight.HTML(segments),
		"total":    len(matches),
	}, nil
}

// handleReplace returns a substitution preview.
func (s *StdioServer) handleReplace(params json.RawMessage) (any, error) {
	var p struct {
		patternParams
		Replacement string `json:"replacement"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, NewError(InvalidParams, fmt.Sprintf("Invalid params: %v", err))
	}
	compiled, err := s.compilePattern(p.Pattern, p.Flags)
	if err != nil {
		return nil, err
	}

	out, err := compiled.Replace(p.Subject, p.Replacement)
	if err != nil {
		return nil, translateMatchErr(err)
	}
	return map[string]any{"result": out}, nil
}

// handleSavePattern stores a named pattern in the library.
func (s *StdioServer) handleSavePattern(params json.RawMessage) (any, error) {
	var p struct {
		Name    string `json:"name"`
		Pattern string `json:"pattern"`
		Flags   string `json:"flags,omitempty"`
		Notes   string `json:"notes,omitempty"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, NewError(InvalidParams, fmt.Sprintf("Invalid params: %v", err))
	}
	if p.Name == "" {
		return nil, NewError(InvalidParams, "name is required")
	}
	if s.store == nil {
		return nil, NewError(DatabaseError, "no history store attached")
	}

	// Reject unsaveable garbage up front
	if _, err := s.compilePattern(p.Pattern, p.Flags); err != nil {
		return nil, err
	}

	saved, err := s.store.SavePattern(p.Name, p.Pattern, p.Flags, p.Notes)
	if err != nil {
		return nil, NewError(DatabaseError, err.Error())
	}
	return saved, nil
}

// handleListPatterns returns the whole pattern library.
func (s *StdioServer) handleListPatterns(json.RawMessage) (any, error) {
	if s.store == nil {
		return nil, NewError(DatabaseError, "no history store attached")
	}
	patterns, err := s.store.ListPatterns()
	if err != nil {
		return nil, NewError(DatabaseError, err.Error())
	}
	return map[string]any{"patterns": patterns}, nil
}

func (s *StdioServer) recordRun(subject string, result *core.Result) {
	if !s.config.RecordRuns || s.store == nil {
		return
	}
	sessionID := ""
	if s.session != nil {
		sessionID = s.session.ID
	}
	if _, err := s.store.SaveRun(sessionID, subject, result); err != nil {
		s.debugLog("Failed to record run: %v", err)
	}
}

func (s *StdioServer) recordTimeout(p patternParams) {
	if !s.config.RecordRuns || s.store == nil {
		return
	}
	sessionID := ""
	if s.session != nil {
		sessionID = s.session.ID
	}
	if _, err := s.store.SaveTimeout(sessionID, p.Subject, p.Pattern, p.Flags); err != nil {
		s.debugLog("Failed to record timeout: %v", err)
	}
}
