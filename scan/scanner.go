// Package scan runs a compiled pattern over directory trees, grep-style.
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/termfx/rext/core"
)

// Scope defines which files a scan visits.
type Scope struct {
	Path           string   `json:"path"`                // Root path to scan
	Include        []string `json:"include,omitempty"`   // File patterns to include (*.log, **/*.txt)
	Exclude        []string `json:"exclude,omitempty"`   // File patterns to exclude
	MaxDepth       int      `json:"max_depth,omitempty"` // Max directory depth (0 = unlimited)
	MaxFiles       int      `json:"max_files,omitempty"` // Max files to process (0 = unlimited)
	MaxBytes       int64    `json:"max_bytes,omitempty"` // Skip files larger than this (0 = unlimited)
	FollowSymlinks bool     `json:"follow_symlinks"`     // Follow symbolic links
}

// FileResult carries one file's matches. A per-file error (unreadable
// file, match timeout) is reported here and never aborts the walk.
type FileResult struct {
	Path    string
	Matches []FileMatch
	Err     error
}

// FileMatch pins a match to a 1-based line and column in its file.
type FileMatch struct {
	Line   int        `json:"line"`
	Column int        `json:"column"`
	Match  core.Match `json:"match"`
}

// Scanner provides parallel file traversal and matching.
type Scanner struct {
	workers    int
	bufferSize int
}

// New creates a scanner with a worker per CPU, doubled for I/O overlap.
func New() *Scanner {
	return &Scanner{
		workers:    runtime.NumCPU() * 2,
		bufferSize: 256,
	}
}

// Scan walks the scope and applies pattern to every included file,
// streaming per-file results. The channel closes when the walk finishes
// or ctx is cancelled.
func (s *Scanner) Scan(ctx context.Context, pattern *core.Pattern, scope Scope) (<-chan FileResult, error) {
	if err := s.validateScope(scope); err != nil {
		return nil, err
	}

	results := make(chan FileResult, s.bufferSize)
	paths := make(chan string, s.bufferSize)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go s.worker(ctx, pattern, paths, results, scope, &wg)
	}

	go func() {
		defer close(paths)
		processed := 0
		var visited map[string]struct{}
		if scope.FollowSymlinks {
			visited = make(map[string]struct{})
			if resolved, err := filepath.EvalSymlinks(scope.Path); err == nil {
				visited[resolved] = struct{}{}
			} else {
				visited[scope.Path] = struct{}{}
			}
		}
		s.scanDirectory(ctx, scope.Path, scope, paths, 0, &processed, visited)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results, nil
}

// worker matches queued files in parallel
func (s *Scanner) worker(
	ctx context.Context,
	pattern *core.Pattern,
	paths <-chan string,
	results chan<- FileResult,
	scope Scope,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-paths:
			if !ok {
				return
			}

			result := s.matchFile(pattern, path, scope)

			select {
			case <-ctx.Done():
				return
			case results <- result:
			}
		}
	}
}

// scanDirectory recursively discovers files matching patterns
func (s *Scanner) scanDirectory(
	ctx context.Context,
	dirPath string,
	scope Scope,
	paths chan<- string,
	depth int,
	processed *int,
	visited map[string]struct{},
) {
	if scope.MaxFiles > 0 && *processed >= scope.MaxFiles {
		return
	}
	select {
	case <-ctx.Done():
		return
	default:
	}

	if scope.MaxDepth > 0 && depth > scope.MaxDepth {
		return
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return // Skip directories we can't read
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fullPath := filepath.Join(dirPath, entry.Name())

		if s.isExcluded(fullPath, scope.Exclude) {
			continue
		}

		// Handle symlinked directories when allowed
		if entry.Type()&os.ModeSymlink != 0 && scope.FollowSymlinks {
			resolvedPath, err := filepath.EvalSymlinks(fullPath)
			if err != nil || resolvedPath == "" {
				continue
			}
			info, err := os.Stat(resolvedPath)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if visited != nil {
					if _, seen := visited[resolvedPath]; seen {
						continue
					}
					visited[resolvedPath] = struct{}{}
				}
				s.scanDirectory(ctx, fullPath, scope, paths, depth+1, processed, visited)
				continue
			}
		}

		if entry.IsDir() {
			if visited != nil {
				realPath := fullPath
				if resolved, err := filepath.EvalSymlinks(fullPath); err == nil && resolved != "" {
					realPath = resolved
				}
				if _, seen := visited[realPath]; seen {
					continue
				}
				visited[realPath] = struct{}{}
			}
			s.scanDirectory(ctx, fullPath, scope, paths, depth+1, processed, visited)
			continue
		}

		if s.isIncluded(fullPath, scope.Include) {
			if scope.MaxFiles > 0 && *processed >= scope.MaxFiles {
				return
			}
			select {
			case <-ctx.Done():
				return
			case paths <- fullPath:
				*processed++
			}
		}
	}
}

// matchFile reads one file and runs the pattern over its content.
func (s *Scanner) matchFile(pattern *core.Pattern, path string, scope Scope) FileResult {
	info, err := os.Stat(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	if scope.MaxBytes > 0 && info.Size() > scope.MaxBytes {
		return FileResult{Path: path, Err: fmt.Errorf("file exceeds %d byte limit", scope.MaxBytes)}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}

	subject := string(content)
	matches, err := pattern.FindAll(subject)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	if len(matches) == 0 {
		return FileResult{Path: path}
	}

	lines := lineStarts(subject)
	fileMatches := make([]FileMatch, len(matches))
	for i, m := range matches {
		line, col := locate(lines, m.Start)
		fileMatches[i] = FileMatch{Line: line, Column: col, Match: m}
	}
	return FileResult{Path: path, Matches: fileMatches}
}

// lineStarts returns the rune offset of the first rune of each line.
func lineStarts(subject string) []int {
	starts := []int{0}
	pos := 0
	for _, r := range subject {
		pos++
		if r == '\n' {
			starts = append(starts, pos)
		}
	}
	return starts
}

// locate converts a rune offset into a 1-based line and column using a
// binary search over precomputed line starts.
func locate(starts []int, offset int) (line, col int) {
	lo, hi := 0, len(starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1, offset - starts[lo] + 1
}

// isIncluded checks if file matches include patterns
func (s *Scanner) isIncluded(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return true // Include all if no patterns specified
	}
	for _, pattern := range patterns {
		if s.matchPattern(path, pattern) {
			return true
		}
	}
	return false
}

// isExcluded checks if file matches exclude patterns
func (s *Scanner) isExcluded(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if s.matchPattern(path, pattern) {
			return true
		}
	}
	return false
}

// matchPattern performs glob-style pattern matching with ** support
func (s *Scanner) matchPattern(path, pattern string) bool {
	if matched, err := doublestar.PathMatch(pattern, path); err == nil && matched {
		return true
	}

	// Try basename for simple patterns without path separators
	if !strings.Contains(pattern, "/") {
		basename := filepath.Base(path)
		if matched, err := doublestar.PathMatch(pattern, basename); err == nil && matched {
			return true
		}
	}

	return false
}

// validateScope validates Scope parameters
func (s *Scanner) validateScope(scope Scope) error {
	if scope.Path == "" {
		return fmt.Errorf("path is required")
	}

	info, err := os.Stat(scope.Path)
	if err != nil {
		return fmt.Errorf("cannot access path %s: %w", scope.Path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path %s is not a directory", scope.Path)
	}
	return nil
}
