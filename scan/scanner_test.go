package scan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/rext/core"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func collect(t *testing.T, results <-chan FileResult) map[string]FileResult {
	t.Helper()
	out := make(map[string]FileResult)
	for res := range results {
		out[res.Path] = res
	}
	return out
}

func compileGlobal(t *testing.T, pattern string) *core.Pattern {
	t.Helper()
	p, err := core.Compile(pattern, core.Flags{Global: true})
	require.NoError(t, err)
	return p
}

func TestScanFindsMatchesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.log", "error at line one\nall good\nerror again\n")
	writeFile(t, dir, "sub/b.log", "no problems here\n")
	writeFile(t, dir, "sub/c.log", "error deep down\n")

	results, err := New().Scan(context.Background(), compileGlobal(t, "error"), Scope{Path: dir})
	require.NoError(t, err)
	byPath := collect(t, results)

	require.Len(t, byPath, 3)

	a := byPath[filepath.Join(dir, "a.log")]
	require.NoError(t, a.Err)
	require.Len(t, a.Matches, 2)
	assert.Equal(t, 1, a.Matches[0].Line)
	assert.Equal(t, 1, a.Matches[0].Column)
	assert.Equal(t, 3, a.Matches[1].Line)
	assert.Equal(t, 1, a.Matches[1].Column)

	b := byPath[filepath.Join(dir, "sub", "b.log")]
	require.NoError(t, b.Err)
	assert.Empty(t, b.Matches)

	c := byPath[filepath.Join(dir, "sub", "c.log")]
	require.NoError(t, c.Err)
	require.Len(t, c.Matches, 1)
}

func TestScanIncludeExcludeGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.txt", "match me")
	writeFile(t, dir, "skip.log", "match me")
	writeFile(t, dir, "nested/deep.txt", "match me")

	results, err := New().Scan(context.Background(), compileGlobal(t, "match"), Scope{
		Path:    dir,
		Include: []string{"*.txt"},
	})
	require.NoError(t, err)
	byPath := collect(t, results)

	var paths []string
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	assert.Equal(t, []string{
		filepath.Join(dir, "keep.txt"),
		filepath.Join(dir, "nested", "deep.txt"),
	}, paths)

	// Exclude wins over include
	results, err = New().Scan(context.Background(), compileGlobal(t, "match"), Scope{
		Path:    dir,
		Include: []string{"*.txt"},
		Exclude: []string{"**/nested/**"},
	})
	require.NoError(t, err)
	byPath = collect(t, results)
	require.Len(t, byPath, 1)
}

func TestScanMultibyteFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "u.txt", "café au lait\nrésumé match\n")

	results, err := New().Scan(context.Background(), compileGlobal(t, "match"), Scope{Path: dir})
	require.NoError(t, err)
	byPath := collect(t, results)

	res := byPath[filepath.Join(dir, "u.txt")]
	require.NoError(t, res.Err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, 2, res.Matches[0].Line)
	assert.Equal(t, 8, res.Matches[0].Column, "columns count runes, not bytes")
}

func TestScanMaxBytes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.txt", "0123456789 match")

	results, err := New().Scan(context.Background(), compileGlobal(t, "match"), Scope{
		Path:     dir,
		MaxBytes: 4,
	})
	require.NoError(t, err)
	byPath := collect(t, results)

	res := byPath[filepath.Join(dir, "big.txt")]
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "byte limit")
}

func TestScanInvalidScope(t *testing.T) {
	_, err := New().Scan(context.Background(), compileGlobal(t, "x"), Scope{})
	assert.Error(t, err)

	_, err = New().Scan(context.Background(), compileGlobal(t, "x"), Scope{Path: "/does/not/exist"})
	assert.Error(t, err)
}

func TestScanContextCancellation(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		writeFile(t, dir, filepath.Join("d", string(rune('a'+i))+".txt"), "match")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := New().Scan(ctx, compileGlobal(t, "match"), Scope{Path: dir})
	require.NoError(t, err)

	// Drain; cancellation must close the channel rather than hang.
	for range results {
	}
}

func TestLineStartsAndLocate(t *testing.T) {
	subject := "ab\ncd\n\nef"
	starts := lineStarts(subject)
	assert.Equal(t, []int{0, 3, 6, 7}, starts)

	tests := []struct {
		offset int
		line   int
		col    int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{4, 2, 2},
		{6, 3, 1},
		{7, 4, 1},
		{8, 4, 2},
	}
	for _, tt := range tests {
		line, col := locate(starts, tt.offset)
		assert.Equal(t, tt.line, line, "offset %d", tt.offset)
		assert.Equal(t, tt.col, col, "offset %d", tt.offset)
	}
}

func TestLocateMultibyte(t *testing.T) {
	// Offsets are rune-based, so multibyte characters count once.
	subject := "é\nz"
	starts := lineStarts(subject)
	require.Equal(t, []int{0, 2}, starts)

	line, col := locate(starts, 2)
	assert.Equal(t, 2, line)
	assert.Equal(t, 1, col)
}
