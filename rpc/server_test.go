package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/rext/db"
)

func testStore(t *testing.T) *db.Store {
	t.Helper()
	conn, err := db.Connect(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db.NewStore(conn)
}

// runRequests feeds newline-delimited requests through a server and
// returns the decoded responses in order.
func runRequests(t *testing.T, store *db.Store, requests ...string) []Response {
	t.Helper()
	input := strings.Join(requests, "\n") + "\n"
	var output bytes.Buffer

	server := NewServer(DefaultConfig(), store, strings.NewReader(input), &output)
	require.NoError(t, server.Start())

	var responses []Response
	decoder := json.NewDecoder(&output)
	for decoder.More() {
		var resp Response
		require.NoError(t, decoder.Decode(&resp))
		responses = append(responses, resp)
	}
	return responses
}

func callTool(id int, name string, args map[string]any) string {
	payload, _ := json.Marshal(map[string]any{
		"jsonrpc": JSONRPCVersion,
		"id":      id,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	return string(payload)
}

func TestInitializeAndPing(t *testing.T) {
	responses := runRequests(t, nil,
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
	)
	require.Len(t, responses, 2)
	require.Nil(t, responses[0].Error)

	result := responses[0].Result.(map[string]any)
	info := result["serverInfo"].(map[string]any)
	assert.Equal(t, "rext", info["name"])
}

func TestToolsList(t *testing.T) {
	responses := runRequests(t, nil,
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
	)
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error)

	result := responses[0].Result.(map[string]any)
	tools := result["tools"].([]any)
	var names []string
	for _, tool := range tools {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t,
		[]string{"compile", "find", "highlight", "replace", "save_pattern", "list_patterns"},
		names)
}

func TestFindTool(t *testing.T) {
	subject := "Call me at 123-456-7890 or 987-654-3210 for more information."
	responses := runRequests(t, nil,
		callTool(1, "find", map[string]any{
			"pattern": `(\d{3})-(\d{3})-(\d{4})`,
			"flags":   "g",
			"subject": subject,
		}),
	)
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error)

	result := responses[0].Result.(map[string]any)
	assert.Equal(t, float64(2), result["total"])

	matches := result["matches"].([]any)
	first := matches[0].(map[string]any)
	assert.Equal(t, "123-456-7890", first["text"])
	assert.Equal(t, float64(11), first["start"])
}

func TestCompileToolRejectsInvalidPattern(t *testing.T) {
	responses := runRequests(t, nil,
		callTool(1, "compile", map[string]any{"pattern": "("}),
	)
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, PatternSyntax, responses[0].Error.Code)
	assert.NotNil(t, responses[0].Error.Data, "engine diagnostic travels in data")
}

func TestHighlightToolEscapes(t *testing.T) {
	responses := runRequests(t, nil,
		callTool(1, "highlight", map[string]any{
			"pattern": "y",
			"flags":   "g",
			"subject": "x <mark>y</mark> z",
		}),
	)
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error)

	result := responses[0].Result.(map[string]any)
	html := result["html"].(string)
	assert.Contains(t, html, "&lt;mark&gt;")
	assert.Contains(t, html, `<mark data-match="1"`)

	// Concatenated segment texts reproduce the subject
	var rebuilt strings.Builder
	for _, seg := range result["segments"].([]any) {
		rebuilt.WriteString(seg.(map[string]any)["text"].(string))
	}
	assert.Equal(t, "x <mark>y</mark> z", rebuilt.String())
}

func TestReplaceTool(t *testing.T) {
	responses := runRequests(t, nil,
		callTool(1, "replace", map[string]any{
			"pattern":     `(\w+)@(\w+)`,
			"flags":       "g",
			"subject":     "alice@example",
			"replacement": "$2/$1",
		}),
	)
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error)
	result := responses[0].Result.(map[string]any)
	assert.Equal(t, "example/alice", result["result"])
}

func TestUnknownToolAndMethod(t *testing.T) {
	responses := runRequests(t, nil,
		callTool(1, "nope", nil),
		`{"jsonrpc":"2.0","id":2,"method":"bogus/method"}`,
	)
	require.Len(t, responses, 2)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, MethodNotFound, responses[0].Error.Code)
	require.NotNil(t, responses[1].Error)
	assert.Equal(t, MethodNotFound, responses[1].Error.Code)
}

func TestNotificationsGetNoResponse(t *testing.T) {
	responses := runRequests(t, nil,
		`{"jsonrpc":"2.0","method":"ping"}`,
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
	)
	require.Len(t, responses, 1, "notifications must not be answered")
	assert.Equal(t, float64(1), responses[0].ID)
}

func TestPatternLibraryTools(t *testing.T) {
	store := testStore(t)

	responses := runRequests(t, store,
		callTool(1, "save_pattern", map[string]any{
			"name":    "phone",
			"pattern": `\d{3}-\d{4}`,
			"flags":   "g",
		}),
		callTool(2, "list_patterns", nil),
	)
	require.Len(t, responses, 2)
	require.Nil(t, responses[0].Error)
	require.Nil(t, responses[1].Error)

	result := responses[1].Result.(map[string]any)
	patterns := result["patterns"].([]any)
	require.Len(t, patterns, 1)
	assert.Equal(t, "phone", patterns[0].(map[string]any)["Name"])
}

func TestSavePatternValidates(t *testing.T) {
	store := testStore(t)

	responses := runRequests(t, store,
		callTool(1, "save_pattern", map[string]any{"name": "bad", "pattern": "("}),
	)
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, PatternSyntax, responses[0].Error.Code)
}

func TestFindRecordsRun(t *testing.T) {
	store := testStore(t)

	responses := runRequests(t, store,
		callTool(1, "find", map[string]any{
			"pattern": `\d+`,
			"flags":   "g",
			"subject": "1 22 333",
		}),
	)
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error)

	runs, err := store.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, `\d+`, runs[0].Pattern)
	assert.Equal(t, 3, runs[0].MatchCount)
	assert.NotEmpty(t, runs[0].SessionID)
}

func TestPatternToolsWithoutStore(t *testing.T) {
	responses := runRequests(t, nil,
		callTool(1, "list_patterns", nil),
	)
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, DatabaseError, responses[0].Error.Code)
}

func TestErrorObjectFormatting(t *testing.T) {
	err := NewError(PatternSyntax, "Invalid pattern", "missing closing )")
	assert.Equal(t, fmt.Sprintf("Invalid pattern (%d): missing closing )", PatternSyntax), err.Error())

	bare := NewError(NoMatches, "Nothing matched")
	assert.Equal(t, fmt.Sprintf("Nothing matched (%d)", NoMatches), bare.Error())
}
