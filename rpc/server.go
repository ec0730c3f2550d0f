package rpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/termfx/rext/db"
	"github.com/termfx/rext/models"
)

// Config holds the RPC server configuration
type Config struct {
	// Match budget applied to every compile
	MatchTimeout time.Duration

	// Cap on matches collected per find call
	MaxMatches int

	// Record runs to the history store when one is attached
	RecordRuns bool

	// Debug logging to stderr
	Debug bool
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		MatchTimeout: 2 * time.Second,
		MaxMatches:   10000,
		RecordRuns:   true,
		Debug:        false,
	}
}

// ToolHandler represents a function that handles a tool call
type ToolHandler func(params json.RawMessage) (any, error)

// StdioServer handles RPC communication over stdio
type StdioServer struct {
	config Config
	store  *db.Store

	reader *bufio.Reader
	writer *bufio.Writer

	// Tool registry
	tools map[string]ToolHandler
	mu    sync.RWMutex

	// Session tracking
	session *models.Session

	// Debug logging
	debugLog func(format string, args ...any)
}

// NewStdioServer creates a server reading stdin and writing stdout. The
// store may be nil, in which case nothing is persisted.
func NewStdioServer(config Config, store *db.Store) *StdioServer {
	return NewServer(config, store, os.Stdin, os.Stdout)
}

// NewServer creates a server over arbitrary streams, mainly for tests.
func NewServer(config Config, store *db.Store, r io.Reader, w io.Writer) *StdioServer {
	server := &StdioServer{
		config: config,
		store:  store,
		reader: bufio.NewReader(r),
		writer: bufio.NewWriter(w),
		tools:  make(map[string]ToolHandler),
	}

	if config.Debug {
		server.debugLog = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
		}
	} else {
		server.debugLog = func(format string, args ...any) {}
	}

	if store != nil {
		session, err := store.BeginSession(map[string]any{"transport": "stdio"})
		if err != nil {
			server.debugLog("Failed to create session: %v", err)
		} else {
			server.session = session
			server.debugLog("Session created: %s", session.ID)
		}
	}

	server.registerBuiltinTools()
	return server
}

// RegisterTool adds a custom tool handler
func (s *StdioServer) RegisterTool(name string, handler ToolHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[name] = handler
}

// Start begins processing JSON-RPC requests from the input stream
func (s *StdioServer) Start() error {
	sessionID := ""
	if s.session != nil {
		sessionID = s.session.ID
	}
	s.debugLog("RPC server started, session: %s", sessionID)

	decoder := json.NewDecoder(s.reader)

	for {
		var req Request
		err := decoder.Decode(&req)

		if err == io.EOF {
			s.debugLog("EOF received, shutting down gracefully")
			s.endSession()
			return nil
		}

		if err != nil {
			if err == io.ErrUnexpectedEOF {
				s.debugLog("Unexpected EOF, waiting for more data")
				continue
			}

			s.debugLog("JSON decode error: %v", err)
			s.sendResponse(ErrorResponse(nil, ParseError, fmt.Sprintf("Parse error: %v", err)))

			// Try to recover by creating a new decoder
			decoder = json.NewDecoder(s.reader)
			continue
		}

		response := s.handleRequest(req)

		// Don't send response for notifications (no ID)
		if req.ID != nil {
			s.sendResponse(response)
		}
	}
}

// handleRequest routes requests to appropriate handlers
func (s *StdioServer) handleRequest(req Request) Response {
	s.debugLog("Handling method: %s", req.Method)

	switch req.Method {
	case "initialize":
		return SuccessResponse(req.ID, map[string]any{
			"protocolVersion": JSONRPCVersion,
			"serverInfo": map[string]any{
				"name":    "rext",
				"version": Version,
			},
		})
	case "ping":
		return SuccessResponse(req.ID, map[string]any{})
	case "tools/list":
		return SuccessResponse(req.ID, map[string]any{
			"tools": GetToolDefinitions(),
		})
	case "tools/call":
		return s.handleCallTool(req)
	default:
		return ErrorResponse(req.ID, MethodNotFound,
			fmt.Sprintf("Method not found: %s", req.Method))
	}
}

// handleCallTool dispatches a tools/call request to its registered handler.
func (s *StdioServer) handleCallTool(req Request) Response {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return ErrorResponse(req.ID, InvalidParams, fmt.Sprintf("Invalid params: %v", err))
	}

	s.mu.RLock()
	handler, ok := s.tools[params.Name]
	s.mu.RUnlock()
	if !ok {
		return ErrorResponse(req.ID, MethodNotFound,
			fmt.Sprintf("Unknown tool: %s", params.Name))
	}

	result, err := handler(params.Arguments)
	if err != nil {
		if rpcErr, ok := err.(*Error); ok {
			return ErrorResponse(req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		}
		return ErrorResponse(req.ID, InternalError, err.Error())
	}
	return SuccessResponse(req.ID, result)
}

// sendResponse writes a response to the output stream
func (s *StdioServer) sendResponse(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.debugLog("Failed to marshal response: %v", err)
		return
	}

	fmt.Fprintf(s.writer, "%s\n", data)
	s.writer.Flush()
}

func (s *StdioServer) endSession() {
	if s.store != nil && s.session != nil {
		if err := s.store.EndSession(s.session.ID); err != nil {
			s.debugLog("Failed to end session: %v", err)
		}
	}
}

// Version reported by the initialize handshake.
const Version = "1.0.0"
