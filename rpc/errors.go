package rpc

import "fmt"

// Error codes following JSON-RPC 2.0 standard and custom domain errors
const (
	// JSON-RPC 2.0 standard error codes
	ParseError     = -32700 // Invalid JSON was received
	InvalidRequest = -32600 // The JSON sent is not a valid Request object
	MethodNotFound = -32601 // The method does not exist
	InvalidParams  = -32602 // Invalid method parameters
	InternalError  = -32603 // Internal JSON-RPC error

	// Custom domain error codes (10xxx range)
	PatternSyntax = 10001 // Pattern is not a valid regular expression
	MatchTimeout  = 10002 // Match exceeded its time budget
	NoMatches     = 10003 // Pattern produced no matches
	DatabaseError = 10008 // History store operation failed
)

// Error represents a structured error for the RPC protocol
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("%s (%d): %v", e.Message, e.Code, e.Data)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

// NewError creates a new protocol error with optional data
func NewError(code int, message string, data ...any) *Error {
	err := &Error{
		Code:    code,
		Message: message,
	}
	if len(data) > 0 {
		err.Data = data[0]
	}
	return err
}
