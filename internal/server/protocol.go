package server

import (
	"encoding/json"
	"fmt"

	"github.com/leafliber/iris-mcp/internal/monitor"
)

// The server always answers initialize with its own protocol version;
// the client decides whether it can proceed.
const (
	protocolVersion = "2024-11-05"
	serverName      = "iris-mcp"
	serverVersion   = "0.1.0"
)

// JSON-RPC 2.0 standard error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// Application error codes for monitor failures, stable across releases.
const (
	codeMonitorNotImplemented   = -32001
	codeMonitorPermissionDenied = -32002
	codeMonitorInvalidCursor    = -32003
)

// request is a JSON-RPC 2.0 request or notification. Notifications
// are distinguished by having no ID field.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (r *request) isNotification() bool {
	return len(r.ID) == 0
}

// response is a JSON-RPC 2.0 response. Exactly one of Result or Error
// is set.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError is a JSON-RPC 2.0 error object. It implements error so tool
// handlers can return protocol errors directly; anything else escaping a
// handler is answered as a generic internal error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string { return e.Message }

func invalidParams(format string, args ...any) *rpcError {
	return &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf(format, args...)}
}

func internalError(format string, args ...any) *rpcError {
	return &rpcError{Code: codeInternalError, Message: fmt.Sprintf(format, args...)}
}

// monitorErrorCode maps a monitor failure onto its reserved wire code.
func monitorErrorCode(code monitor.ErrorCode) int {
	switch code {
	case monitor.CodeNotImplemented:
		return codeMonitorNotImplemented
	case monitor.CodePermissionDenied:
		return codeMonitorPermissionDenied
	case monitor.CodeInvalidCursor:
		return codeMonitorInvalidCursor
	default:
		return codeInternalError
	}
}

type initializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    serverCapabilities `json:"capabilities"`
	ServerInfo      serverInfo         `json:"serverInfo"`
}

type serverCapabilities struct {
	Tools *toolCapability `json:"tools,omitempty"`
}

type toolCapability struct{}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type toolsListResult struct {
	Tools []toolDescription `json:"tools"`
}

type toolDescription struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"inputSchema"`
}

type toolsCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// contentBlock is one entry of a tools/call result content array: a
// human-readable text block or a structured json block.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	JSON any    `json:"json,omitempty"`
}

type callResult struct {
	Content []contentBlock `json:"content"`
}

func textResult(format string, args ...any) *callResult {
	return &callResult{Content: []contentBlock{
		{Type: "text", Text: fmt.Sprintf(format, args...)},
	}}
}

// monitorPayload is the structured half of a monitor tool result.
type monitorPayload struct {
	Events     []monitor.Event `json:"events"`
	NextCursor int             `json:"next_cursor"`
	Total      int             `json:"total"`
}
