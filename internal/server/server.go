// Package server speaks JSON-RPC 2.0 over newline-delimited stdio: it
// parses request envelopes, routes tools/call to the input operator or
// the monitor state manager, and writes exactly one response per request
// in arrival order.
package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leafliber/iris-mcp/internal/metrics"
	"github.com/leafliber/iris-mcp/internal/monitor"
	"github.com/leafliber/iris-mcp/internal/operator"
)

// Server owns one transport session: the monitor state manager, the
// input operator, and the compiled tool catalog.
type Server struct {
	logger      *zap.Logger
	monitors    *monitor.Manager
	operator    operator.Operator
	tools       []*tool
	toolsByName map[string]*tool
}

// New builds a server over the given manager and operator. The tool
// catalog is static; its schemas are compiled here, once.
func New(logger *zap.Logger, monitors *monitor.Manager, op operator.Operator) (*Server, error) {
	tools, err := buildCatalog()
	if err != nil {
		return nil, fmt.Errorf("building tool catalog: %w", err)
	}

	s := &Server{
		logger:      logger,
		monitors:    monitors,
		operator:    op,
		tools:       tools,
		toolsByName: make(map[string]*tool, len(tools)),
	}
	for _, t := range tools {
		s.toolsByName[t.name] = t
	}
	return s, nil
}

// Serve runs the session on os.Stdin and os.Stdout.
func (s *Server) Serve() error {
	return s.Run(os.Stdin, os.Stdout)
}

// Run processes requests from input line by line until EOF, writing one
// response per line to output. A malformed line is answered with a parse
// error and the loop continues; only a transport write failure or a
// scanner error ends the session.
func (s *Server) Run(input io.Reader, output io.Writer) error {
	scanner := bufio.NewScanner(input)
	// Tool results carrying accumulated events can be large.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	encoder := json.NewEncoder(output)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Debug("request parse failed", zap.Error(err))
			metrics.RequestsTotal.WithLabelValues("parse", "error").Inc()
			if writeErr := s.writeError(encoder, json.RawMessage("null"), codeParseError, "Parse error: "+err.Error()); writeErr != nil {
				return fmt.Errorf("writing parse error response: %w", writeErr)
			}
			continue
		}

		if req.JSONRPC != "2.0" {
			if !req.isNotification() {
				metrics.RequestsTotal.WithLabelValues(req.Method, "error").Inc()
				if writeErr := s.writeError(encoder, req.ID, codeInvalidRequest, fmt.Sprintf("Invalid JSON-RPC version: %q. Expected 2.0", req.JSONRPC)); writeErr != nil {
					return fmt.Errorf("writing version error response: %w", writeErr)
				}
			}
			continue
		}

		// Notifications have no ID and receive no response.
		if req.isNotification() {
			s.logger.Debug("notification ignored", zap.String("method", req.Method))
			continue
		}

		if err := s.dispatch(encoder, &req); err != nil {
			return err
		}
	}

	return scanner.Err()
}

func (s *Server) dispatch(encoder *json.Encoder, req *request) error {
	requestID := uuid.NewString()
	start := time.Now()

	s.logger.Debug("request received",
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
	)

	var result any
	var rpcErr *rpcError

	switch req.Method {
	case "initialize":
		result = initializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities:    serverCapabilities{Tools: &toolCapability{}},
			ServerInfo:      serverInfo{Name: serverName, Version: serverVersion},
		}
	case "initialized", "notifications/initialized", "ping":
		result = map[string]any{}
	case "tools/list":
		result = s.listTools()
	case "tools/call":
		result, rpcErr = s.callTool(requestID, req.Params)
	default:
		rpcErr = &rpcError{Code: codeMethodNotFound, Message: "Method not found: " + req.Method}
	}

	outcome := "ok"
	if rpcErr != nil {
		outcome = "error"
	}
	metrics.RequestsTotal.WithLabelValues(req.Method, outcome).Inc()
	metrics.RequestDuration.Observe(float64(time.Since(start).Microseconds()) / 1000)

	if rpcErr != nil {
		s.logger.Debug("request failed",
			zap.String("request_id", requestID),
			zap.String("method", req.Method),
			zap.Int("code", rpcErr.Code),
			zap.String("message", rpcErr.Message),
		)
		return s.writeError(encoder, req.ID, rpcErr.Code, rpcErr.Message)
	}
	return s.writeResult(encoder, req.ID, result)
}

func (s *Server) listTools() toolsListResult {
	descriptions := make([]toolDescription, 0, len(s.tools))
	for _, t := range s.tools {
		descriptions = append(descriptions, toolDescription{
			Name:        t.name,
			Description: t.description,
			InputSchema: t.inputSchema,
		})
	}
	return toolsListResult{Tools: descriptions}
}

func (s *Server) callTool(requestID string, params json.RawMessage) (any, *rpcError) {
	if len(params) == 0 {
		return nil, invalidParams("Missing params")
	}

	var call toolsCallParams
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, invalidParams("Invalid tools/call params: %v", err)
	}
	if call.Name == "" {
		return nil, invalidParams("Missing tool name")
	}

	t, ok := s.toolsByName[call.Name]
	if !ok {
		return nil, &rpcError{Code: codeMethodNotFound, Message: "Unknown tool: " + call.Name}
	}

	if err := t.validateArguments(call.Arguments); err != nil {
		metrics.ToolCalls.WithLabelValues(t.name, "error").Inc()
		return nil, s.toRPCError(requestID, t.name, err)
	}

	result, err := t.handler(s, call.Arguments)
	if err != nil {
		metrics.ToolCalls.WithLabelValues(t.name, "error").Inc()
		return nil, s.toRPCError(requestID, t.name, err)
	}

	metrics.ToolCalls.WithLabelValues(t.name, "ok").Inc()
	return result, nil
}

// toRPCError converts a handler failure into its wire form. Protocol
// errors and monitor errors pass through with their codes; anything else
// is answered generically and logged with full detail.
func (s *Server) toRPCError(requestID, toolName string, err error) *rpcError {
	var re *rpcError
	if errors.As(err, &re) {
		return re
	}
	var merr *monitor.Error
	if errors.As(err, &merr) {
		return &rpcError{Code: monitorErrorCode(merr.Code), Message: merr.Msg}
	}

	s.logger.Error("tool call failed",
		zap.String("request_id", requestID),
		zap.String("tool", toolName),
		zap.Error(err),
	)
	return internalError("internal error")
}

func (s *Server) writeResult(encoder *json.Encoder, id json.RawMessage, result any) error {
	return encoder.Encode(response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (s *Server) writeError(encoder *json.Encoder, id json.RawMessage, code int, message string) error {
	return encoder.Encode(response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	})
}
