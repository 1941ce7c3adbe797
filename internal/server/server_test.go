package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/leafliber/iris-mcp/internal/capture/capturetest"
	"github.com/leafliber/iris-mcp/internal/monitor"
	"github.com/leafliber/iris-mcp/internal/operator"
)

// stubOperator records the last gesture and succeeds, or fails every
// call when failing is set.
type stubOperator struct {
	failing bool
	calls   []string
}

func (o *stubOperator) record(format string, args ...any) error {
	if o.failing {
		return fmt.Errorf("injection unavailable")
	}
	o.calls = append(o.calls, fmt.Sprintf(format, args...))
	return nil
}

func (o *stubOperator) MouseMove(x, y int32) error {
	return o.record("move %d %d", x, y)
}

func (o *stubOperator) MouseClick(x, y int32, button operator.Button) error {
	return o.record("click %d %d %s", x, y, button)
}

func (o *stubOperator) MouseDoubleClick(x, y int32, button operator.Button) error {
	return o.record("double_click %d %d %s", x, y, button)
}

func (o *stubOperator) MouseScroll(linesX, linesY int32) error {
	return o.record("scroll %d %d", linesX, linesY)
}

func (o *stubOperator) MousePosition() (int32, int32, error) {
	if o.failing {
		return 0, 0, fmt.Errorf("injection unavailable")
	}
	return 42, 24, nil
}

func (o *stubOperator) MouseDrag(targetX, targetY int32, button operator.Button) error {
	return o.record("drag %d %d %s", targetX, targetY, button)
}

func (o *stubOperator) MouseButtonControl(button operator.Button, direction operator.Direction) error {
	return o.record("button_control %s %s", button, direction)
}

func (o *stubOperator) MouseMovePath(points []operator.Point, stepDelay time.Duration) error {
	return o.record("move_path %d %s", len(points), stepDelay)
}

func (o *stubOperator) TypeText(text string) error {
	return o.record("type %s", text)
}

func (o *stubOperator) SystemCommand(cmd operator.SystemCommand) error {
	return o.record("system %s", cmd)
}

func (o *stubOperator) KeyControl(key operator.Key, direction operator.Direction) error {
	return o.record("key %s %s", key, direction)
}

type testResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

// testMonitorResult is the decoded shape of a monitor tool result.
type testMonitorResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
		JSON struct {
			Events     []json.RawMessage `json:"events"`
			NextCursor int               `json:"next_cursor"`
			Total      int               `json:"total"`
		} `json:"json"`
	} `json:"content"`
}

func newTestServer(t *testing.T, adapters map[monitor.Kind]monitor.Adapter, op operator.Operator) (*Server, *monitor.Manager) {
	t.Helper()
	manager := monitor.NewManager(zap.NewNop(), adapters)
	if op == nil {
		op = &stubOperator{}
	}
	s, err := New(zap.NewNop(), manager, op)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, manager
}

// session feeds raw input lines through a server and returns one decoded
// response per output line.
func session(t *testing.T, s *Server, lines ...string) []testResponse {
	t.Helper()

	input := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var output bytes.Buffer
	if err := s.Run(input, &output); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var responses []testResponse
	scanner := bufio.NewScanner(&output)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var resp testResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			t.Fatalf("unmarshal response: %v\nraw: %s", err, line)
		}
		responses = append(responses, resp)
	}
	return responses
}

func toolCall(id int, name string, arguments any) string {
	req := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params":  map[string]any{"name": name},
	}
	if arguments != nil {
		req["params"].(map[string]any)["arguments"] = arguments
	}
	data, _ := json.Marshal(req)
	return string(data)
}

func decodeMonitorResult(t *testing.T, resp testResponse) testMonitorResult {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: code=%d message=%q", resp.Error.Code, resp.Error.Message)
	}
	var result testMonitorResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshal monitor result: %v", err)
	}
	if len(result.Content) != 2 {
		t.Fatalf("expected text + json content blocks, got %d", len(result.Content))
	}
	if result.Content[0].Type != "text" || result.Content[1].Type != "json" {
		t.Fatalf("unexpected content block types: %s, %s", result.Content[0].Type, result.Content[1].Type)
	}
	return result
}

func TestInitialize(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	responses := session(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)

	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	if responses[0].Error != nil {
		t.Fatalf("unexpected error: %v", responses[0].Error)
	}

	var result initializeResult
	if err := json.Unmarshal(responses[0].Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if result.ProtocolVersion != protocolVersion {
		t.Errorf("protocolVersion = %q, want %q", result.ProtocolVersion, protocolVersion)
	}
	if result.ServerInfo.Name != serverName {
		t.Errorf("serverInfo.name = %q, want %q", result.ServerInfo.Name, serverName)
	}
	if result.Capabilities.Tools == nil {
		t.Error("capabilities.tools missing")
	}
}

func TestPingAndInitialized(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	responses := session(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":2,"method":"initialized"}`,
	)
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	for i, resp := range responses {
		if resp.Error != nil {
			t.Fatalf("response %d: unexpected error: %v", i, resp.Error)
		}
		if string(resp.Result) != "{}" {
			t.Fatalf("response %d: expected empty object result, got %s", i, resp.Result)
		}
	}
}

func TestUnknownMethod(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	responses := session(t, s, `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`)
	if len(responses) != 1 || responses[0].Error == nil {
		t.Fatal("expected error response")
	}
	if responses[0].Error.Code != codeMethodNotFound {
		t.Fatalf("expected %d, got %d", codeMethodNotFound, responses[0].Error.Code)
	}
}

func TestInvalidVersion(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	responses := session(t, s, `{"jsonrpc":"1.0","id":1,"method":"ping"}`)
	if len(responses) != 1 || responses[0].Error == nil {
		t.Fatal("expected error response")
	}
	if responses[0].Error.Code != codeInvalidRequest {
		t.Fatalf("expected %d, got %d", codeInvalidRequest, responses[0].Error.Code)
	}
}

func TestNotificationProducesNoResponse(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	responses := session(t, s,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":7,"method":"ping"}`,
	)
	if len(responses) != 1 {
		t.Fatalf("expected only the ping response, got %d responses", len(responses))
	}
	if string(responses[0].ID) != "7" {
		t.Fatalf("expected response id 7, got %s", responses[0].ID)
	}
}

func TestParseErrorRecovery(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	responses := session(t, s,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
	)
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	if responses[0].Error == nil || responses[0].Error.Code != codeParseError {
		t.Fatalf("expected parse error, got %+v", responses[0])
	}
	if string(responses[0].ID) != "null" {
		t.Fatalf("parse error id must be null, got %s", responses[0].ID)
	}
	if responses[1].Error != nil {
		t.Fatalf("following request must be processed: %v", responses[1].Error)
	}
}

func TestToolsList(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	responses := session(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	if len(responses) != 1 || responses[0].Error != nil {
		t.Fatalf("unexpected response: %+v", responses)
	}

	var result struct {
		Tools []struct {
			Name        string         `json:"name"`
			Description string         `json:"description"`
			InputSchema map[string]any `json:"inputSchema"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(responses[0].Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if len(result.Tools) != 14 {
		t.Fatalf("expected 14 tools, got %d", len(result.Tools))
	}

	byName := make(map[string]map[string]any)
	for _, tl := range result.Tools {
		if tl.Description == "" {
			t.Errorf("tool %s has no description", tl.Name)
		}
		byName[tl.Name] = tl.InputSchema
	}
	for _, name := range []string{"mouse_move", "type_text", "monitor_screen_events", "monitor_keyboard_events", "monitor_mouse_events"} {
		if _, ok := byName[name]; !ok {
			t.Errorf("tool %s missing from catalog", name)
		}
	}

	props, ok := byName["monitor_mouse_events"]["properties"].(map[string]any)
	if !ok {
		t.Fatal("monitor_mouse_events schema has no properties")
	}
	if _, ok := props["cursor"]; !ok {
		t.Error("monitor_mouse_events schema missing cursor property")
	}
}

func TestMonitorRead_EmptyThenPushThenTail(t *testing.T) {
	s, manager := newTestServer(t, map[monitor.Kind]monitor.Adapter{
		monitor.KindScreen: &capturetest.Script{},
	}, nil)

	responses := session(t, s, toolCall(1, "monitor_screen_events", map[string]any{"cursor": 0}))
	result := decodeMonitorResult(t, responses[0])
	payload := result.Content[1].JSON
	if len(payload.Events) != 0 || payload.NextCursor != 0 || payload.Total != 0 {
		t.Fatalf("expected empty read, got %+v", payload)
	}

	manager.Push(monitor.KindScreen, monitor.NewGeometryChanged(1920, 1080, 2))

	responses = session(t, s, toolCall(2, "monitor_screen_events", map[string]any{"cursor": 0}))
	payload = decodeMonitorResult(t, responses[0]).Content[1].JSON
	if len(payload.Events) != 1 || payload.NextCursor != 1 || payload.Total != 1 {
		t.Fatalf("expected one event with next_cursor 1, got %+v", payload)
	}

	var evt struct {
		TimestampMicros int64 `json:"timestamp_micros"`
		Kind            struct {
			Type   string  `json:"type"`
			Width  uint32  `json:"width"`
			Height uint32  `json:"height"`
			Scale  float32 `json:"scale"`
		} `json:"kind"`
	}
	if err := json.Unmarshal(payload.Events[0], &evt); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if evt.TimestampMicros == 0 {
		t.Error("event missing timestamp_micros")
	}
	if evt.Kind.Type != "geometry_changed" || evt.Kind.Width != 1920 || evt.Kind.Height != 1080 {
		t.Errorf("unexpected event payload: %+v", evt.Kind)
	}

	responses = session(t, s, toolCall(3, "monitor_screen_events", map[string]any{"cursor": 1}))
	payload = decodeMonitorResult(t, responses[0]).Content[1].JSON
	if len(payload.Events) != 0 || payload.NextCursor != 1 || payload.Total != 1 {
		t.Fatalf("expected empty tail read, got %+v", payload)
	}
}

func TestMonitorRead_AbsentArgumentsDefaultsCursorZero(t *testing.T) {
	s, _ := newTestServer(t, map[monitor.Kind]monitor.Adapter{
		monitor.KindMouse: &capturetest.Script{Events: []monitor.Event{
			monitor.NewMouseMove(10, 20),
		}},
	}, nil)

	responses := session(t, s, toolCall(1, "monitor_mouse_events", nil))
	payload := decodeMonitorResult(t, responses[0]).Content[1].JSON
	if len(payload.Events) != 1 || payload.NextCursor != 1 {
		t.Fatalf("expected event from cursor 0, got %+v", payload)
	}
}

func TestMonitorRead_NegativeCursor(t *testing.T) {
	adapter := &capturetest.Script{}
	s, _ := newTestServer(t, map[monitor.Kind]monitor.Adapter{
		monitor.KindKeyboard: adapter,
	}, nil)

	responses := session(t, s, toolCall(1, "monitor_keyboard_events", map[string]any{"cursor": -5}))
	if responses[0].Error == nil || responses[0].Error.Code != codeMonitorInvalidCursor {
		t.Fatalf("expected invalid cursor error, got %+v", responses[0])
	}
	if !strings.Contains(responses[0].Error.Message, "-5") {
		t.Errorf("error message must name the cursor value: %q", responses[0].Error.Message)
	}
	if adapter.Starts() != 0 {
		t.Errorf("negative cursor must be rejected before start, saw %d starts", adapter.Starts())
	}
}

func TestMonitorRead_StickyNotImplemented(t *testing.T) {
	adapter := &capturetest.Unsupported{
		Err: monitor.NotImplemented(monitor.KindKeyboard, "no native hook on this platform"),
	}
	s, _ := newTestServer(t, map[monitor.Kind]monitor.Adapter{
		monitor.KindKeyboard: adapter,
	}, nil)

	responses := session(t, s,
		toolCall(1, "monitor_keyboard_events", map[string]any{"cursor": 0}),
		toolCall(2, "monitor_keyboard_events", map[string]any{"cursor": 0}),
		toolCall(3, "monitor_keyboard_events", nil),
	)
	if len(responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(responses))
	}
	for i, resp := range responses {
		if resp.Error == nil || resp.Error.Code != codeMonitorNotImplemented {
			t.Fatalf("response %d: expected not-implemented error, got %+v", i, resp)
		}
		if resp.Error.Message != responses[0].Error.Message {
			t.Fatalf("sticky error must stay identical: %q vs %q", resp.Error.Message, responses[0].Error.Message)
		}
	}
	if adapter.Starts() != 1 {
		t.Fatalf("expected at most one adapter start, got %d", adapter.Starts())
	}
}

func TestMonitorRead_PermissionDenied(t *testing.T) {
	s, _ := newTestServer(t, map[monitor.Kind]monitor.Adapter{
		monitor.KindScreen: &capturetest.Unsupported{
			Err: monitor.PermissionDenied(monitor.KindScreen, "screen recording access not granted"),
		},
	}, nil)

	responses := session(t, s, toolCall(1, "monitor_screen_events", nil))
	if responses[0].Error == nil || responses[0].Error.Code != codeMonitorPermissionDenied {
		t.Fatalf("expected permission denied error, got %+v", responses[0])
	}
}

func TestToolsCall_ParamValidation(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	responses := session(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"arguments":{}}}`,
		toolCall(3, "no_such_tool", nil),
	)
	if responses[0].Error == nil || responses[0].Error.Code != codeInvalidParams {
		t.Fatalf("missing params: expected -32602, got %+v", responses[0])
	}
	if responses[1].Error == nil || responses[1].Error.Code != codeInvalidParams {
		t.Fatalf("missing name: expected -32602, got %+v", responses[1])
	}
	if responses[2].Error == nil || responses[2].Error.Code != codeMethodNotFound {
		t.Fatalf("unknown tool: expected -32601, got %+v", responses[2])
	}
}

func TestToolsCall_SchemaViolationNamesField(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	responses := session(t, s, toolCall(1, "mouse_move", map[string]any{"x": 10}))
	if responses[0].Error == nil || responses[0].Error.Code != codeInvalidParams {
		t.Fatalf("expected -32602, got %+v", responses[0])
	}
	if !strings.Contains(responses[0].Error.Message, "'y'") {
		t.Errorf("error message must name the missing field: %q", responses[0].Error.Message)
	}
}

func TestToolsCall_MistypedField(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	responses := session(t, s, toolCall(1, "mouse_move", map[string]any{"x": 10, "y": "twenty"}))
	if responses[0].Error == nil || responses[0].Error.Code != codeInvalidParams {
		t.Fatalf("expected -32602, got %+v", responses[0])
	}
}

func TestOperatorPassthrough(t *testing.T) {
	op := &stubOperator{}
	s, _ := newTestServer(t, nil, op)

	responses := session(t, s,
		toolCall(1, "mouse_move", map[string]any{"x": 10, "y": 20}),
		toolCall(2, "mouse_click", map[string]any{"x": 1, "y": 2, "button": "right"}),
		toolCall(3, "type_text", map[string]any{"text": "hello"}),
		toolCall(4, "system_command", map[string]any{"command": "copy"}),
		toolCall(5, "key_control", map[string]any{"key": "ctrl", "direction": "press"}),
		toolCall(6, "mouse_move_path", map[string]any{
			"points":   []map[string]any{{"x": 1, "y": 1}, {"x": 2, "y": 2}},
			"speed_ms": 5,
		}),
		toolCall(7, "mouse_get_position", nil),
	)
	for i, resp := range responses {
		if resp.Error != nil {
			t.Fatalf("response %d: unexpected error: %+v", i, resp.Error)
		}
	}

	want := []string{
		"move 10 20",
		"click 1 2 right",
		"type hello",
		"system copy",
		"key Control press",
		"move_path 2 5ms",
	}
	if len(op.calls) != len(want) {
		t.Fatalf("expected %d gestures, got %v", len(want), op.calls)
	}
	for i, call := range want {
		if op.calls[i] != call {
			t.Errorf("gesture %d = %q, want %q", i, op.calls[i], call)
		}
	}

	var posResult struct {
		Content []contentBlock `json:"content"`
	}
	if err := json.Unmarshal(responses[6].Result, &posResult); err != nil {
		t.Fatalf("unmarshal position result: %v", err)
	}
	if !strings.Contains(posResult.Content[0].Text, "(42, 24)") {
		t.Errorf("position result = %q", posResult.Content[0].Text)
	}
}

func TestOperatorPassthrough_UnknownKey(t *testing.T) {
	s, _ := newTestServer(t, nil, &stubOperator{})
	responses := session(t, s, toolCall(1, "key_control", map[string]any{"key": "superkey", "direction": "press"}))
	if responses[0].Error == nil || responses[0].Error.Code != codeInvalidParams {
		t.Fatalf("expected -32602 for unknown key, got %+v", responses[0])
	}
}

func TestOperatorPassthrough_FailureIsInternalError(t *testing.T) {
	s, _ := newTestServer(t, nil, &stubOperator{failing: true})
	responses := session(t, s, toolCall(1, "mouse_move", map[string]any{"x": 0, "y": 0}))
	if responses[0].Error == nil || responses[0].Error.Code != codeInternalError {
		t.Fatalf("expected -32603, got %+v", responses[0])
	}
}

func TestResponsesCarryRequestIDsInOrder(t *testing.T) {
	s, _ := newTestServer(t, map[monitor.Kind]monitor.Adapter{
		monitor.KindMouse: &capturetest.Script{},
	}, nil)

	responses := session(t, s,
		`{"jsonrpc":"2.0","id":"a","method":"ping"}`,
		toolCall(2, "monitor_mouse_events", nil),
		`{"jsonrpc":"2.0","id":3,"method":"tools/list"}`,
	)
	if len(responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(responses))
	}
	wantIDs := []string{`"a"`, `2`, `3`}
	for i, want := range wantIDs {
		if string(responses[i].ID) != want {
			t.Errorf("response %d id = %s, want %s", i, responses[i].ID, want)
		}
	}
}
