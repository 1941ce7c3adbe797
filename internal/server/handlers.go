package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/leafliber/iris-mcp/internal/metrics"
	"github.com/leafliber/iris-mcp/internal/monitor"
	"github.com/leafliber/iris-mcp/internal/operator"
)

// decodeArgs unmarshals schema-validated arguments into a typed struct.
// Absent arguments decode as the zero value.
func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return invalidParams("invalid arguments: %v", err)
	}
	return nil
}

func handleMouseMove(s *Server, args json.RawMessage) (*callResult, error) {
	var p struct {
		X int32 `json:"x"`
		Y int32 `json:"y"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	if err := s.operator.MouseMove(p.X, p.Y); err != nil {
		return nil, internalError("failed to move mouse: %v", err)
	}
	return textResult("moved pointer to (%d, %d)", p.X, p.Y), nil
}

func handleMouseClick(s *Server, args json.RawMessage) (*callResult, error) {
	var p struct {
		X      int32  `json:"x"`
		Y      int32  `json:"y"`
		Button string `json:"button"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	button, err := operator.ParseButton(p.Button)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	if err := s.operator.MouseClick(p.X, p.Y, button); err != nil {
		return nil, internalError("failed to click: %v", err)
	}
	return textResult("clicked %s button at (%d, %d)", button, p.X, p.Y), nil
}

func handleMouseDoubleClick(s *Server, args json.RawMessage) (*callResult, error) {
	var p struct {
		X      int32  `json:"x"`
		Y      int32  `json:"y"`
		Button string `json:"button"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	button, err := operator.ParseButton(p.Button)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	if err := s.operator.MouseDoubleClick(p.X, p.Y, button); err != nil {
		return nil, internalError("failed to double click: %v", err)
	}
	return textResult("double-clicked %s button at (%d, %d)", button, p.X, p.Y), nil
}

func handleMouseScroll(s *Server, args json.RawMessage) (*callResult, error) {
	var p struct {
		LinesX int32 `json:"lines_x"`
		LinesY int32 `json:"lines_y"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	if err := s.operator.MouseScroll(p.LinesX, p.LinesY); err != nil {
		return nil, internalError("failed to scroll: %v", err)
	}
	return textResult("scrolled (%d, %d)", p.LinesX, p.LinesY), nil
}

func handleMouseGetPosition(s *Server, _ json.RawMessage) (*callResult, error) {
	x, y, err := s.operator.MousePosition()
	if err != nil {
		return nil, internalError("failed to get position: %v", err)
	}
	return textResult("pointer position: (%d, %d)", x, y), nil
}

func handleMouseDrag(s *Server, args json.RawMessage) (*callResult, error) {
	var p struct {
		TargetX int32  `json:"target_x"`
		TargetY int32  `json:"target_y"`
		Button  string `json:"button"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	button, err := operator.ParseButton(p.Button)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	if err := s.operator.MouseDrag(p.TargetX, p.TargetY, button); err != nil {
		return nil, internalError("failed to drag: %v", err)
	}
	return textResult("dragged pointer to (%d, %d) with %s button", p.TargetX, p.TargetY, button), nil
}

func handleMouseButtonControl(s *Server, args json.RawMessage) (*callResult, error) {
	var p struct {
		Button    string `json:"button"`
		Direction string `json:"direction"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	button, err := operator.ParseButton(p.Button)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	direction, err := operator.ParseDirection(p.Direction)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	if err := s.operator.MouseButtonControl(button, direction); err != nil {
		return nil, internalError("failed to control button: %v", err)
	}
	return textResult("performed %s on %s button", direction, button), nil
}

func handleMouseMovePath(s *Server, args json.RawMessage) (*callResult, error) {
	var p struct {
		Points []struct {
			X int32 `json:"x"`
			Y int32 `json:"y"`
		} `json:"points"`
		SpeedMs int64 `json:"speed_ms"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	points := make([]operator.Point, len(p.Points))
	for i, pt := range p.Points {
		points[i] = operator.Point{X: pt.X, Y: pt.Y}
	}
	stepDelay := time.Duration(p.SpeedMs) * time.Millisecond
	if err := s.operator.MouseMovePath(points, stepDelay); err != nil {
		return nil, internalError("failed to move along path: %v", err)
	}
	return textResult("moved pointer along path of %d points", len(points)), nil
}

func handleTypeText(s *Server, args json.RawMessage) (*callResult, error) {
	var p struct {
		Text string `json:"text"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	if err := s.operator.TypeText(p.Text); err != nil {
		return nil, internalError("failed to type: %v", err)
	}
	return textResult("typed text: %s", p.Text), nil
}

func handleSystemCommand(s *Server, args json.RawMessage) (*callResult, error) {
	var p struct {
		Command string `json:"command"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	cmd, err := operator.ParseSystemCommand(p.Command)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	if err := s.operator.SystemCommand(cmd); err != nil {
		return nil, internalError("failed to execute command: %v", err)
	}
	return textResult("executed command: %s", cmd), nil
}

func handleKeyControl(s *Server, args json.RawMessage) (*callResult, error) {
	var p struct {
		Key       string `json:"key"`
		Direction string `json:"direction"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	key, err := operator.ParseKey(p.Key)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	direction, err := operator.ParseDirection(p.Direction)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	if err := s.operator.KeyControl(key, direction); err != nil {
		return nil, internalError("failed to control key: %v", err)
	}
	return textResult("performed %s on key %s", direction, p.Key), nil
}

func handleMonitorScreenEvents(s *Server, args json.RawMessage) (*callResult, error) {
	return s.readMonitor(monitor.KindScreen, args)
}

func handleMonitorKeyboardEvents(s *Server, args json.RawMessage) (*callResult, error) {
	return s.readMonitor(monitor.KindKeyboard, args)
}

func handleMonitorMouseEvents(s *Server, args json.RawMessage) (*callResult, error) {
	return s.readMonitor(monitor.KindMouse, args)
}

// readMonitor serves one incremental read of a kind's event log. The
// cursor defaults to 0 when absent, including when the arguments object
// is absent entirely.
func (s *Server) readMonitor(kind monitor.Kind, args json.RawMessage) (*callResult, error) {
	var p struct {
		Cursor *int   `json:"cursor"`
		Reason string `json:"reason"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	cursor := 0
	if p.Cursor != nil {
		cursor = *p.Cursor
	}

	res, err := s.monitors.Read(kind, cursor)
	if err != nil {
		return nil, err
	}
	metrics.MonitorReads.WithLabelValues(kind.String()).Inc()

	events := res.Events
	if events == nil {
		events = []monitor.Event{}
	}
	summary := fmt.Sprintf("returned %d %s events, next_cursor=%d (total=%d)",
		len(events), kind, res.NextCursor, res.Total)
	return &callResult{Content: []contentBlock{
		{Type: "text", Text: summary},
		{Type: "json", JSON: monitorPayload{
			Events:     events,
			NextCursor: res.NextCursor,
			Total:      res.Total,
		}},
	}}, nil
}
