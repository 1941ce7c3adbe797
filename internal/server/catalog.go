package server

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// tool is one entry of the tools/call surface: its catalog metadata, the
// compiled input schema every call is validated against, and the handler.
type tool struct {
	name        string
	description string
	inputSchema any
	compiled    *jsonschema.Schema
	handler     func(s *Server, args json.RawMessage) (*callResult, error)
}

// toolSpec is the declarative form a tool is registered with; schemas are
// compiled once when the catalog is built.
type toolSpec struct {
	name        string
	description string
	schema      string
	handler     func(s *Server, args json.RawMessage) (*callResult, error)
}

const pointSchema = `{
	"type": "object",
	"properties": {
		"x": {"type": "integer", "description": "X coordinate"},
		"y": {"type": "integer", "description": "Y coordinate"}
	},
	"required": ["x", "y"]
}`

// monitorSchema is shared by the three monitor tools: an optional read
// cursor plus an optional audit reason. The cursor deliberately has no
// minimum so negative values reach the manager and surface as the
// dedicated invalid-cursor error rather than a schema violation.
const monitorSchema = `{
	"type": "object",
	"properties": {
		"cursor": {"type": "integer", "description": "Read events starting at this cursor, default 0"},
		"reason": {"type": "string", "description": "Reason for the call, for auditing"}
	}
}`

func toolSpecs() []toolSpec {
	return []toolSpec{
		{
			name:        "mouse_move",
			description: "Move the mouse pointer to the given coordinates",
			schema:      pointSchema,
			handler:     handleMouseMove,
		},
		{
			name:        "mouse_click",
			description: "Click a mouse button at the given coordinates",
			schema: `{
				"type": "object",
				"properties": {
					"x": {"type": "integer", "description": "X coordinate"},
					"y": {"type": "integer", "description": "Y coordinate"},
					"button": {"type": "string", "enum": ["left", "right", "middle"], "description": "Mouse button"}
				},
				"required": ["x", "y", "button"]
			}`,
			handler: handleMouseClick,
		},
		{
			name:        "mouse_double_click",
			description: "Double-click a mouse button at the given coordinates",
			schema: `{
				"type": "object",
				"properties": {
					"x": {"type": "integer", "description": "X coordinate"},
					"y": {"type": "integer", "description": "Y coordinate"},
					"button": {"type": "string", "enum": ["left", "right", "middle"], "description": "Mouse button"}
				},
				"required": ["x", "y", "button"]
			}`,
			handler: handleMouseDoubleClick,
		},
		{
			name:        "mouse_scroll",
			description: "Scroll the mouse wheel by the given number of lines",
			schema: `{
				"type": "object",
				"properties": {
					"lines_x": {"type": "integer", "description": "Horizontal lines to scroll"},
					"lines_y": {"type": "integer", "description": "Vertical lines to scroll"}
				},
				"required": ["lines_x", "lines_y"]
			}`,
			handler: handleMouseScroll,
		},
		{
			name:        "mouse_get_position",
			description: "Report the current mouse pointer position",
			schema: `{
				"type": "object",
				"properties": {},
				"required": []
			}`,
			handler: handleMouseGetPosition,
		},
		{
			name:        "type_text",
			description: "Type text using the keyboard",
			schema: `{
				"type": "object",
				"properties": {
					"text": {"type": "string", "description": "Text to type"}
				},
				"required": ["text"]
			}`,
			handler: handleTypeText,
		},
		{
			name:        "system_command",
			description: "Play a system editing shortcut (copy, paste, ...)",
			schema: `{
				"type": "object",
				"properties": {
					"command": {
						"type": "string",
						"enum": ["copy", "paste", "cut", "undo", "save", "select_all"],
						"description": "Command to execute"
					}
				},
				"required": ["command"]
			}`,
			handler: handleSystemCommand,
		},
		{
			name:        "mouse_drag",
			description: "Drag the mouse from its current position to the target position",
			schema: `{
				"type": "object",
				"properties": {
					"target_x": {"type": "integer", "description": "Target X coordinate"},
					"target_y": {"type": "integer", "description": "Target Y coordinate"},
					"button": {"type": "string", "enum": ["left", "middle", "right"], "description": "Mouse button"}
				},
				"required": ["target_x", "target_y", "button"]
			}`,
			handler: handleMouseDrag,
		},
		{
			name:        "mouse_button_control",
			description: "Press, release, or click a mouse button",
			schema: `{
				"type": "object",
				"properties": {
					"button": {"type": "string", "enum": ["left", "middle", "right"], "description": "Mouse button"},
					"direction": {"type": "string", "enum": ["press", "release", "click"], "description": "Transition to perform"}
				},
				"required": ["button", "direction"]
			}`,
			handler: handleMouseButtonControl,
		},
		{
			name:        "mouse_move_path",
			description: "Move the mouse along the given path of points",
			schema: `{
				"type": "object",
				"properties": {
					"points": {
						"type": "array",
						"items": ` + pointSchema + `,
						"description": "Path waypoints"
					},
					"speed_ms": {"type": "integer", "description": "Delay between points in milliseconds"}
				},
				"required": ["points", "speed_ms"]
			}`,
			handler: handleMouseMovePath,
		},
		{
			name:        "key_control",
			description: "Press, release, or click a keyboard key",
			schema: `{
				"type": "object",
				"properties": {
					"key": {"type": "string", "description": "Key name, e.g. a, b, return, shift, control, alt"},
					"direction": {"type": "string", "enum": ["press", "release", "click"], "description": "Transition to perform"}
				},
				"required": ["key", "direction"]
			}`,
			handler: handleKeyControl,
		},
		{
			name:        "monitor_screen_events",
			description: "Read accumulated screen events (display geometry changes and captured frames); monitoring starts on first call",
			schema:      monitorSchema,
			handler:     handleMonitorScreenEvents,
		},
		{
			name:        "monitor_keyboard_events",
			description: "Read accumulated keyboard events; monitoring starts on first call",
			schema:      monitorSchema,
			handler:     handleMonitorKeyboardEvents,
		},
		{
			name:        "monitor_mouse_events",
			description: "Read accumulated mouse events; monitoring starts on first call",
			schema:      monitorSchema,
			handler:     handleMonitorMouseEvents,
		},
	}
}

// buildCatalog compiles every tool's input schema. The catalog is
// static, so a compile failure is a programming error.
func buildCatalog() ([]*tool, error) {
	specs := toolSpecs()
	tools := make([]*tool, 0, len(specs))
	for _, spec := range specs {
		var schemaObj any
		if err := json.Unmarshal([]byte(spec.schema), &schemaObj); err != nil {
			return nil, fmt.Errorf("tool %s: schema unmarshal: %w", spec.name, err)
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema.json", schemaObj); err != nil {
			return nil, fmt.Errorf("tool %s: schema add: %w", spec.name, err)
		}
		compiled, err := c.Compile("schema.json")
		if err != nil {
			return nil, fmt.Errorf("tool %s: schema compile: %w", spec.name, err)
		}

		tools = append(tools, &tool{
			name:        spec.name,
			description: spec.description,
			inputSchema: schemaObj,
			compiled:    compiled,
			handler:     spec.handler,
		})
	}
	return tools, nil
}

// validateArguments checks raw tool arguments against the compiled
// schema. Absent arguments validate as an empty object.
func (t *tool) validateArguments(args json.RawMessage) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	var v any
	if err := json.Unmarshal(args, &v); err != nil {
		return invalidParams("arguments for %s are not valid JSON: %v", t.name, err)
	}
	if err := t.compiled.Validate(v); err != nil {
		return invalidParams("invalid arguments for %s: %v", t.name, err)
	}
	return nil
}
