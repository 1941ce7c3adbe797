// Package operator defines the input injection capability behind the
// input-control tools: pointer movement, clicks, drags, typing, and
// keyboard shortcuts aimed at the local desktop session.
package operator

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Button names a physical mouse button.
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonMiddle Button = "middle"
	ButtonRight  Button = "right"
)

// ParseButton validates a wire button name.
func ParseButton(s string) (Button, error) {
	switch s {
	case "left":
		return ButtonLeft, nil
	case "middle":
		return ButtonMiddle, nil
	case "right":
		return ButtonRight, nil
	default:
		return "", fmt.Errorf("invalid button: %s", s)
	}
}

// Direction is the half or whole of a button/key transition.
type Direction string

const (
	Press   Direction = "press"
	Release Direction = "release"
	Click   Direction = "click"
)

// ParseDirection validates a wire direction name.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "press":
		return Press, nil
	case "release":
		return Release, nil
	case "click":
		return Click, nil
	default:
		return "", fmt.Errorf("invalid direction: %s", s)
	}
}

// SystemCommand is a well-known editing shortcut played through the
// platform's conventional chord.
type SystemCommand string

const (
	CommandCopy      SystemCommand = "copy"
	CommandPaste     SystemCommand = "paste"
	CommandCut       SystemCommand = "cut"
	CommandUndo      SystemCommand = "undo"
	CommandSave      SystemCommand = "save"
	CommandSelectAll SystemCommand = "select_all"
)

// ParseSystemCommand validates a wire command name.
func ParseSystemCommand(s string) (SystemCommand, error) {
	switch s {
	case "copy", "paste", "cut", "undo", "save", "select_all":
		return SystemCommand(s), nil
	default:
		return "", fmt.Errorf("unknown command: %s", s)
	}
}

// Key is a canonical key name accepted by KeyControl.
type Key string

// ParseKey normalizes a wire key name. Aliases map to canonical names
// ("ctrl" to Control, "cmd" to Meta) and any single character stands for
// itself.
func ParseKey(s string) (Key, error) {
	switch strings.ToLower(s) {
	case "return", "enter":
		return "Return", nil
	case "shift":
		return "Shift", nil
	case "control", "ctrl":
		return "Control", nil
	case "alt", "option":
		return "Alt", nil
	case "meta", "command", "cmd":
		return "Meta", nil
	case "space":
		return "Space", nil
	case "tab":
		return "Tab", nil
	case "escape", "esc":
		return "Escape", nil
	case "backspace":
		return "Backspace", nil
	case "delete":
		return "Delete", nil
	case "up", "uparrow":
		return "Up", nil
	case "down", "downarrow":
		return "Down", nil
	case "left", "leftarrow":
		return "Left", nil
	case "right", "rightarrow":
		return "Right", nil
	}
	if utf8.RuneCountInString(s) == 1 {
		return Key(s), nil
	}
	return "", fmt.Errorf("unknown key: %s", s)
}

// Point is one waypoint of a pointer path.
type Point struct {
	X int32
	Y int32
}

// Operator injects input into the local desktop session. Implementations
// hold no state between calls; each method performs one gesture and
// returns once the platform has accepted it.
type Operator interface {
	MouseMove(x, y int32) error
	MouseClick(x, y int32, button Button) error
	MouseDoubleClick(x, y int32, button Button) error
	MouseScroll(linesX, linesY int32) error
	MousePosition() (x, y int32, err error)
	MouseDrag(targetX, targetY int32, button Button) error
	MouseButtonControl(button Button, direction Direction) error
	MouseMovePath(points []Point, stepDelay time.Duration) error
	TypeText(text string) error
	SystemCommand(cmd SystemCommand) error
	KeyControl(key Key, direction Direction) error
}
