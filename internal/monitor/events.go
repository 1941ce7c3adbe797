package monitor

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies one of the independent monitoring streams.
type Kind int

const (
	KindScreen Kind = iota + 1
	KindKeyboard
	KindMouse
)

// Kinds lists every stream the manager maintains a slot for.
var Kinds = []Kind{KindScreen, KindKeyboard, KindMouse}

// String returns the lowercase stream name.
func (k Kind) String() string {
	switch k {
	case KindScreen:
		return "screen"
	case KindKeyboard:
		return "keyboard"
	case KindMouse:
		return "mouse"
	default:
		return "unknown"
	}
}

// Event is a single captured input event. Events are immutable after
// construction and marshal to the wire shape returned by the monitor tools.
type Event interface {
	json.Marshaler
	// TimestampMicros reports when the event was captured, in microseconds
	// since the Unix epoch.
	TimestampMicros() int64
}

// NowMicros returns the capture timestamp for an event created at call time.
func NowMicros() int64 {
	return time.Now().UnixMicro()
}

// KeyState distinguishes a press transition from a release.
type KeyState int

const (
	KeyPress KeyState = iota + 1
	KeyRelease
)

// String returns the lowercase state name.
func (s KeyState) String() string {
	switch s {
	case KeyPress:
		return "press"
	case KeyRelease:
		return "release"
	default:
		return "unknown"
	}
}

// KeyboardEvent is one key press or release. Key is the platform-independent
// key name ("A", "Enter", "LeftShift", ...).
type KeyboardEvent struct {
	Time  int64
	Key   string
	State KeyState
}

// NewKeyEvent records a key transition.
func NewKeyEvent(key string, state KeyState) KeyboardEvent {
	return KeyboardEvent{Time: NowMicros(), Key: key, State: state}
}

func (e KeyboardEvent) TimestampMicros() int64 { return e.Time }

func (e KeyboardEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TimestampMicros int64  `json:"timestamp_micros"`
		Key             string `json:"key"`
		EventType       string `json:"event_type"`
	}{e.Time, e.Key, e.State.String()})
}

// MouseButton names a physical mouse button: "left", "middle", "right",
// or "other_N" for additional buttons.
type MouseButton string

const (
	ButtonLeft   MouseButton = "left"
	ButtonMiddle MouseButton = "middle"
	ButtonRight  MouseButton = "right"
)

// OtherButton names an additional button by its platform code.
func OtherButton(code uint8) MouseButton {
	return MouseButton(fmt.Sprintf("other_%d", code))
}

// MouseEventType discriminates the pointer event variants.
type MouseEventType int

const (
	MouseMove MouseEventType = iota + 1
	MouseButtonChange
	MouseScroll
)

// String returns the wire tag for the variant.
func (t MouseEventType) String() string {
	switch t {
	case MouseMove:
		return "move"
	case MouseButtonChange:
		return "button"
	case MouseScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// MouseEvent is one pointer event. Only the fields for its Type are
// meaningful; use the constructors rather than filling the struct directly.
type MouseEvent struct {
	Time   int64
	Type   MouseEventType
	X, Y   int32       // move
	Button MouseButton // button
	State  KeyState    // button
	DeltaX int32       // scroll
	DeltaY int32       // scroll
}

// NewMouseMove records the pointer arriving at (x, y).
func NewMouseMove(x, y int32) MouseEvent {
	return MouseEvent{Time: NowMicros(), Type: MouseMove, X: x, Y: y}
}

// NewMouseButton records a button transition.
func NewMouseButton(button MouseButton, state KeyState) MouseEvent {
	return MouseEvent{Time: NowMicros(), Type: MouseButtonChange, Button: button, State: state}
}

// NewMouseScroll records wheel movement in lines.
func NewMouseScroll(deltaX, deltaY int32) MouseEvent {
	return MouseEvent{Time: NowMicros(), Type: MouseScroll, DeltaX: deltaX, DeltaY: deltaY}
}

func (e MouseEvent) TimestampMicros() int64 { return e.Time }

func (e MouseEvent) MarshalJSON() ([]byte, error) {
	var kind any
	switch e.Type {
	case MouseMove:
		kind = struct {
			Type string `json:"type"`
			X    int32  `json:"x"`
			Y    int32  `json:"y"`
		}{"move", e.X, e.Y}
	case MouseButtonChange:
		kind = struct {
			Type   string `json:"type"`
			Button string `json:"button"`
			State  string `json:"state"`
		}{"button", string(e.Button), e.State.String()}
	case MouseScroll:
		kind = struct {
			Type   string `json:"type"`
			DeltaX int32  `json:"delta_x"`
			DeltaY int32  `json:"delta_y"`
		}{"scroll", e.DeltaX, e.DeltaY}
	default:
		return nil, fmt.Errorf("unknown mouse event type %d", e.Type)
	}
	return json.Marshal(struct {
		TimestampMicros int64 `json:"timestamp_micros"`
		Kind            any   `json:"kind"`
	}{e.Time, kind})
}

// FrameFormat is the pixel layout of a captured frame.
type FrameFormat int

const (
	FormatUnknown FrameFormat = iota
	FormatRGBA8
	FormatBGRA8
	FormatNV12
)

// String returns the lowercase format name.
func (f FrameFormat) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatBGRA8:
		return "bgra8"
	case FormatNV12:
		return "nv12"
	default:
		return "unknown"
	}
}

// ScreenEventType discriminates the display event variants.
type ScreenEventType int

const (
	ScreenGeometryChanged ScreenEventType = iota + 1
	ScreenDisplayAdded
	ScreenDisplayRemoved
	ScreenFrameCaptured
)

// String returns the wire tag for the variant.
func (t ScreenEventType) String() string {
	switch t {
	case ScreenGeometryChanged:
		return "geometry_changed"
	case ScreenDisplayAdded:
		return "display_added"
	case ScreenDisplayRemoved:
		return "display_removed"
	case ScreenFrameCaptured:
		return "frame_captured"
	default:
		return "unknown"
	}
}

// ScreenEvent is one display topology or frame capture event. Only the
// fields for its Type are meaningful; use the constructors.
type ScreenEvent struct {
	Time   int64
	Type   ScreenEventType
	Width  uint32
	Height uint32
	Scale  float32     // geometry_changed
	Format FrameFormat // frame_captured
}

// NewGeometryChanged records a resolution or scale change on the main display.
func NewGeometryChanged(width, height uint32, scale float32) ScreenEvent {
	return ScreenEvent{Time: NowMicros(), Type: ScreenGeometryChanged, Width: width, Height: height, Scale: scale}
}

// NewDisplayAdded records a display joining the topology.
func NewDisplayAdded() ScreenEvent {
	return ScreenEvent{Time: NowMicros(), Type: ScreenDisplayAdded}
}

// NewDisplayRemoved records a display leaving the topology.
func NewDisplayRemoved() ScreenEvent {
	return ScreenEvent{Time: NowMicros(), Type: ScreenDisplayRemoved}
}

// NewFrameCaptured records one captured frame's dimensions and format.
func NewFrameCaptured(width, height uint32, format FrameFormat) ScreenEvent {
	return ScreenEvent{Time: NowMicros(), Type: ScreenFrameCaptured, Width: width, Height: height, Format: format}
}

func (e ScreenEvent) TimestampMicros() int64 { return e.Time }

func (e ScreenEvent) MarshalJSON() ([]byte, error) {
	var kind any
	switch e.Type {
	case ScreenGeometryChanged:
		kind = struct {
			Type   string  `json:"type"`
			Width  uint32  `json:"width"`
			Height uint32  `json:"height"`
			Scale  float32 `json:"scale"`
		}{"geometry_changed", e.Width, e.Height, e.Scale}
	case ScreenDisplayAdded:
		kind = struct {
			Type string `json:"type"`
		}{"display_added"}
	case ScreenDisplayRemoved:
		kind = struct {
			Type string `json:"type"`
		}{"display_removed"}
	case ScreenFrameCaptured:
		kind = struct {
			Type   string `json:"type"`
			Width  uint32 `json:"width"`
			Height uint32 `json:"height"`
			Format string `json:"format"`
		}{"frame_captured", e.Width, e.Height, e.Format.String()}
	default:
		return nil, fmt.Errorf("unknown screen event type %d", e.Type)
	}
	return json.Marshal(struct {
		TimestampMicros int64 `json:"timestamp_micros"`
		Kind            any   `json:"kind"`
	}{e.Time, kind})
}
