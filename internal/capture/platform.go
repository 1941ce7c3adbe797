package capture

import (
	"fmt"
	"os"
	"runtime"

	"github.com/leafliber/iris-mcp/internal/monitor"
)

// Env flags reporting OS permission state ahead of the native backends.
// Setting one to "denied" marks capture access as explicitly refused, which
// surfaces as a sticky PermissionDenied instead of NotImplemented.
const (
	EnvAccessibility   = "IRIS_ACCESSIBILITY"
	EnvScreenRecording = "IRIS_SCREEN_RECORDING"
)

// platformAdapter reports the state of the native backend for one kind.
// Start never succeeds yet: it returns PermissionDenied when OS trust is
// known to be refused, and NotImplemented guidance naming the outstanding
// native work otherwise. The surrounding machinery (lazy startup,
// single-flight, sticky failures, cursor reads) is exercised end to end,
// so native event delivery can land per platform behind this type.
type platformAdapter struct {
	kind       monitor.Kind
	permission string
	denied     string
	guidance   map[string]string // GOOS -> outstanding native work
}

func (a platformAdapter) Start(func(monitor.Event)) (monitor.Handle, error) {
	if os.Getenv(a.permission) == "denied" {
		return nil, monitor.PermissionDenied(a.kind, a.denied)
	}
	detail, ok := a.guidance[runtime.GOOS]
	if !ok {
		detail = fmt.Sprintf("no %s backend for %s", a.kind, runtime.GOOS)
	}
	return nil, monitor.NotImplemented(a.kind, detail)
}

// PlatformScreen returns the native display event backend for this OS.
func PlatformScreen() monitor.Adapter {
	return platformAdapter{
		kind:       monitor.KindScreen,
		permission: EnvScreenRecording,
		denied:     "screen recording access refused",
		guidance: map[string]string{
			"darwin":  "macOS: bridge display reconfiguration callbacks and ScreenCaptureKit frame delivery",
			"windows": "Windows: implement DXGI output duplication or display change notifications",
			"linux":   "Linux: implement DRM/GBM or X11 RandR events; Wayland likely restricted",
		},
	}
}

// PlatformKeyboard returns the native keyboard event backend for this OS.
func PlatformKeyboard() monitor.Adapter {
	return platformAdapter{
		kind:       monitor.KindKeyboard,
		permission: EnvAccessibility,
		denied:     "accessibility trust not granted",
		guidance: map[string]string{
			"darwin":  "macOS: bridge a CGEventTap for key events (requires accessibility trust)",
			"windows": "Windows: install a WH_KEYBOARD_LL low-level hook",
			"linux":   "Linux: read evdev devices or use the X11 record extension; Wayland restricts global capture",
		},
	}
}

// PlatformMouse returns the native pointer event backend for this OS.
func PlatformMouse() monitor.Adapter {
	return platformAdapter{
		kind:       monitor.KindMouse,
		permission: EnvAccessibility,
		denied:     "accessibility trust not granted",
		guidance: map[string]string{
			"darwin":  "macOS: bridge a CGEventTap for pointer events (requires accessibility trust)",
			"windows": "Windows: install a WH_MOUSE_LL low-level hook",
			"linux":   "Linux: read evdev devices or use the X11 record extension; Wayland restricts global capture",
		},
	}
}
