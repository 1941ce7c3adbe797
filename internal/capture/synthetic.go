package capture

import (
	"time"

	"github.com/leafliber/iris-mcp/internal/monitor"
)

// DefaultSyntheticInterval is the pacing between scripted events.
const DefaultSyntheticInterval = 500 * time.Millisecond

// syntheticAdapter plays a scripted event timeline on a ticker, one pass,
// from a goroutine it owns. Timestamps are taken at emission time.
type syntheticAdapter struct {
	backend  string
	interval time.Duration
	script   []func() monitor.Event
}

func (a syntheticAdapter) Start(sink func(monitor.Event)) (monitor.Handle, error) {
	interval := a.interval
	if interval <= 0 {
		interval = DefaultSyntheticInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for _, build := range a.script {
			<-ticker.C
			sink(build())
		}
	}()
	return streamHandle{a.backend}, nil
}

// SyntheticScreen emits a scripted display timeline: a geometry report, a
// display joining and leaving, and one captured frame.
func SyntheticScreen(interval time.Duration) monitor.Adapter {
	return syntheticAdapter{
		backend:  "synthetic-screen",
		interval: interval,
		script: []func() monitor.Event{
			func() monitor.Event { return monitor.NewGeometryChanged(1920, 1080, 2) },
			func() monitor.Event { return monitor.NewDisplayAdded() },
			func() monitor.Event { return monitor.NewFrameCaptured(1920, 1080, monitor.FormatBGRA8) },
			func() monitor.Event { return monitor.NewDisplayRemoved() },
		},
	}
}

// SyntheticKeyboard emits a scripted typing burst.
func SyntheticKeyboard(interval time.Duration) monitor.Adapter {
	script := make([]func() monitor.Event, 0, 8)
	for _, key := range []string{"I", "R", "I", "S"} {
		key := key
		script = append(script,
			func() monitor.Event { return monitor.NewKeyEvent(key, monitor.KeyPress) },
			func() monitor.Event { return monitor.NewKeyEvent(key, monitor.KeyRelease) },
		)
	}
	return syntheticAdapter{backend: "synthetic-keyboard", interval: interval, script: script}
}

// SyntheticMouse emits a scripted pointer gesture: two moves, a left
// click, and a scroll.
func SyntheticMouse(interval time.Duration) monitor.Adapter {
	return syntheticAdapter{
		backend:  "synthetic-mouse",
		interval: interval,
		script: []func() monitor.Event{
			func() monitor.Event { return monitor.NewMouseMove(120, 240) },
			func() monitor.Event { return monitor.NewMouseMove(480, 360) },
			func() monitor.Event { return monitor.NewMouseButton(monitor.ButtonLeft, monitor.KeyPress) },
			func() monitor.Event { return monitor.NewMouseButton(monitor.ButtonLeft, monitor.KeyRelease) },
			func() monitor.Event { return monitor.NewMouseScroll(0, -3) },
		},
	}
}
