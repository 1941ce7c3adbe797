// Package capturetest provides deterministic capture adapters for tests.
package capturetest

import (
	"sync/atomic"

	"github.com/leafliber/iris-mcp/internal/monitor"
)

// Handle is a trivial monitor.Handle naming its backend.
type Handle struct {
	Name string
}

func (h Handle) Backend() string {
	if h.Name == "" {
		return "test"
	}
	return h.Name
}

// Script is an adapter that delivers a fixed event list synchronously
// inside Start and counts invocations.
type Script struct {
	Events []monitor.Event
	starts atomic.Int32
}

func (s *Script) Start(sink func(monitor.Event)) (monitor.Handle, error) {
	s.starts.Add(1)
	for _, e := range s.Events {
		sink(e)
	}
	return Handle{}, nil
}

// Starts reports how many times Start has been invoked.
func (s *Script) Starts() int { return int(s.starts.Load()) }

// Unsupported is an adapter that fails every Start with Err.
type Unsupported struct {
	Err    error
	starts atomic.Int32
}

func (u *Unsupported) Start(func(monitor.Event)) (monitor.Handle, error) {
	u.starts.Add(1)
	return nil, u.Err
}

// Starts reports how many times Start has been invoked.
func (u *Unsupported) Starts() int { return int(u.starts.Load()) }
