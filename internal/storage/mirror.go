package storage

import "github.com/leafliber/iris-mcp/internal/monitor"

// EventMirror receives copies of captured monitor events for outward
// telemetry. Record must NEVER block the caller and never serves reads;
// the in-memory logs remain the only read path.
type EventMirror interface {
	Record(kind monitor.Kind, event monitor.Event)
	Close()
}
