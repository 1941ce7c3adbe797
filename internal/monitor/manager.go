package monitor

import (
	"sync"

	"go.uber.org/zap"
)

// Adapter starts the platform capture stream for one kind. Start returns
// once the stream is established; from then on the adapter delivers events
// to the sink from goroutines it owns, for the remaining process lifetime.
// Events emitted while Start is still in flight are not lost.
//
// A NotImplemented or PermissionDenied return is treated as permanent:
// the manager never calls Start for that kind again.
type Adapter interface {
	Start(sink func(Event)) (Handle, error)
}

// Handle is the opaque token for a running capture stream. The manager
// retains it for the process lifetime; there is no stop operation.
type Handle interface {
	// Backend names the platform mechanism behind the stream, for logs.
	Backend() string
}

// slotState tracks the lifecycle of one kind's capture stream.
type slotState int

const (
	slotStopped slotState = iota
	slotStarting
	slotRunning
	slotUnavailable
)

// slot is one kind's event log and stream lifecycle state. Lifecycle
// fields are guarded by mu; the log synchronizes itself, so appends and
// read snapshots never wait on a slow start.
type slot struct {
	mu      sync.Mutex
	state   slotState
	started chan struct{} // closed when Starting resolves
	handle  Handle
	err     error // sticky start failure, set iff state == slotUnavailable
	log     EventLog
}

// failure reports the sticky start error, or nil once the slot is running.
// Callers invoke it only after the started channel has closed.
func (s *slot) failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == slotUnavailable {
		return s.err
	}
	return nil
}

// ReadResult is one incremental read of a kind's log. NextCursor and Total
// both equal the log length at snapshot time; passing NextCursor back to a
// later read yields exactly the events appended in between.
type ReadResult struct {
	Events     []Event
	NextCursor int
	Total      int
}

// Manager owns the per-kind monitor slots: lazy single-flight stream
// startup, append-only accumulation, and cursor-addressed reads. All
// methods are safe for concurrent use.
type Manager struct {
	logger   *zap.Logger
	adapters map[Kind]Adapter
	observer func(Kind, Event)
	slots    map[Kind]*slot
}

// Option configures a Manager.
type Option func(*Manager)

// WithObserver registers a hook invoked after every append, outside the
// log's critical section. The hook must not block; it exists to tee
// events into telemetry sinks.
func WithObserver(fn func(Kind, Event)) Option {
	return func(m *Manager) {
		m.observer = fn
	}
}

// NewManager creates a manager with one slot per kind. Kinds missing from
// adapters report NotImplemented on first use.
func NewManager(logger *zap.Logger, adapters map[Kind]Adapter, opts ...Option) *Manager {
	m := &Manager{
		logger:   logger,
		adapters: adapters,
		slots:    make(map[Kind]*slot, len(Kinds)),
	}
	for _, k := range Kinds {
		m.slots[k] = &slot{}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureStarted brings kind's capture stream up if it is not already.
// Idempotent: at most one adapter Start ever runs per kind. Concurrent
// callers during startup wait for the single in-flight attempt and share
// its outcome. A failed start is remembered for the process lifetime;
// later calls return the same error without touching the adapter again.
func (m *Manager) EnsureStarted(kind Kind) error {
	s, ok := m.slots[kind]
	if !ok {
		return NotImplemented(kind, "unknown monitor kind")
	}
	return m.ensureStarted(kind, s)
}

func (m *Manager) ensureStarted(kind Kind, s *slot) error {
	s.mu.Lock()
	switch s.state {
	case slotRunning:
		s.mu.Unlock()
		return nil
	case slotUnavailable:
		err := s.err
		s.mu.Unlock()
		return err
	case slotStarting:
		started := s.started
		s.mu.Unlock()
		<-started
		return s.failure()
	}

	// Stopped: this caller performs the start. The adapter call happens
	// outside the lock; the Starting state keeps it single-flight.
	s.state = slotStarting
	s.started = make(chan struct{})
	s.mu.Unlock()

	handle, err := m.startAdapter(kind)

	s.mu.Lock()
	if err != nil {
		s.state = slotUnavailable
		s.err = err
	} else {
		s.state = slotRunning
		s.handle = handle
	}
	close(s.started)
	s.mu.Unlock()

	if err != nil {
		m.logger.Warn("monitor unavailable",
			zap.Stringer("kind", kind),
			zap.Error(err),
		)
		return err
	}
	m.logger.Info("monitor started",
		zap.Stringer("kind", kind),
		zap.String("backend", handle.Backend()),
	)
	return nil
}

func (m *Manager) startAdapter(kind Kind) (Handle, error) {
	adapter := m.adapters[kind]
	if adapter == nil {
		return nil, NotImplemented(kind, "no capture backend configured")
	}
	return adapter.Start(func(e Event) { m.Push(kind, e) })
}

// Read returns the events at indices >= cursor for kind, starting the
// capture stream on first use. A cursor at or beyond the log length yields
// an empty result with NextCursor = Total = length; a negative cursor is
// rejected before any start side effect. Repeated reads with the same
// cursor on an unchanged log return the same result.
func (m *Manager) Read(kind Kind, cursor int) (ReadResult, error) {
	s, ok := m.slots[kind]
	if !ok {
		return ReadResult{}, NotImplemented(kind, "unknown monitor kind")
	}
	if cursor < 0 {
		return ReadResult{}, InvalidCursor(kind, cursor)
	}
	if err := m.ensureStarted(kind, s); err != nil {
		return ReadResult{}, err
	}

	events, total := s.log.Snapshot(cursor)
	return ReadResult{Events: events, NextCursor: total, Total: total}, nil
}

// Push appends one event to kind's log. Safe to call from any goroutine;
// adapters invoke it through the sink passed to Start. Events are never
// dropped or reordered relative to other pushes for the same kind.
func (m *Manager) Push(kind Kind, e Event) {
	s, ok := m.slots[kind]
	if !ok {
		m.logger.Warn("dropping event for unknown monitor kind", zap.Int("kind", int(kind)))
		return
	}
	s.log.Append(e)
	if m.observer != nil {
		m.observer(kind, e)
	}
}
