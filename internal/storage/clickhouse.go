package storage

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/leafliber/iris-mcp/internal/metrics"
	"github.com/leafliber/iris-mcp/internal/monitor"
)

const (
	bufferSize    = 10_000
	flushInterval = 100 * time.Millisecond
	flushBatch    = 1000
	drainTimeout  = 2 * time.Second
)

// queuedEvent defers payload marshaling to the flush loop so Record stays
// cheap on the capture path.
type queuedEvent struct {
	kind  monitor.Kind
	event monitor.Event
}

// ClickHouseMirror streams captured events into ClickHouse asynchronously.
// Record is non-blocking — events are buffered and batch-inserted in a
// background goroutine; a full buffer drops the event and counts it.
type ClickHouseMirror struct {
	conn      driver.Conn
	buffer    chan queuedEvent
	done      chan struct{}
	flushed   chan struct{}
	logger    *zap.Logger
	sessionID string
}

// NewClickHouseMirror connects to ClickHouse and starts the background
// flush loop. sessionID tags every row so overlapping server runs stay
// distinguishable.
func NewClickHouseMirror(dsn, sessionID string, logger *zap.Logger) (*ClickHouseMirror, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	if opts.TLS == nil {
		opts.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, err
	}

	m := &ClickHouseMirror{
		conn:      conn,
		buffer:    make(chan queuedEvent, bufferSize),
		done:      make(chan struct{}),
		flushed:   make(chan struct{}),
		logger:    logger,
		sessionID: sessionID,
	}

	go m.flushLoop()
	return m, nil
}

// Record queues one event for async insertion.
// Non-blocking: drops the event if the buffer is full.
func (m *ClickHouseMirror) Record(kind monitor.Kind, event monitor.Event) {
	select {
	case m.buffer <- queuedEvent{kind: kind, event: event}:
	default:
		metrics.MirrorDropped.Inc()
		m.logger.Warn("mirror buffer full, dropping event",
			zap.Stringer("kind", kind),
		)
	}
}

// Close signals the flush loop to drain remaining events.
func (m *ClickHouseMirror) Close() {
	close(m.done)
	<-m.flushed
}

func (m *ClickHouseMirror) flushLoop() {
	defer close(m.flushed)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]queuedEvent, 0, flushBatch)

	for {
		select {
		case q := <-m.buffer:
			batch = append(batch, q)
			if len(batch) >= flushBatch {
				m.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				m.flush(batch)
				batch = batch[:0]
			}
		case <-m.done:
			drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			defer cancel()
		drainLoop:
			for {
				select {
				case q := <-m.buffer:
					batch = append(batch, q)
				case <-drainCtx.Done():
					break drainLoop
				default:
					break drainLoop
				}
			}
			if len(batch) > 0 {
				m.flush(batch)
			}
			return
		}
	}
}

func (m *ClickHouseMirror) flush(events []queuedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batch, err := m.conn.PrepareBatch(ctx, `
		INSERT INTO input_events (
			session_id, captured_at, kind, payload
		)
	`)
	if err != nil {
		m.logger.Error("clickhouse prepare batch failed", zap.Error(err))
		return
	}

	for _, q := range events {
		payload, err := json.Marshal(q.event)
		if err != nil {
			m.logger.Error("event payload marshal failed",
				zap.Stringer("kind", q.kind),
				zap.Error(err),
			)
			continue
		}

		if err := batch.Append(
			m.sessionID,
			time.UnixMicro(q.event.TimestampMicros()),
			q.kind.String(),
			string(payload),
		); err != nil {
			m.logger.Error("clickhouse append event failed",
				zap.Stringer("kind", q.kind),
				zap.Error(err),
			)
		}
	}

	if err := batch.Send(); err != nil {
		m.logger.Error("clickhouse batch send failed",
			zap.Int("batch_size", len(events)),
			zap.Error(err),
		)
	}
}

// LogMirror is a fallback EventMirror for local development.
type LogMirror struct {
	logger *zap.Logger
}

// NewLogMirror creates a LogMirror that outputs events to the given logger.
func NewLogMirror(logger *zap.Logger) *LogMirror {
	return &LogMirror{logger: logger}
}

func (m *LogMirror) Record(kind monitor.Kind, event monitor.Event) {
	m.logger.Debug("input_event",
		zap.Stringer("kind", kind),
		zap.Int64("timestamp_micros", event.TimestampMicros()),
	)
}

func (m *LogMirror) Close() {}
