package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iris_requests_total",
		Help: "Total number of JSON-RPC requests handled, labelled by method and outcome.",
	}, []string{"method", "outcome"})

	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "iris_request_duration_ms",
		Help:    "Request handling latency in milliseconds.",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 500},
	})

	ToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iris_tool_calls_total",
		Help: "Total number of tools/call invocations, labelled by tool and outcome.",
	}, []string{"tool", "outcome"})

	EventsCaptured = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iris_events_captured_total",
		Help: "Total number of monitor events appended, labelled by kind.",
	}, []string{"kind"})

	MonitorReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iris_monitor_reads_total",
		Help: "Total number of monitor log reads, labelled by kind.",
	}, []string{"kind"})

	MirrorDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iris_mirror_dropped_total",
		Help: "Total number of events dropped by the telemetry mirror due to a full buffer.",
	})
)
