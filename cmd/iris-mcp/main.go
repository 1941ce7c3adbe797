package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/leafliber/iris-mcp/internal/capture"
	"github.com/leafliber/iris-mcp/internal/metrics"
	"github.com/leafliber/iris-mcp/internal/monitor"
	"github.com/leafliber/iris-mcp/internal/operator"
	"github.com/leafliber/iris-mcp/internal/server"
	"github.com/leafliber/iris-mcp/internal/storage"
)

func main() {
	// Logger — stderr only, stdout carries the protocol.
	logger := mustBuildLogger(envOrDefault("IRIS_LOG_LEVEL", "info"))
	defer logger.Sync() //nolint:errcheck // best-effort flush

	// Config from env
	captureBackend := envOrDefault("IRIS_CAPTURE_BACKEND", "platform")
	syntheticIntervalMs := envOrDefaultInt("IRIS_SYNTHETIC_INTERVAL_MS", 500)
	clickhouseDSN := os.Getenv("CLICKHOUSE_DSN")
	metricsAddr := os.Getenv("IRIS_METRICS_ADDR")

	sessionID := uuid.NewString()

	logger.Info("starting iris-mcp server",
		zap.String("session_id", sessionID),
		zap.String("capture_backend", captureBackend),
	)

	// Telemetry mirror — ClickHouse or log fallback
	var mirror storage.EventMirror
	if clickhouseDSN != "" {
		chMirror, err := storage.NewClickHouseMirror(clickhouseDSN, sessionID, logger)
		if err != nil {
			logger.Warn("clickhouse connection failed, falling back to log mirror",
				zap.Error(err),
			)
			mirror = storage.NewLogMirror(logger)
		} else {
			mirror = chMirror
			logger.Info("clickhouse mirror connected")
		}
	} else {
		mirror = storage.NewLogMirror(logger)
		logger.Info("no CLICKHOUSE_DSN set, using log mirror")
	}
	defer mirror.Close()

	// Capture adapters
	var adapters map[monitor.Kind]monitor.Adapter
	switch captureBackend {
	case "synthetic":
		interval := time.Duration(syntheticIntervalMs) * time.Millisecond
		adapters = map[monitor.Kind]monitor.Adapter{
			monitor.KindScreen:   capture.SyntheticScreen(interval),
			monitor.KindKeyboard: capture.SyntheticKeyboard(interval),
			monitor.KindMouse:    capture.SyntheticMouse(interval),
		}
	case "platform":
		adapters = map[monitor.Kind]monitor.Adapter{
			monitor.KindScreen:   capture.PlatformScreen(),
			monitor.KindKeyboard: capture.PlatformKeyboard(),
			monitor.KindMouse:    capture.PlatformMouse(),
		}
	default:
		logger.Fatal("unknown capture backend", zap.String("backend", captureBackend))
	}

	// Monitor state manager, teeing every captured event into the mirror
	manager := monitor.NewManager(logger, adapters,
		monitor.WithObserver(func(kind monitor.Kind, e monitor.Event) {
			metrics.EventsCaptured.WithLabelValues(kind.String()).Inc()
			mirror.Record(kind, e)
		}),
	)

	// Optional metrics listener
	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("metrics listener starting", zap.String("addr", metricsAddr))
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Error("metrics listener failed", zap.Error(err))
			}
		}()
	}

	srv, err := server.New(logger, manager, operator.Platform())
	if err != nil {
		logger.Fatal("failed to build server", zap.Error(err))
	}

	// Serve until stdin closes; a malformed line never ends the session.
	if err := srv.Serve(); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
	logger.Info("stdin closed, shutting down", zap.String("session_id", sessionID))
}

func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
