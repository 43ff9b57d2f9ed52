package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hospital-is/hisctl/internal/config"
	"github.com/hospital-is/hisctl/internal/log"
	"github.com/hospital-is/hisctl/internal/metrics"
	"github.com/hospital-is/hisctl/internal/telemetry"
	"github.com/hospital-is/hisctl/internal/version"
)

// setupLogging builds the process logger. CLI commands log to stderr; the
// terminal UI logs to logging.file.
func setupLogging(cfg *config.Config, toFile bool) (*log.Logger, func(), error) {
	output := log.OutputStderr()
	if toFile && cfg.Logging.File != "" {
		out, err := log.OutputFile(cfg.Logging.File)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = out
	}

	// Debug logging also records source locations.
	logCfg := log.DefaultConfig()
	level := log.ParseLevel(cfg.Logging.Level)
	if level == log.LevelDebug {
		logCfg = log.DevelopmentConfig()
	}
	logCfg.Level = level
	logCfg.Format = log.ParseFormat(cfg.Logging.Format)
	logCfg.Output = output
	logCfg.ServiceVersion = version.GetInfo().Version

	logger := log.New(logCfg)
	log.SetDefaultLogger(logger)

	return logger, func() { _ = output.Close() }, nil
}

// setupMetrics registers the process metrics and, when metrics.addr is set,
// serves them until cleanup.
func setupMetrics(cfg *config.Config, logger *log.Logger) (*metrics.Metrics, func()) {
	m := metrics.InitDefault()
	if cfg.Metrics.Addr == "" {
		return m, func() {}
	}

	srv, err := metrics.Listen(cfg.Metrics.Addr, prometheus.DefaultGatherer)
	if err != nil {
		logger.Warn("Failed to start metrics endpoint", "addr", cfg.Metrics.Addr, "error", err)
		return m, func() {}
	}
	logger.Info("Serving metrics", "addr", srv.Addr())

	return m, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// setupTelemetry starts tracing when telemetry.enabled is set. It reports
// through the process logger installed by setupLogging.
func setupTelemetry(ctx context.Context, cfg *config.Config) func() {
	if !cfg.Telemetry.Enabled {
		return func() {}
	}
	logger := log.DefaultLogger()

	telemCfg := telemetry.DefaultConfig()
	telemCfg.Enabled = true
	telemCfg.ServiceVersion = version.GetInfo().Version
	if cfg.Telemetry.ServiceName != "" {
		telemCfg.ServiceName = cfg.Telemetry.ServiceName
	}
	telemCfg.Endpoint = cfg.Telemetry.Endpoint
	telemCfg.Insecure = cfg.Telemetry.Insecure
	telemCfg.SampleRate = clampSampleRate(cfg.Telemetry.SampleRate)

	shutdown, err := telemetry.InitProvider(ctx, telemCfg)
	if err != nil {
		logger.Warn("Failed to initialize telemetry", "error", err)
		return func() {}
	}

	logger.Info("Telemetry enabled",
		"endpoint", telemCfg.Endpoint,
		"sample_rate", telemCfg.SampleRate,
	)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to flush telemetry", "error", err)
		}
	}
}

func clampSampleRate(value float64) float64 {
	switch {
	case value <= 0:
		return 0.0
	case value >= 1:
		return 1.0
	default:
		return value
	}
}
