package main

import (
	"log/slog"
	"strings"

	"ormlite/internal/config"
	"ormlite/internal/metrics"
	"ormlite/internal/metrics/datadog"
	"ormlite/internal/metrics/prompush"
)

const defaultDogStatsDAddr = "127.0.0.1:8125"

// setupMetrics installs the configured metrics backend and returns the
// function that flushes it at exit. A backend that fails to initialize is
// logged and the nop backend stays in place.
func setupMetrics(m config.Metrics, l *slog.Logger) (flush func()) {
	l = loggerOrDefault(l)
	name := strings.ToLower(strings.TrimSpace(m.Backend))

	var (
		b   metrics.Backend
		err error
	)
	switch name {
	case "", "none":
		l.Debug("metrics disabled", "backend", m.Backend)
		return func() {}

	case "prometheus", "prom", "pushgateway":
		b, err = prompush.NewBackend(m.Job, m.PushgatewayURL)

	case "datadog", "dogstatsd":
		addr := m.Datadog.Addr
		if addr == "" {
			addr = defaultDogStatsDAddr
		}
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  m.Datadog.Namespace,
			GlobalTags: m.Datadog.Tags,
		})

	default:
		l.Warn("unknown metrics backend; metrics disabled", "backend", m.Backend)
		return func() {}
	}
	if err != nil {
		l.Warn("metrics backend unavailable; using nop", "backend", name, "err", err)
		return func() {}
	}

	l.Debug("metrics enabled", "backend", name, "job", m.Job, "pushgateway_url", m.PushgatewayURL)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			l.Warn("metrics flush", "err", err)
		}
		metrics.Reset()
	}
}
