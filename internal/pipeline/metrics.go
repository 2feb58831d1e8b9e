package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"dataco/internal/config"
	"dataco/internal/metrics"
	"dataco/internal/metrics/datadog"
	"dataco/internal/metrics/prompush"
)

// SetupMetrics installs the configured metrics backend and returns a func
// that flushes it; call it once before the process exits. With backend
// "none" (or empty) the nop backend stays and the flush is a no-op.
func SetupMetrics(m config.Metrics, log *zap.Logger) (func(), error) {
	if log == nil {
		log = zap.NewNop()
	}
	var b metrics.Backend
	switch m.Backend {
	case "", "none":
		log.Debug("metrics disabled")
		return func() {}, nil
	case "pushgateway":
		pb, err := prompush.NewBackend(m.Job, m.PushgatewayURL)
		if err != nil {
			return nil, err
		}
		b = pb
	case "datadog":
		db, err := datadog.NewBackend(datadog.Config{
			Addr:       m.DatadogAddr,
			GlobalTags: []string{"job:" + m.Job},
		})
		if err != nil {
			return nil, err
		}
		b = db
	default:
		return nil, fmt.Errorf("metrics: unknown backend %q", m.Backend)
	}

	metrics.SetBackend(b)
	log.Info("metrics enabled", zap.String("backend", m.Backend), zap.String("job", m.Job))
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", zap.Error(err))
		}
	}, nil
}
