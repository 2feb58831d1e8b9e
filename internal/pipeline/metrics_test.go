package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataco/internal/config"
)

func TestSetupMetrics_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.Metrics
	}{
		{"unknown backend", config.Metrics{Backend: "graphite"}},
		{"pushgateway without url", config.Metrics{Backend: "pushgateway", Job: "dataco"}},
		{"datadog without addr", config.Metrics{Backend: "datadog", Job: "dataco"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flush, err := SetupMetrics(tt.cfg, nil)
			require.Error(t, err)
			assert.Nil(t, flush)
		})
	}
}

func TestSetupMetrics_Disabled(t *testing.T) {
	t.Parallel()

	for _, backend := range []string{"", "none"} {
		flush, err := SetupMetrics(config.Metrics{Backend: backend}, nil)
		require.NoError(t, err)
		require.NotNil(t, flush)
		flush()
	}
}
