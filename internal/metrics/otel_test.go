package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/actionsum/focusday/internal/config"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	return sums
}

func TestOTelCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	rec, err := NewOTel(provider, provider.Shutdown)
	require.NoError(t, err)

	ctx := context.Background()
	rec.Tick(ctx)
	rec.Tick(ctx)
	rec.ProbeFailed(ctx)
	rec.SessionFlushed(ctx, "Editor", 120)
	rec.SessionFlushed(ctx, "Browser", 60)
	rec.SessionDiscarded(ctx)
	rec.PersistFailed(ctx)

	sums := collectSums(t, reader)
	assert.Equal(t, int64(2), sums["focusday_sampler_ticks_total"])
	assert.Equal(t, int64(1), sums["focusday_probe_failures_total"])
	assert.Equal(t, int64(2), sums["focusday_sessions_flushed_total"])
	assert.Equal(t, int64(180), sums["focusday_tracked_seconds_total"])
	assert.Equal(t, int64(1), sums["focusday_sessions_discarded_total"])
	assert.Equal(t, int64(1), sums["focusday_persist_failures_total"])

	assert.NoError(t, rec.Shutdown(ctx))
}

func TestNewExporterRequiresEndpoint(t *testing.T) {
	_, err := NewExporter(context.Background(), config.MetricsConfig{})
	assert.Error(t, err)
}
