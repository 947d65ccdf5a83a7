package telemetry

import (
	"context"
	"runtime/pprof"
	"testing"

	"github.com/agency/backoffice/internal/infrastructure/config"
	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		p, err := NewProfiler(config.ProfilingConfig{}, zap.NewNop())
		require.NoError(t, err)
		assert.False(t, p.IsEnabled())
		assert.NoError(t, p.Stop())
		assert.NoError(t, p.Stop())
	})

	t.Run("enabled requires a server address", func(t *testing.T) {
		_, err := NewProfiler(config.ProfilingConfig{Enabled: true, ApplicationName: "backoffice"}, zap.NewNop())
		assert.ErrorContains(t, err, "server address")
	})

	t.Run("enabled requires an application name", func(t *testing.T) {
		_, err := NewProfiler(config.ProfilingConfig{Enabled: true, ServerAddress: "http://pyroscope:4040"}, zap.NewNop())
		assert.ErrorContains(t, err, "application name")
	})
}

func TestProfileTypes(t *testing.T) {
	base := profileTypes(config.ProfilingConfig{})
	assert.Contains(t, base, pyroscope.ProfileCPU)
	assert.NotContains(t, base, pyroscope.ProfileMutexCount)
	assert.NotContains(t, base, pyroscope.ProfileBlockCount)

	all := profileTypes(config.ProfilingConfig{MutexProfileFraction: 5, BlockProfileRate: 5})
	assert.Contains(t, all, pyroscope.ProfileMutexDuration)
	assert.Contains(t, all, pyroscope.ProfileBlockDuration)
	assert.Len(t, all, len(base)+4)
}

func TestWithProfilingLabels(t *testing.T) {
	t.Run("attaches labels inside fn", func(t *testing.T) {
		var operation, tenant string
		var called bool
		WithProfilingLabels(context.Background(), map[string]string{
			ProfilingLabelOperation: "summary",
			ProfilingLabelTenantID:  "t-1",
		}, func(ctx context.Context) {
			called = true
			operation, _ = pprof.Label(ctx, ProfilingLabelOperation)
			tenant, _ = pprof.Label(ctx, ProfilingLabelTenantID)
		})
		assert.True(t, called)
		assert.Equal(t, "summary", operation)
		assert.Equal(t, "t-1", tenant)
	})

	t.Run("drops empty values", func(t *testing.T) {
		var ok bool
		WithProfilingLabels(context.Background(), map[string]string{ProfilingLabelTenantID: ""}, func(ctx context.Context) {
			_, ok = pprof.Label(ctx, ProfilingLabelTenantID)
		})
		assert.False(t, ok)
	})
}

func TestTracerProvider_LinkProfilesDisabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), config.TelemetryConfig{}, zap.NewNop())
	require.NoError(t, err)
	tp.LinkProfiles()
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
}
