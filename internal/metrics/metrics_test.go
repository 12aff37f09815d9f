package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-codex/internal/metrics"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCountsObservations(t *testing.T) {
	rec := metrics.NewRecorder()

	rec.ObserveRenderDuration("essays", 3*time.Millisecond)
	rec.ObserveRenderDuration("essays", 5*time.Millisecond)
	rec.IncrementMathFailure("inline")
	rec.IncrementResolve("hit")
	rec.IncrementResolve("hit")
	rec.IncrementResolve("miss")
	rec.IncrementCacheResult("github", "stale")
	rec.ObserveCommand("codex.catalog.sync", "succeeded", 40*time.Millisecond)

	families, err := rec.Registry().Gather()
	require.NoError(t, err)

	byName := map[string]*dto.MetricFamily{}
	for _, family := range families {
		byName[family.GetName()] = family
	}

	render := byName["codex_render_duration_seconds"]
	require.NotNil(t, render)
	assert.Equal(t, uint64(2), render.GetMetric()[0].GetHistogram().GetSampleCount())

	resolves := byName["codex_resolve_total"]
	require.NotNil(t, resolves)
	counts := map[string]float64{}
	for _, m := range resolves.GetMetric() {
		counts[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"hit": 2, "miss": 1}, counts)

	require.NotNil(t, byName["codex_math_failures_total"])
	require.NotNil(t, byName["codex_cache_results_total"])

	commands := byName["codex_command_duration_seconds"]
	require.NotNil(t, commands)
	assert.Equal(t, uint64(1), commands.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestRecorderHandlerExposesText(t *testing.T) {
	rec := metrics.NewRecorder()
	rec.IncrementResolve("unavailable")

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `codex_resolve_total{outcome="unavailable"} 1`)
}

func TestNoOpAcceptsEverything(t *testing.T) {
	var m metrics.NoOp
	m.ObserveRenderDuration("notes", time.Second)
	m.IncrementMathFailure("display")
	m.IncrementResolve("miss")
	m.IncrementCacheResult("github", "hit")
}
