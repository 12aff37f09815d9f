package metrics

import (
	"net/http"
	"time"

	"github.com/goliatone/go-codex/pkg/interfaces"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "codex"

// Recorder publishes pipeline observations as Prometheus collectors on a
// private registry.
type Recorder struct {
	registry      *prometheus.Registry
	renderSeconds *prometheus.HistogramVec
	mathFailures  *prometheus.CounterVec
	resolves      *prometheus.CounterVec
	cacheResults  *prometheus.CounterVec
	commands      *prometheus.HistogramVec
}

var _ interfaces.PipelineMetrics = (*Recorder)(nil)

// NewRecorder registers the codex collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		renderSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent turning a raw document into a snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"type"}),
		mathFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "math_failures_total",
			Help:      "TeX expressions that could not be rendered and were kept as source.",
		}, []string{"mode"}),
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_total",
			Help:      "Slug resolutions by outcome.",
		}, []string{"outcome"}),
		cacheResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_results_total",
			Help:      "Cache lookups by cache name and result.",
		}, []string{"cache", "result"}),
		commands: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command runs such as catalog syncs, by command and status.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"command", "status"}),
	}
	r.registry.MustRegister(r.renderSeconds, r.mathFailures, r.resolves, r.cacheResults, r.commands)
	return r
}

func (r *Recorder) ObserveRenderDuration(contentType string, duration time.Duration) {
	r.renderSeconds.WithLabelValues(contentType).Observe(duration.Seconds())
}

func (r *Recorder) IncrementMathFailure(mode string) {
	r.mathFailures.WithLabelValues(mode).Inc()
}

func (r *Recorder) IncrementResolve(outcome string) {
	r.resolves.WithLabelValues(outcome).Inc()
}

func (r *Recorder) IncrementCacheResult(cache, result string) {
	r.cacheResults.WithLabelValues(cache, result).Inc()
}

func (r *Recorder) ObserveCommand(command, status string, duration time.Duration) {
	r.commands.WithLabelValues(command, status).Observe(duration.Seconds())
}

// Registry exposes the underlying registry so callers can add collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// NoOp discards every observation.
type NoOp struct{}

var _ interfaces.PipelineMetrics = NoOp{}

func (NoOp) ObserveRenderDuration(string, time.Duration)  {}
func (NoOp) IncrementMathFailure(string)                  {}
func (NoOp) IncrementResolve(string)                      {}
func (NoOp) IncrementCacheResult(string, string)          {}
func (NoOp) ObserveCommand(string, string, time.Duration) {}
