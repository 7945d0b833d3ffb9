package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "pagesmith"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry      *prom.Registry
	buildDuration *prom.HistogramVec
	buildOutcome  *prom.CounterVec
	pageResults   *prom.CounterVec
	stalePruned   prom.Counter
	tagPages      prom.Gauge
}

// NewPrometheusRecorder constructs the collectors and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		buildDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Build duration by mode",
			Buckets:   prom.DefBuckets,
		}, []string{"mode"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by mode and final status",
		}, []string{"mode", "outcome"}),
		pageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "page_results_total",
			Help:      "Pages processed by result",
		}, []string{"result"}),
		stalePruned: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stale_pages_pruned_total",
			Help:      "Output directories removed for pages that no longer exist",
		}),
		tagPages: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "tag_pages",
			Help:      "Tag pages written by the last full build",
		}),
	}
	reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.pageResults, pr.stalePruned, pr.tagPages)
	return pr
}

// Registry returns the registry the collectors are registered with.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.registry }

func (p *PrometheusRecorder) ObserveBuildDuration(mode string, d time.Duration) {
	p.buildDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(mode string, outcome Outcome) {
	p.buildOutcome.WithLabelValues(mode, string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncPageResult(result PageResult) {
	p.pageResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) AddStalePruned(n int) {
	if n > 0 {
		p.stalePruned.Add(float64(n))
	}
}

func (p *PrometheusRecorder) SetTagPages(n int) {
	p.tagPages.Set(float64(n))
}

// WriteTextfile writes the gathered metrics to path in node_exporter
// textfile format, creating parent directories.
func WriteTextfile(path string, g prom.Gatherer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prom.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
