// Package metrics records per-run counters of the analysis pipeline in a private
// Prometheus registry. Runs are short-lived, so the registry is written out as a
// node_exporter textfile instead of being served.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ppiankov/speclens/internal/model"
)

const namespace = "speclens"

// Recorder holds the pipeline metrics. A nil *Recorder records nothing.
type Recorder struct {
	registry     *prometheus.Registry
	sentences    *prometheus.CounterVec
	selected     *prometheus.GaugeVec
	cacheLookups *prometheus.CounterVec
	artifacts    *prometheus.CounterVec
	stages       *prometheus.HistogramVec
	failures     *prometheus.CounterVec
}

// New creates a recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sentences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sentences_analyzed_total",
			Help:      "Sentences taking part in keyword analyses.",
		}, []string{"spec", "filter"}),
		selected: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "selected_keywords",
			Help:      "Keywords in each selection of the latest analysis.",
		}, []string{"spec", "selection"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_cache_lookups_total",
			Help:      "Parsed-workbook cache lookups by result.",
		}, []string{"result"}),
		artifacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_written_total",
			Help:      "Charts and heatmaps written, by kind.",
		}, []string{"kind"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"stage"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spec_failures_total",
			Help:      "Specifications whose analysis failed.",
		}, []string{"spec"}),
	}
	r.registry.MustRegister(r.sentences, r.selected, r.cacheLookups, r.artifacts, r.stages, r.failures)
	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// KeywordReport records the sizes of a finished keyword analysis
func (r *Recorder) KeywordReport(report *model.KeywordReport) {
	if r == nil || report == nil {
		return
	}
	r.sentences.WithLabelValues(report.Spec, report.Filter.String()).Add(float64(report.Sentences))
	for _, sel := range report.Selections() {
		r.selected.WithLabelValues(report.Spec, sel.Name).Set(float64(len(sel.Entries)))
	}
}

// CacheLookup counts one document cache lookup
func (r *Recorder) CacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// Artifact counts one written image
func (r *Recorder) Artifact(kind string) {
	if r == nil {
		return
	}
	r.artifacts.WithLabelValues(kind).Inc()
}

// Stage observes the duration of a named pipeline stage
func (r *Recorder) Stage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stages.WithLabelValues(stage).Observe(d.Seconds())
}

// Failure counts a failed specification
func (r *Recorder) Failure(spec string) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(spec).Inc()
}

// WriteTextfile writes every metric in the text exposition format, atomically
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
