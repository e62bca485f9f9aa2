// Package metrics exposes harvesting counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors a run updates. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	RunsTotal          *prometheus.CounterVec
	RunDuration        prometheus.Histogram
	SitesTotal         *prometheus.CounterVec
	CandidatesTotal    *prometheus.CounterVec
	RecordsTotal       prometheus.Counter
	SavedTotal         prometheus.Counter
	ExtractionsTotal   *prometheus.CounterVec
	ExtractionDuration *prometheus.HistogramVec
	RunInProgress      prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_runs_total",
			Help: "Completed harvesting runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "harvester_run_duration_seconds",
			Help:    "Wall time of a harvesting run.",
			Buckets: prometheus.ExponentialBuckets(30, 2, 10),
		}),
		SitesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_site_traversals_total",
			Help: "Site and keyword traversals by outcome.",
		}, []string{"outcome"}),
		CandidatesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_candidates_total",
			Help: "Candidate jobs discovered, by navigation strategy.",
		}, []string{"strategy"}),
		RecordsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "harvester_records_total",
			Help: "Job records produced by enrichment.",
		}),
		SavedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "harvester_records_saved_total",
			Help: "Job records accepted by the persistence sink.",
		}),
		ExtractionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_extractions_total",
			Help: "LLM extractions by mode and outcome.",
		}, []string{"mode", "outcome"}),
		ExtractionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "harvester_extraction_duration_seconds",
			Help:    "LLM extraction latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),
		RunInProgress: f.NewGauge(prometheus.GaugeOpts{
			Name: "harvester_run_in_progress",
			Help: "1 while a run is executing.",
		}),
	}
}

func (m *Metrics) ObserveRun(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(d.Seconds())
}

func (m *Metrics) SetRunning(running bool) {
	if m == nil {
		return
	}
	if running {
		m.RunInProgress.Set(1)
	} else {
		m.RunInProgress.Set(0)
	}
}

func (m *Metrics) SiteDone(outcome string) {
	if m == nil {
		return
	}
	m.SitesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Candidates(strategy string, n int) {
	if m == nil {
		return
	}
	m.CandidatesTotal.WithLabelValues(strategy).Add(float64(n))
}

func (m *Metrics) Record() {
	if m == nil {
		return
	}
	m.RecordsTotal.Inc()
}

func (m *Metrics) Saved(n int) {
	if m == nil {
		return
	}
	m.SavedTotal.Add(float64(n))
}

func (m *Metrics) Extraction(mode string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ExtractionsTotal.WithLabelValues(mode, outcome).Inc()
	m.ExtractionDuration.WithLabelValues(mode).Observe(d.Seconds())
}
