package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics for forgeflow. Each Registry owns
// its own prometheus.Registry so tests and multiple servers do not collide.
type Registry struct {
	reg *prometheus.Registry

	// Analyses counts analysis runs by input format and result.
	Analyses *prometheus.CounterVec
	// Insights counts derived insights by source (rules or narrative).
	Insights *prometheus.CounterVec
	// Duration observes end-to-end analysis time.
	Duration prometheus.Histogram
	// Transactions observes ledger size per run.
	Transactions prometheus.Histogram
	// DroppedLines counts OCR/text lines that did not parse.
	DroppedLines prometheus.Counter
}

// NewRegistry creates and registers all metrics.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		Analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forgeflow_analyses_total",
				Help: "Total number of analysis runs by input format and result",
			},
			[]string{"format", "result"},
		),
		Insights: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forgeflow_insights_total",
				Help: "Total number of insight lists produced by source",
			},
			[]string{"source"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "forgeflow_analysis_duration_seconds",
				Help:    "Duration of an analysis run in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
		),
		Transactions: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "forgeflow_transactions_parsed",
				Help:    "Number of ledger transactions per analysis run",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		DroppedLines: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "forgeflow_ocr_dropped_lines_total",
				Help: "Total number of text lines dropped because no amount could be parsed",
			},
		),
	}
	r.reg.MustRegister(r.Analyses, r.Insights, r.Duration, r.Transactions, r.DroppedLines)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
