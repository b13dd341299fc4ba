package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the daemon's Prometheus collectors.
type Metrics struct {
	JobsSubmitted    prometheus.Counter
	JobsFinished     *prometheus.CounterVec
	JobsRunning      prometheus.Gauge
	JobDuration      prometheus.Histogram
	CompressionRatio prometheus.Histogram
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		JobsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "summaryd",
			Name:      "jobs_submitted_total",
			Help:      "Summarization jobs accepted.",
		}),
		JobsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "summaryd",
			Name:      "jobs_finished_total",
			Help:      "Summarization jobs finished, by final status.",
		}, []string{"status"}),
		JobsRunning: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "summaryd",
			Name:      "jobs_running",
			Help:      "Summarization jobs currently holding a worker.",
		}),
		JobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "summaryd",
			Name:      "job_duration_seconds",
			Help:      "Wall time of completed summarization jobs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		CompressionRatio: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "summaryd",
			Name:      "compression_ratio",
			Help:      "Compression ratio of completed jobs.",
			Buckets:   prometheus.LinearBuckets(-1, 0.25, 9),
		}),
	}
}
