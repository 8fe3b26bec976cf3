package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ScoringMetrics struct {
	registry *prometheus.Registry

	scoreTotal         *prometheus.CounterVec
	scoreDuration      *prometheus.HistogramVec
	batchesInFlight    prometheus.Gauge
	batchProgress      *prometheus.GaugeVec
	screenshotsFlagged *prometheus.CounterVec
}

func NewScoringMetrics(service string) *ScoringMetrics {
	registry := prometheus.NewRegistry()

	scoreTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insightpic",
			Subsystem: "scoring",
			Name:      "photos_scored_total",
			Help:      "Total scored photos by status.",
		},
		[]string{"service", "status"},
	)
	scoreDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "insightpic",
			Subsystem: "scoring",
			Name:      "photo_score_duration_seconds",
			Help:      "Per-photo scoring duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	batchesInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "insightpic",
			Subsystem: "scoring",
			Name:      "batches_in_flight",
			Help:      "Number of batch scoring runs currently executing.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	batchProgress := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "insightpic",
			Subsystem: "scoring",
			Name:      "batch_progress_ratio",
			Help:      "Completed share of the current batch, 0 through 1.",
		},
		[]string{"service"},
	)
	screenshotsFlagged := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insightpic",
			Subsystem: "scoring",
			Name:      "screenshots_flagged_total",
			Help:      "Photos flagged as likely screenshots by the metadata heuristic.",
		},
		[]string{"service"},
	)

	registry.MustRegister(scoreTotal, scoreDuration, batchesInFlight, batchProgress, screenshotsFlagged)

	return &ScoringMetrics{
		registry:           registry,
		scoreTotal:         scoreTotal,
		scoreDuration:      scoreDuration,
		batchesInFlight:    batchesInFlight,
		batchProgress:      batchProgress,
		screenshotsFlagged: screenshotsFlagged,
	}
}

func (m *ScoringMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ScoringMetrics) StartBatch() {
	m.batchesInFlight.Inc()
}

func (m *ScoringMetrics) FinishBatch() {
	m.batchesInFlight.Dec()
}

func (m *ScoringMetrics) ObserveProgress(service string, completed, total int) {
	if total <= 0 {
		return
	}
	m.batchProgress.WithLabelValues(service).Set(float64(completed) / float64(total))
}

func (m *ScoringMetrics) FinishPhoto(service string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.scoreTotal.WithLabelValues(service, status).Inc()
	m.scoreDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *ScoringMetrics) FlagScreenshot(service string) {
	m.screenshotsFlagged.WithLabelValues(service).Inc()
}
