package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

// OrganizerMetrics counts routing decisions and batch outcomes.
type OrganizerMetrics struct {
	service string

	routedTotal      *prometheus.CounterVec
	abstentionsTotal *prometheus.CounterVec
	skippedTotal     *prometheus.CounterVec
	batchDuration    *prometheus.HistogramVec
	batchFiles       prometheus.Histogram
}

func NewOrganizerMetrics(service string, registerer prometheus.Registerer) *OrganizerMetrics {
	routedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_routed_total",
			Help:      "Files moved into a category folder, by category and routing tier.",
		},
		[]string{"service", "category", "tier"},
	)
	abstentionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_abstentions_total",
			Help:      "Content classifications that produced no label, by reason.",
		},
		[]string{"service", "reason"},
	)
	skippedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_skipped_total",
			Help:      "Uploaded files left out of a batch, by reason.",
		},
		[]string{"service", "reason"},
	)
	batchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Batch organize duration in seconds by status.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	batchFiles := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_files",
			Help:      "Files routed per batch.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 250},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registerer.MustRegister(routedTotal, abstentionsTotal, skippedTotal, batchDuration, batchFiles)

	return &OrganizerMetrics{
		service:          service,
		routedTotal:      routedTotal,
		abstentionsTotal: abstentionsTotal,
		skippedTotal:     skippedTotal,
		batchDuration:    batchDuration,
		batchFiles:       batchFiles,
	}
}

func (m *OrganizerMetrics) ObservePlacement(category domain.Category, tier domain.RoutingTier) {
	m.routedTotal.WithLabelValues(m.service, string(category), string(tier)).Inc()
}

func (m *OrganizerMetrics) ObserveAbstention(reason string) {
	m.abstentionsTotal.WithLabelValues(m.service, reason).Inc()
}

func (m *OrganizerMetrics) ObserveSkipped(reason string) {
	m.skippedTotal.WithLabelValues(m.service, reason).Inc()
}

func (m *OrganizerMetrics) ObserveBatch(files int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.batchDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
	if err == nil {
		m.batchFiles.Observe(float64(files))
	}
}
