package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics tracks ingestion, association and quality-control activity
type CatalogMetrics struct {
	sourcesTotal          *prometheus.CounterVec
	associationsTotal     *prometheus.CounterVec
	deRuiterDistance      prometheus.Histogram
	associateDuration     prometheus.Histogram
	consistencyFailures   *prometheus.CounterVec
	rejectionsTotal       *prometheus.CounterVec
	configValuesTotal     *prometheus.CounterVec
	runningCatalogCreated prometheus.Counter

	collectors []prometheus.Collector
}

// NewCatalogMetrics creates and registers new catalog metrics
func NewCatalogMetrics(registry prometheus.Registerer) (*CatalogMetrics, error) {
	m := &CatalogMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *CatalogMetrics) initMetrics() {
	m.sourcesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tkpcat_extracted_sources_total",
			Help: "Extracted sources seen by ingestion, by extraction type and status",
		},
		[]string{"extract_type", "status"},
	)

	m.associationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tkpcat_associations_total",
			Help: "Associations written, by outcome",
		},
		[]string{"outcome"},
	)

	m.deRuiterDistance = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tkpcat_association_deruiter_distance",
		Help:    "Dimensionless De Ruiter distance of accepted spatial matches",
		Buckets: prometheus.LinearBuckets(0.25, 0.25, 16),
	})

	m.associateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tkpcat_associate_duration_seconds",
		Help:    "Time taken to associate one image",
		Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15),
	})

	m.consistencyFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tkpcat_consistency_probe_failures_total",
			Help: "Consistency probes that reported violations or could not run",
		},
		[]string{"probe"},
	)

	m.rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tkpcat_image_rejections_total",
			Help: "Image rejections recorded, by reason",
		},
		[]string{"reason"},
	)

	m.configValuesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tkpcat_config_values_total",
			Help: "Configuration values persisted or loaded, by operation",
		},
		[]string{"operation"},
	)

	m.runningCatalogCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tkpcat_runningcatalog_created_total",
		Help: "Running catalog sources created",
	})

	m.collectors = []prometheus.Collector{
		m.sourcesTotal,
		m.associationsTotal,
		m.deRuiterDistance,
		m.associateDuration,
		m.consistencyFailures,
		m.rejectionsTotal,
		m.configValuesTotal,
		m.runningCatalogCreated,
	}
}

// Describe implements the Collector interface
func (m *CatalogMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *CatalogMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordSources adds n sources of the given extraction type and status.
// Nil receivers are allowed so components can run without metrics.
func (m *CatalogMetrics) RecordSources(extractType, status string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sourcesTotal.WithLabelValues(extractType, status).Add(float64(n))
}

// RecordAssociation records one association outcome
func (m *CatalogMetrics) RecordAssociation(outcome string) {
	if m == nil {
		return
	}
	m.associationsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeCreated {
		m.runningCatalogCreated.Inc()
	}
}

// ObserveDeRuiterDistance records the distance of an accepted spatial match
func (m *CatalogMetrics) ObserveDeRuiterDistance(distance float64) {
	if m == nil {
		return
	}
	m.deRuiterDistance.Observe(distance)
}

// ObserveAssociateDuration records the wall time of one associate call
func (m *CatalogMetrics) ObserveAssociateDuration(seconds float64) {
	if m == nil {
		return
	}
	m.associateDuration.Observe(seconds)
}

// RecordConsistencyFailure records a failing consistency probe
func (m *CatalogMetrics) RecordConsistencyFailure(probe string) {
	if m == nil {
		return
	}
	m.consistencyFailures.WithLabelValues(probe).Inc()
}

// RecordRejection records an image rejection
func (m *CatalogMetrics) RecordRejection(reason string) {
	if m == nil {
		return
	}
	m.rejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordConfigValues adds n configuration values for operation (store or fetch)
func (m *CatalogMetrics) RecordConfigValues(operation string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.configValuesTotal.WithLabelValues(operation).Add(float64(n))
}
