package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogMetricsRecording(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewCatalogMetrics(registry)
	require.NoError(t, err)

	m.RecordSources("blind", StatusInserted, 3)
	m.RecordSources("blind", StatusDropped, 1)
	m.RecordSources("blind", StatusDropped, 0)
	m.RecordAssociation(OutcomeMatched)
	m.RecordAssociation(OutcomeCreated)
	m.RecordAssociation(OutcomeCreated)
	m.RecordConsistencyFailure("query_id0")
	m.RecordRejection("rms")

	assert.InDelta(t, 3, testutil.ToFloat64(m.sourcesTotal.WithLabelValues("blind", StatusInserted)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.sourcesTotal.WithLabelValues("blind", StatusDropped)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.associationsTotal.WithLabelValues(OutcomeCreated)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.runningCatalogCreated), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.consistencyFailures.WithLabelValues("query_id0")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.rejectionsTotal.WithLabelValues("rms")), 0)
}

func TestDeRuiterDistanceHistogram(t *testing.T) {
	t.Parallel()

	m, err := NewCatalogMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	for _, d := range []float64{0.1, 0.3, 2.5, 5} {
		m.ObserveDeRuiterDistance(d)
	}

	var out dto.Metric
	require.NoError(t, m.deRuiterDistance.Write(&out))
	h := out.GetHistogram()
	require.NotNil(t, h)
	assert.Equal(t, uint64(4), h.GetSampleCount())
	assert.InDelta(t, 7.9, h.GetSampleSum(), 1e-9)

	// Buckets run from 0.25 to 4 in steps of 0.25.
	buckets := h.GetBucket()
	require.Len(t, buckets, 16)
	assert.Equal(t, uint64(1), buckets[0].GetCumulativeCount())
	assert.Equal(t, uint64(3), buckets[len(buckets)-1].GetCumulativeCount())
}

func TestNilCatalogMetricsIsSafe(t *testing.T) {
	t.Parallel()

	var m *CatalogMetrics
	assert.NotPanics(t, func() {
		m.RecordSources("blind", StatusInserted, 1)
		m.RecordAssociation(OutcomeMatched)
		m.ObserveDeRuiterDistance(1.2)
		m.ObserveAssociateDuration(0.1)
		m.RecordConsistencyFailure("query_zone0")
		m.RecordRejection("beam")
		m.RecordConfigValues("store", 2)
	})
}

func TestDoubleRegistrationFails(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewDatastoreMetrics(registry)
	require.NoError(t, err)
	_, err = NewDatastoreMetrics(registry)
	require.Error(t, err)
}
