package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ObserveQuery(20*time.Millisecond, 3)
	m.IncrementQueryError("storage")
	m.IncrementQueryError("storage")
	m.IncrementProviderWrite("status")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.QueryErrors.WithLabelValues("storage")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ProviderWrites.WithLabelValues("status")))

	count, err := testutil.GatherAndCount(reg, "directory_query_duration_seconds", "directory_query_results")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveQuery(time.Second, 1)
		m.IncrementQueryError("validation")
		m.IncrementProviderWrite("register")
	})
}
