package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_Record(t *testing.T) {
	c := NewCollectorWithRegistry("bike_test", prometheus.NewRegistry())

	c.RecordAPIRequest("/api/charts/monthly", "GET", "200")
	c.RecordAPIRequest("/api/charts/monthly", "GET", "200")
	c.RecordLookup("miss")
	c.RecordLoadError("schema_error")
	c.RecordChart("monthly", time.Millisecond, 12)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.APIRequestsTotal.WithLabelValues("/api/charts/monthly", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.LookupsTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DatasetLoadErrors.WithLabelValues("schema_error")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.ChartRows))
}

func TestCollector_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollectorWithRegistry("bike_test", prometheus.NewRegistry())
		NewCollectorWithRegistry("bike_test", prometheus.NewRegistry())
	})
}

func TestUpdateDBConnectionPool(t *testing.T) {
	c := NewCollectorWithRegistry("bike_test", prometheus.NewRegistry())
	c.UpdateDBConnectionPool(3, 2, 5)

	assert.Equal(t, 3.0, testutil.ToFloat64(c.DBConnectionPool.WithLabelValues("in_use")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.DBConnectionPool.WithLabelValues("total")))
}

func TestTimer_ObserveDuration(t *testing.T) {
	c := NewCollectorWithRegistry("bike_test", prometheus.NewRegistry())
	timer := c.NewTimer(c.DatasetLoadDuration)
	assert.GreaterOrEqual(t, timer.ObserveDuration(), time.Duration(0))
}
