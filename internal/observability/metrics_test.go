package observability_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"ingestgraph/internal/observability"
)

func TestCollector_ObserveStageDuration(t *testing.T) {
	c := observability.NewCollector("test_collector")
	c.ObserveStageDuration("metadata", 50*time.Millisecond)

	count := testutil.CollectAndCount(c.StageDuration)
	assert.Equal(t, 1, count)
}

func TestCollector_GaugesStartAtZero(t *testing.T) {
	c := observability.NewCollector("test_collector_gauges")
	assert.Equal(t, 0.0, testutil.ToFloat64(c.QueueDepth))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.InFlight))
}
