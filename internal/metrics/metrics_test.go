package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementCreatesAndCounts(t *testing.T) {
	v := NewViewCounter(nil)

	assert.Equal(t, 0, v.Count("p1"))
	assert.Equal(t, 1, v.Increment("p1"))
	assert.Equal(t, 2, v.Increment("p1"))
	v.Increment("p2")

	assert.Equal(t, map[string]int{"p1": 2, "p2": 1}, v.Snapshot())
}

func TestIncrementIsSafeForConcurrentUse(t *testing.T) {
	v := NewViewCounter(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v.Increment("p1")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, v.Count("p1"))
}

func TestSnapshotIsDetached(t *testing.T) {
	v := NewViewCounter(nil)
	v.Increment("p1")
	snap := v.Snapshot()
	snap["p1"] = 100
	assert.Equal(t, 1, v.Count("p1"))
}

func TestCollectorRecordsViewsAndRequests(t *testing.T) {
	c := NewCollector()
	v := NewViewCounter(c.ProductViewed)

	v.Increment("p1")
	v.Increment("p2")
	c.ObserveRequest("GET", "/api/products/public", 200, 15*time.Millisecond)
	c.ObserveRequest("GET", "/api/colors", 0, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.productViews))
	assert.Equal(t, 2, testutil.CollectAndCount(c.backendRequests))

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["storefront_product_views_total"])
	assert.True(t, names["storefront_backend_request_duration_seconds"])
}
