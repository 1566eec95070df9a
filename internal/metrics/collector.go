package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector holds the Prometheus instruments of the storefront.
type Collector struct {
	registry        *prometheus.Registry
	backendRequests *prometheus.HistogramVec
	productViews    prometheus.Counter
}

// NewCollector registers the instruments on a fresh registry, together with
// the Go runtime and process collectors.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		backendRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "backend_request_duration_seconds",
			Help:      "Duration of calls to the catalog backend.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "endpoint", "status"}),
		productViews: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "product_views_total",
			Help:      "Product detail views since process start.",
		}),
	}
	c.registry.MustRegister(
		c.backendRequests,
		c.productViews,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the registry for the /metrics handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveRequest implements apiclient.Observer. Status 0 means the request
// never completed.
func (c *Collector) ObserveRequest(method, endpoint string, status int, elapsed time.Duration) {
	c.backendRequests.
		WithLabelValues(method, endpoint, strconv.Itoa(status)).
		Observe(elapsed.Seconds())
}

// ProductViewed is the ViewCounter hook. Product ids are not used as labels
// to keep cardinality bounded.
func (c *Collector) ProductViewed(string) {
	c.productViews.Inc()
}
