package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	Requests  *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
	Shortens  prometheus.Counter
	Redirects prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "endpoint", "status"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		Shortens: factory.NewCounter(prometheus.CounterOpts{
			Name: "url_shorten_requests_total",
			Help: "Total URL shortening requests",
		}),
		Redirects: factory.NewCounter(prometheus.CounterOpts{
			Name: "url_redirect_requests_total",
			Help: "Total URL redirect requests",
		}),
	}
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return reg
}

// ObserveRequest records one served request. endpoint is the route template,
// never the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, endpoint string, status int, elapsed time.Duration) {
	m.Requests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.Duration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) ShortenServed() {
	m.Shortens.Inc()
}

func (m *Metrics) RedirectServed() {
	m.Redirects.Inc()
}
