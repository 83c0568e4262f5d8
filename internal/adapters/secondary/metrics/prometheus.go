package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ports "map-catalog-service/internal/core/ports/output"
)

const namespace = "map_catalog"

// Recorder exports catalog, ledger and HTTP metrics to Prometheus.
type Recorder struct {
	registry        *prometheus.Registry
	purchases       *prometheus.CounterVec
	votes           *prometheus.CounterVec
	ledger          *prometheus.CounterVec
	cursorSources   *prometheus.CounterVec
	pageDuration    *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var _ ports.Metrics = (*Recorder)(nil)

// NewRecorder registers every collector on its own registry, together with
// the Go runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		purchases: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchases_total",
			Help:      "Purchase attempts by terminal state",
		}, []string{"state"}),
		votes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Vote updates by operation and outcome",
		}, []string{"op", "outcome"}),
		ledger: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_mutations_total",
			Help:      "Credit ledger mutations by operation and outcome",
		}, []string{"op", "outcome"}),
		cursorSources: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cursor_resolutions_total",
			Help:      "How catalog pages located their start boundary",
		}, []string{"source"}),
		pageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_duration_seconds",
			Help:      "Catalog page latency including the count query",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sort"}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (r *Recorder) IncPurchase(state string) {
	r.purchases.WithLabelValues(state).Inc()
}

func (r *Recorder) IncVote(op, outcome string) {
	r.votes.WithLabelValues(op, outcome).Inc()
}

func (r *Recorder) IncLedger(op, outcome string) {
	r.ledger.WithLabelValues(op, outcome).Inc()
}

func (r *Recorder) IncCursorSource(source string) {
	r.cursorSources.WithLabelValues(source).Inc()
}

func (r *Recorder) ObservePage(sort string, d time.Duration) {
	r.pageDuration.WithLabelValues(sort).Observe(d.Seconds())
}

func (r *Recorder) ObserveRequest(route string, status int, d time.Duration) {
	r.requestsTotal.WithLabelValues(route, statusClass(status)).Inc()
	r.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return strconv.Itoa(code)
	}
	return strconv.Itoa(code/100) + "xx"
}
