package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics держит собственный registry, чтобы тесты не делили глобальный.
type Metrics struct {
	registry      *prometheus.Registry
	httpReqCnt    *prometheus.CounterVec
	httpDur       *prometheus.HistogramVec
	decisions     *prometheus.CounterVec
	rollbacks     *prometheus.CounterVec
	tendersClosed prometheus.Counter
	bidsCanceled  prometheus.Counter
}

func New(namespace string) *Metrics {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: r,
		httpReqCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "bid_decisions_total", Help: "Recorded bid decisions.",
		}, []string{"decision"}),
		rollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rollbacks_total", Help: "Rollbacks to a stored version.",
		}, []string{"entity"}),
		tendersClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tenders_closed_by_quorum_total", Help: "Tenders closed after bid approval quorum.",
		}),
		bidsCanceled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "bids_canceled_by_rejection_total", Help: "Bids canceled by a rejection decision.",
		}),
	}
	r.MustRegister(m.httpReqCnt, m.httpDur, m.decisions, m.rollbacks, m.tendersClosed, m.bidsCanceled)
	return m
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware считает запросы по шаблону маршрута chi, а не по сырому пути.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := []string{r.Method, route, strconv.Itoa(status)}
		m.httpReqCnt.WithLabelValues(labels...).Inc()
		m.httpDur.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) DecisionRecorded(decision string) {
	m.decisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) RolledBack(entity string) {
	m.rollbacks.WithLabelValues(entity).Inc()
}

func (m *Metrics) TenderClosed() {
	m.tendersClosed.Inc()
}

func (m *Metrics) BidCanceled() {
	m.bidsCanceled.Inc()
}
