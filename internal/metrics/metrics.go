package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pethotel"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status class.",
		},
		[]string{"endpoint", "status"},
	)

	documentWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_writes_total",
			Help:      "Persisted document writes by result.",
		},
		[]string{"collection", "result"},
	)

	documentCoalesced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_writes_coalesced_total",
			Help:      "Document writes superseded by a later value before being persisted.",
		},
		[]string{"collection"},
	)

	reservationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_created_total",
			Help:      "Reservations created by type.",
		},
		[]string{"type"},
	)

	salesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_amount_total",
			Help:      "Sum of recorded sale totals.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, documentWrites, documentCoalesced, reservationsCreated, salesTotal)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

// IncDocumentWrite counts a persisted write; result is "ok" or "error".
func IncDocumentWrite(collection, result string) {
	documentWrites.WithLabelValues(collection, result).Inc()
}

func IncDocumentCoalesced(collection string) {
	documentCoalesced.WithLabelValues(collection).Inc()
}

func IncReservationCreated(reservationType string) {
	reservationsCreated.WithLabelValues(reservationType).Inc()
}

func AddSale(total float64) {
	salesTotal.Add(total)
}
