package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Total tickets issued",
		},
	)

	ticketValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_validations_total",
			Help: "Total ticket validation attempts by outcome",
		},
		[]string{"result"},
	)

	storeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticket_store_failures_total",
			Help: "Total transient ticket store failures",
		},
	)
)

func RecordIssued(count int) {
	ticketsIssued.Add(float64(count))
}

func RecordValidation(result string) {
	ticketValidations.WithLabelValues(result).Inc()
}

func RecordStoreFailure() {
	storeFailures.Inc()
}
