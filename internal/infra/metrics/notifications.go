package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		notificationsTotal,
		signatureFailuresTotal,
		accessGrantsTotal,
	)
}

var (
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_notifications_total",
			Help: "Gateway notifications by outcome (completed/failed/duplicate/not_found/invalid_signature/pending/error).",
		},
		[]string{"outcome"},
	)

	signatureFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_signature_failures_total",
			Help: "Notifications rejected because the keyed digest did not match.",
		},
	)

	accessGrantsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_grants_total",
			Help: "Access grant attempts by outcome (granted/noop/error).",
		},
		[]string{"outcome"},
	)
)

func IncNotification(outcome string) {
	notificationsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncSignatureFailure() {
	signatureFailuresTotal.Inc()
}

func IncAccessGrant(outcome string) {
	accessGrantsTotal.WithLabelValues(norm(outcome)).Inc()
}
