package http

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the server's Prometheus collectors.
type metrics struct {
	submissions        *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "velada_submissions_total",
				Help: "Submission attempts by outcome.",
			},
			[]string{"kind", "result"},
		),
		validationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "velada_validation_failures_total",
				Help: "Section validations that blocked a transition.",
			},
			[]string{"section"},
		),
	}
	reg.MustRegister(m.submissions, m.validationFailures)
	return m
}
