// Package metrics records dispatch outcomes in Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"clova-webhook/clova"
)

// Observer implements clova.Observer.
type Observer struct {
	calls         *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	convertErrors *prometheus.CounterVec
}

var _ clova.Observer = (*Observer)(nil)

// New registers the collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Observer {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Observer{
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clova_requests_total",
			Help: "Requests served by the extension, by request type and outcome.",
		}, []string{"request_type", "outcome"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clova_request_duration_seconds",
			Help:    "Time spent in dispatch and rendering.",
			Buckets: prometheus.DefBuckets,
		}, []string{"request_type"}),
		convertErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clova_slot_convert_errors_total",
			Help: "Slot values that failed conversion.",
		}, []string{"intent", "param"}),
	}
}

func (o *Observer) ObserveCall(kind clova.Kind, outcome clova.Outcome, elapsed time.Duration) {
	o.calls.WithLabelValues(string(kind), string(outcome)).Inc()
	o.latency.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

func (o *Observer) ObserveConvertError(intent, param string) {
	o.convertErrors.WithLabelValues(intent, param).Inc()
}
