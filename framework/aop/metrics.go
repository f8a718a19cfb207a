package aop

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsHandler records the latency of intercepted calls.
type MetricsHandler struct {
	duration *prometheus.HistogramVec
}

// NewMetricsHandler registers winter_bean_call_duration_seconds on reg.
func NewMetricsHandler(reg prometheus.Registerer) (*MetricsHandler, error) {
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "winter",
		Name:      "bean_call_duration_seconds",
		Help:      "Duration of proxied bean method calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"bean", "method", "outcome"})
	if err := reg.Register(duration); err != nil {
		return nil, err
	}
	return &MetricsHandler{duration: duration}, nil
}

func (h *MetricsHandler) Invoke(inv *Invocation) ([]any, error) {
	start := time.Now()
	out, err := inv.Proceed()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	h.duration.WithLabelValues(inv.Bean, inv.Method, outcome).Observe(time.Since(start).Seconds())
	return out, err
}
