package splitmap

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector exports evaluation, reduction and build metrics to
// Prometheus.
type PrometheusCollector struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	keys       *prometheus.CounterVec
}

// NewPrometheusCollector creates the collector's metrics under namespace and
// registers them with reg. A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer, namespace string) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	p := &PrometheusCollector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Number of evaluations, reductions and builds by outcome.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of evaluations, reductions and builds.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"operation"}),
		keys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_total",
			Help:      "Number of keys produced or consumed.",
		}, []string{"operation"}),
	}

	for _, c := range []prometheus.Collector{p.operations, p.durations, p.keys} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// RecordEvaluate implements MetricsCollector.
func (p *PrometheusCollector) RecordEvaluate(_ int, keys int, duration time.Duration, err error) {
	p.record("evaluate", keys, duration, err)
}

// RecordReduce implements MetricsCollector.
func (p *PrometheusCollector) RecordReduce(keys int, duration time.Duration, err error) {
	p.record("reduce", keys, duration, err)
}

// RecordBuild implements MetricsCollector.
func (p *PrometheusCollector) RecordBuild(keys int, duration time.Duration, err error) {
	p.record("build", keys, duration, err)
}

func (p *PrometheusCollector) record(op string, keys int, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.operations.WithLabelValues(op, status).Inc()
	p.durations.WithLabelValues(op).Observe(duration.Seconds())
	p.keys.WithLabelValues(op).Add(float64(keys))
}
