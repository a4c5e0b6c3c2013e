// Package telemetry is the module's metrics surface: a pluggable interface
// with a no-op default (noop.go) and a Prometheus-backed implementation
// (prometheus.go). No package in this module creates meters through it;
// cmd/corenode only installs the Prometheus backend and serves its handler.
package telemetry

import "net/http"

// HistogramMeter records a single observed duration/size.
type HistogramMeter interface {
	Observe(int64)
}

// HistogramVecMeter records an observation tagged with label values.
type HistogramVecMeter interface {
	ObserveWithLabels(int64, map[string]string)
}

// CountMeter is a monotonic counter.
type CountMeter interface {
	Add(int64)
}

// CountVecMeter is a counter tagged with label values.
type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

// GaugeMeter is an arbitrary up/down value.
type GaugeMeter interface {
	Gauge(int64)
}

// GaugeVecMeter is a gauge tagged with label values.
type GaugeVecMeter interface {
	GaugeWithLabel(int64, map[string]string)
}

// Telemetry is the service every meter is obtained from.
type Telemetry interface {
	GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter
	GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter
	GetOrCreateHandler() http.Handler
}

var current Telemetry = defaultNoopTelemetry()

// InitializePrometheus swaps the module-wide telemetry service for a
// Prometheus-backed one. Call once during startup (cmd/corenode wiring).
func InitializePrometheus() {
	current = newPrometheusTelemetry()
}

// Handler returns the current telemetry service's HTTP handler (e.g. for
// Prometheus's /metrics), or nil if the service does not expose one.
func Handler() http.Handler { return current.GetOrCreateHandler() }

// LazyLoad defers meter construction to first use, so package-level `var`
// declarations can reference the telemetry service without an init-order
// dependency on InitializePrometheus having already run.
func LazyLoad[M any](build func() M) func() M {
	var cached M
	var built bool
	return func() M {
		if !built {
			cached = build()
			built = true
		}
		return cached
	}
}

func HistogramVecWithHTTPBuckets(name string, labels []string) HistogramVecMeter {
	return current.GetOrCreateHistogramVecMeter(name, labels, []int64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000})
}

func CounterVec(name string, labels []string) CountVecMeter {
	return current.GetOrCreateCountVecMeter(name, labels)
}

func Counter(name string) CountMeter {
	return current.GetOrCreateCountMeter(name)
}

func Gauge(name string) GaugeMeter {
	return current.GetOrCreateGaugeMeter(name)
}

func Histogram(name string, buckets []int64) HistogramMeter {
	return current.GetOrCreateHistogramMeter(name, buckets)
}
