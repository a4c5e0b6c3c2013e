package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// prometheusTelemetry backs Telemetry with github.com/prometheus/client_golang,
// the metrics dependency the teacher wires through its own telemetry package.
type prometheusTelemetry struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	histograms map[string]*prometheus.HistogramVec
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
}

func newPrometheusTelemetry() Telemetry {
	return &prometheusTelemetry{
		registry:   prometheus.NewRegistry(),
		histograms: make(map[string]*prometheus.HistogramVec),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}
}

func (t *prometheusTelemetry) histogramVec(name string, labels []string, buckets []int64) *prometheus.HistogramVec {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.histograms[name]; ok {
		return v
	}
	fbuckets := make([]float64, len(buckets))
	for i, b := range buckets {
		fbuckets[i] = float64(b)
	}
	v := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Buckets: fbuckets}, labels)
	t.registry.MustRegister(v)
	t.histograms[name] = v
	return v
}

func (t *prometheusTelemetry) counterVec(name string, labels []string) *prometheus.CounterVec {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.counters[name]; ok {
		return v
	}
	v := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name}, labels)
	t.registry.MustRegister(v)
	t.counters[name] = v
	return v
}

func (t *prometheusTelemetry) gaugeVec(name string, labels []string) *prometheus.GaugeVec {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.gauges[name]; ok {
		return v
	}
	v := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name}, labels)
	t.registry.MustRegister(v)
	t.gauges[name] = v
	return v
}

func (t *prometheusTelemetry) GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter {
	v := t.histogramVec(name, nil, buckets)
	return histogramMeter{v.WithLabelValues()}
}

func (t *prometheusTelemetry) GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter {
	return histogramVecMeter{t.histogramVec(name, labels, buckets)}
}

func (t *prometheusTelemetry) GetOrCreateCountMeter(name string) CountMeter {
	v := t.counterVec(name, nil)
	return countMeter{v.WithLabelValues()}
}

func (t *prometheusTelemetry) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	return countVecMeter{t.counterVec(name, labels)}
}

func (t *prometheusTelemetry) GetOrCreateGaugeMeter(name string) GaugeMeter {
	v := t.gaugeVec(name, nil)
	return gaugeMeter{v.WithLabelValues()}
}

func (t *prometheusTelemetry) GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter {
	return gaugeVecMeter{t.gaugeVec(name, labels)}
}

func (t *prometheusTelemetry) GetOrCreateHandler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

type histogramMeter struct{ o prometheus.Observer }

func (h histogramMeter) Observe(v int64) { h.o.Observe(float64(v)) }

type histogramVecMeter struct{ v *prometheus.HistogramVec }

func (h histogramVecMeter) ObserveWithLabels(v int64, labels map[string]string) {
	h.v.With(labels).Observe(float64(v))
}

type countMeter struct{ c prometheus.Counter }

func (c countMeter) Add(v int64) { c.c.Add(float64(v)) }

type countVecMeter struct{ v *prometheus.CounterVec }

func (c countVecMeter) AddWithLabel(v int64, labels map[string]string) {
	c.v.With(labels).Add(float64(v))
}

type gaugeMeter struct{ g prometheus.Gauge }

func (g gaugeMeter) Gauge(v int64) { g.g.Set(float64(v)) }

type gaugeVecMeter struct{ v *prometheus.GaugeVec }

func (g gaugeVecMeter) GaugeWithLabel(v int64, labels map[string]string) {
	g.v.With(labels).Set(float64(v))
}
