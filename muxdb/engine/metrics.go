package engine

import "github.com/prometheus/client_golang/prometheus"

var (
	metricBatchWriteBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "engine_batch_write_bytes",
		Help: "Size in bytes of the last leveldb batch write.",
	})
	metricBatchWriteDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "engine_batch_write_duration_ms",
		Help:    "Duration in milliseconds of leveldb batch writes.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
)

func init() {
	prometheus.MustRegister(metricBatchWriteBytes, metricBatchWriteDuration)
}
