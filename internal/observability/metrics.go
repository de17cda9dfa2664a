package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	Loads        *prometheus.CounterVec // labels: outcome={success,failure,cancelled}
	LoadDuration prometheus.Histogram
	RowsRead     prometheus.Counter
	RowsSkipped  prometheus.Counter
	HeatPoints   prometheus.Gauge
	CaseMarkers  prometheus.Gauge
	Stations     prometheus.Gauge
	Generation   prometheus.Gauge

	// Marker publishing metrics.
	PublishedMarkers prometheus.Counter
	PublishErrors    prometheus.Counter
}

const namespace = "narcan_map"

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Loads,
		m.LoadDuration,
		m.RowsRead,
		m.RowsSkipped,
		m.HeatPoints,
		m.CaseMarkers,
		m.Stations,
		m.Generation,
		m.PublishedMarkers,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "CSV load attempts by outcome.",
		}, []string{"outcome"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Duration of a complete fetch-parse-transform cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "CSV rows read across all loads.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "CSV rows dropped for unparseable coordinates.",
		}),
		HeatPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "heat_points",
			Help:      "Heat points in the current map state.",
		}),
		CaseMarkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "case_markers",
			Help:      "Case markers in the current map state.",
		}),
		Stations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ems_stations",
			Help:      "Stations in the static EMS directory.",
		}),
		Generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state_generation",
			Help:      "Generation number of the current map state.",
		}),
		PublishedMarkers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "published_markers_total",
			Help:      "Case markers written to the Kafka topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed attempts to publish a map state.",
		}),
	}
}
