package allocation

import "github.com/prometheus/client_golang/prometheus"

var (
	recordsTotal     *prometheus.CounterVec
	fallbacksTotal   prometheus.Counter
	categoryDuration *prometheus.HistogramVec
)

func newCollectors() (*prometheus.CounterVec, prometheus.Counter, *prometheus.HistogramVec) {
	rec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wasteflow_allocation_records_total",
			Help: "Number of allocation records emitted",
		},
		[]string{"strategy"},
	)
	fb := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wasteflow_allocation_fallbacks_total",
			Help: "Number of min cost flow solves that fell back to greedy",
		},
	)
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wasteflow_category_allocation_seconds",
			Help:    "Time spent allocating one waste category",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)
	return rec, fb, dur
}

func init() {
	recordsTotal, fallbacksTotal, categoryDuration = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers engine metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(recordsTotal, fallbacksTotal, categoryDuration)
}

// ResetMetrics reinitializes the collectors for testing purposes and
// registers them on reg if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	recordsTotal, fallbacksTotal, categoryDuration = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
