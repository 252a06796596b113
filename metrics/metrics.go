// Package metrics wires the import processor into prometheus, the way
// core/statistics wires block/API timings into a package-level *Data
// registered against the default registerer.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder is the import processor's optional metrics sink. A nil
// *Recorder is always safe to call methods on, preserving the import
// processor's pure-function contract for callers that don't want metrics.
type Recorder struct {
	ImportsProcessed     prometheus.Counter
	ConversionsCleared   prometheus.Counter
	ConservationFailures prometheus.Counter
	ImportDuration       prometheus.Histogram
}

// New builds a Recorder and registers its collectors against reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		ImportsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reserve_imports_processed_total",
			Help: "Reserve transfer import batches processed.",
		}),
		ConversionsCleared: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reserve_conversions_cleared_total",
			Help: "Conversion legs cleared by ConvertAmounts.",
		}),
		ConservationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reserve_conservation_failures_total",
			Help: "Import batches rejected by the final conservation check.",
		}),
		ImportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reserve_import_duration_seconds",
			Help:    "Wall-clock time spent in AddReserveTransferImportOutputs.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(r.ImportsProcessed, r.ConversionsCleared, r.ConservationFailures, r.ImportDuration)
	return r
}

// NewDefault registers against prometheus.DefaultRegisterer, the way
// statistics.New does with prometheus.MustRegister.
func NewDefault() *Recorder {
	return New(prometheus.DefaultRegisterer)
}

func (r *Recorder) incImportsProcessed() {
	if r == nil {
		return
	}
	r.ImportsProcessed.Inc()
}

func (r *Recorder) incConversionsCleared(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.ConversionsCleared.Add(float64(n))
}

func (r *Recorder) incConservationFailures() {
	if r == nil {
		return
	}
	r.ConservationFailures.Inc()
}

func (r *Recorder) observeImportDuration(seconds float64) {
	if r == nil {
		return
	}
	r.ImportDuration.Observe(seconds)
}

// ObserveImport records one completed import batch: whether it cleared any
// conversion legs, whether the conservation check failed, and how long it
// took. The import processor calls this once per AddReserveTransferImportOutputs
// invocation.
func (r *Recorder) ObserveImport(convertedLegs int, conservationFailed bool, seconds float64) {
	if r == nil {
		return
	}
	r.incImportsProcessed()
	r.incConversionsCleared(convertedLegs)
	if conservationFailed {
		r.incConservationFailures()
	}
	r.observeImportDuration(seconds)
}
