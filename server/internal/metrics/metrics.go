package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/wqlegmed/death-time-calculator/pkg/types"
)

// Metric names exposed on /metrics.
const (
	nameEstimates = "dtc_estimates_total"
	nameDiscards  = "dtc_estimator_discards_total"
	nameFallbacks = "dtc_cooling_fallbacks_total"
	nameCache     = "dtc_cache_lookups_total"
	nameLatency   = "dtc_estimate_duration_seconds"
)

// Outcome labels for dtc_estimates_total.
const (
	OutcomeOK           = "ok"
	OutcomeInsufficient = "insufficient"
	OutcomeInvalid      = "invalid"
	OutcomeError        = "error"
)

// Metrics provides observability for the estimation API.
type Metrics struct {
	// Requests by outcome
	Estimates *prometheus.CounterVec

	// Estimators dropped by cross-validation, by kind
	Discards *prometheus.CounterVec

	// Cooling results that fell back to the fixed interval
	Fallbacks prometheus.Counter

	// Result cache lookups by result (hit, miss)
	CacheLookups *prometheus.CounterVec

	// Inference latency, cache hits excluded
	Latency prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New creates a Metrics instance registered on reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Estimates: f.NewCounterVec(prometheus.CounterOpts{
			Name: nameEstimates,
			Help: "Total estimate requests by outcome",
		}, []string{"outcome"}),

		Discards: f.NewCounterVec(prometheus.CounterOpts{
			Name: nameDiscards,
			Help: "Estimators discarded by cross-validation against the temperature estimate",
		}, []string{"kind"}),

		Fallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: nameFallbacks,
			Help: "Cooling estimates that used the fixed fallback interval",
		}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: nameCache,
			Help: "Result cache lookups by result",
		}, []string{"result"}),

		Latency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    nameLatency,
			Help:    "Duration of a single inference",
			Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		}),

		gatherer: reg,
	}
}

// ObserveResult records the outcome of one inference.
func (m *Metrics) ObserveResult(res *types.Result, d time.Duration) {
	if m == nil || res == nil {
		return
	}
	m.Latency.Observe(d.Seconds())
	if res.Insufficient {
		m.Estimates.WithLabelValues(OutcomeInsufficient).Inc()
		return
	}
	m.Estimates.WithLabelValues(OutcomeOK).Inc()
	if res.Fallback {
		m.Fallbacks.Inc()
	}
	for _, e := range res.Estimates {
		if e.Discarded {
			m.Discards.WithLabelValues(string(e.Kind)).Inc()
		}
	}
}

// IncrementOutcome records a request that ended before a result was produced.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.Estimates.WithLabelValues(outcome).Inc()
	}
}

// ObserveCache records a cache hit or miss.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}

// Summary is a point-in-time rollup of the counters.
type Summary struct {
	Estimates map[string]float64 `json:"estimates"`
	Discards  map[string]float64 `json:"discards"`
	Fallbacks float64            `json:"fallbacks"`
	CacheHits float64            `json:"cache_hits"`
	CacheMiss float64            `json:"cache_misses"`
}

// Summary gathers the registry and folds each family into a Summary.
func (m *Metrics) Summary() (Summary, error) {
	s := Summary{Estimates: map[string]float64{}, Discards: map[string]float64{}}
	if m == nil {
		return s, nil
	}
	mfs, err := m.gatherer.Gather()
	if err != nil {
		return s, fmt.Errorf("metrics: gather: %w", err)
	}
	for _, mf := range mfs {
		switch mf.GetName() {
		case nameEstimates:
			byLabel(mf, "outcome", s.Estimates)
		case nameDiscards:
			byLabel(mf, "kind", s.Discards)
		case nameFallbacks:
			s.Fallbacks = sumFamily(mf)
		case nameCache:
			cache := map[string]float64{}
			byLabel(mf, "result", cache)
			s.CacheHits, s.CacheMiss = cache["hit"], cache["miss"]
		}
	}
	return s, nil
}

// byLabel adds each counter in mf to out under the value of label.
func byLabel(mf *dto.MetricFamily, label string, out map[string]float64) {
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == label {
				out[lp.GetValue()] += m.GetCounter().GetValue()
			}
		}
	}
}

// sumFamily adds up all counter or gauge values in a MetricFamily.
// Returns 0 if mf is nil.
func sumFamily(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		switch {
		case m.Counter != nil:
			total += m.Counter.GetValue()
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
		}
	}
	return total
}
