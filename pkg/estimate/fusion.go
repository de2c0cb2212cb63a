package estimate

import (
	"math"

	"github.com/wqlegmed/death-time-calculator/pkg/types"
)

// Fusion weights per estimator.
const (
	weightTemperature     = 0.8
	weightTemperatureWeak = 0.6 // differential below SmallDifferential
	weightRigor           = 0.6
	weightLivor           = 0.7
)

// Normal quantiles for the symmetric confidence intervals.
const (
	z90 = 1.645
	z70 = 1.036
	z50 = 0.675
)

// Weight returns the fusion weight of an estimator. diff is the rectal minus
// ambient differential and only matters for the temperature estimator.
// Unknown kinds weigh 0 and are left out of the weighted statistics.
func Weight(kind types.EstimatorKind, diff float64) float64 {
	switch kind {
	case types.KindTemperature:
		if diff < SmallDifferential {
			return weightTemperatureWeak
		}
		return weightTemperature
	case types.KindRigor:
		return weightRigor
	case types.KindLivor:
		return weightLivor
	}
	return 0
}

// Fusion is the combined view of the surviving estimates.
type Fusion struct {
	FullRange    types.Interval
	Range90      types.Interval
	Range70      types.Interval
	Range50      types.Interval
	BestEstimate float64
	// Sigma is the spread used for the confidence intervals.
	Sigma float64
	// Weighted is false when no surviving estimate carried a weight and the
	// unweighted midpoint was used.
	Weighted bool
}

// Fuse combines every estimate not marked Discarded. ok is false when nothing
// survives, in which case the caller returns the insufficient-data sentinel.
//
// The full range averages the lower and upper bounds. The best estimate is the
// weight-averaged midpoint, and the confidence intervals are z·σ around it
// with σ the weighted standard deviation of the midpoints. When that variance
// is zero σ falls back to a quarter of the full range.
func Fuse(estimates []types.Estimate) (f Fusion, ok bool) {
	var (
		n            int
		sumLo, sumUp float64
	)
	for _, e := range estimates {
		if e.Discarded {
			continue
		}
		n++
		sumLo += e.Interval.Lower
		sumUp += e.Interval.Upper
	}
	if n == 0 {
		return Fusion{}, false
	}
	f.FullRange = types.Interval{Lower: sumLo / float64(n), Upper: sumUp / float64(n)}
	// An inverted livor interval can invert the full range; the spread is
	// taken on its magnitude.
	fallbackSigma := math.Abs(f.FullRange.Width()) / 4

	center := f.FullRange.Midpoint()
	sigma := fallbackSigma

	var weightSum, weightedMid float64
	for _, e := range estimates {
		if e.Discarded || e.Weight <= 0 {
			continue
		}
		weightSum += e.Weight
		weightedMid += e.Weight * e.Interval.Midpoint()
	}
	if weightSum > 0 {
		f.Weighted = true
		center = weightedMid / weightSum

		var variance float64
		for _, e := range estimates {
			if e.Discarded || e.Weight <= 0 {
				continue
			}
			dev := e.Interval.Midpoint() - center
			variance += e.Weight * dev * dev
		}
		variance /= weightSum
		if variance > 0 {
			sigma = math.Sqrt(variance)
		}
	}

	f.BestEstimate = center
	f.Sigma = sigma
	f.Range90 = around(center, z90*sigma)
	f.Range70 = around(center, z70*sigma)
	f.Range50 = around(center, z50*sigma)
	return f, true
}

// around returns [center − half, center + half] with the lower bound
// clamped at zero.
func around(center, half float64) types.Interval {
	return types.Interval{Lower: math.Max(0, center-half), Upper: center + half}
}
