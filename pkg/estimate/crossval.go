package estimate

import (
	"math"

	"github.com/wqlegmed/death-time-calculator/pkg/types"
)

// CrossValidationThreshold is the largest midpoint gap, in hours, tolerated
// between the temperature estimate and a rigor or livor estimate.
const CrossValidationThreshold = 12.0

// CrossValidate checks rigor and then livor against the temperature estimate.
// When either midpoint is more than CrossValidationThreshold hours away from
// the temperature midpoint, every non-temperature estimate is marked
// Discarded and the kind's warning is emitted.
//
// Nothing is checked without a solved temperature estimate; the fallback
// interval is not a reference. The input slice is not modified. Running
// CrossValidate on its own output yields the same discard set.
func CrossValidate(estimates []types.Estimate) ([]types.Estimate, []Warning) {
	out := make([]types.Estimate, len(estimates))
	copy(out, estimates)

	ref, ok := find(out, types.KindTemperature)
	if !ok || ref.Fallback {
		return out, nil
	}
	refMid := ref.Interval.Midpoint()

	var warnings []Warning
	checks := []struct {
		kind types.EstimatorKind
		code WarningCode
	}{
		{types.KindRigor, WarnRigorInconsistent},
		{types.KindLivor, WarnLivorInconsistent},
	}
	for _, chk := range checks {
		e, ok := find(out, chk.kind)
		if !ok {
			continue
		}
		if math.Abs(e.Interval.Midpoint()-refMid) > CrossValidationThreshold {
			discardOthers(out)
			warnings = append(warnings, Warning{Code: chk.code})
		}
	}
	return out, warnings
}

func find(estimates []types.Estimate, kind types.EstimatorKind) (types.Estimate, bool) {
	for _, e := range estimates {
		if e.Kind == kind {
			return e, true
		}
	}
	return types.Estimate{}, false
}

// discardOthers keeps only the temperature estimate in play.
func discardOthers(estimates []types.Estimate) {
	for i := range estimates {
		if estimates[i].Kind != types.KindTemperature {
			estimates[i].Discarded = true
		}
	}
}
