package estimate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wqlegmed/death-time-calculator/pkg/types"
)

func est(kind types.EstimatorKind, lo, hi float64) types.Estimate {
	return types.Estimate{Kind: kind, Interval: types.Interval{Lower: lo, Upper: hi}, Weight: Weight(kind, 10)}
}

// nested reports whether inner lies inside outer.
func nested(inner, outer types.Interval) bool {
	return inner.Lower >= outer.Lower && inner.Upper <= outer.Upper
}

func discarded(estimates []types.Estimate) map[types.EstimatorKind]bool {
	out := make(map[types.EstimatorKind]bool)
	for _, e := range estimates {
		out[e.Kind] = e.Discarded
	}
	return out
}

func TestCrossValidate(t *testing.T) {
	tests := []struct {
		name          string
		in            []types.Estimate
		wantDiscarded map[types.EstimatorKind]bool
		wantWarnings  []Warning
	}{
		{
			name: "rigor 20h away from temperature",
			// temperature midpoint 10h, rigor midpoint 30h
			in: []types.Estimate{
				est(types.KindTemperature, 8, 12),
				est(types.KindRigor, 24, 36),
			},
			wantDiscarded: map[types.EstimatorKind]bool{types.KindTemperature: false, types.KindRigor: true},
			wantWarnings:  []Warning{{Code: WarnRigorInconsistent}},
		},
		{
			name: "rigor disagreement also drops agreeing livor",
			in: []types.Estimate{
				est(types.KindTemperature, 8, 12),
				est(types.KindRigor, 24, 36),
				est(types.KindLivor, 6, 10),
			},
			wantDiscarded: map[types.EstimatorKind]bool{
				types.KindTemperature: false, types.KindRigor: true, types.KindLivor: true,
			},
			wantWarnings: []Warning{{Code: WarnRigorInconsistent}},
		},
		{
			name: "livor disagreement also drops agreeing rigor",
			in: []types.Estimate{
				est(types.KindTemperature, 8, 12),
				est(types.KindRigor, 8, 20),
				est(types.KindLivor, 24, 48),
			},
			wantDiscarded: map[types.EstimatorKind]bool{
				types.KindTemperature: false, types.KindRigor: true, types.KindLivor: true,
			},
			wantWarnings: []Warning{{Code: WarnLivorInconsistent}},
		},
		{
			name: "both disagree",
			in: []types.Estimate{
				est(types.KindTemperature, 16.4, 24.6),
				est(types.KindRigor, 4, 10),
				est(types.KindLivor, 2, 4),
			},
			wantDiscarded: map[types.EstimatorKind]bool{
				types.KindTemperature: false, types.KindRigor: true, types.KindLivor: true,
			},
			wantWarnings: []Warning{{Code: WarnRigorInconsistent}, {Code: WarnLivorInconsistent}},
		},
		{
			name: "exactly 12h apart is tolerated",
			in: []types.Estimate{
				est(types.KindTemperature, 8, 12),
				est(types.KindRigor, 16, 28),
			},
			wantDiscarded: map[types.EstimatorKind]bool{types.KindTemperature: false, types.KindRigor: false},
		},
		{
			name: "no temperature, nothing checked",
			in: []types.Estimate{
				est(types.KindRigor, 0, 3),
				est(types.KindLivor, 24, 48),
			},
			wantDiscarded: map[types.EstimatorKind]bool{types.KindRigor: false, types.KindLivor: false},
		},
		{
			name: "fallback temperature is not a reference",
			in: []types.Estimate{
				{Kind: types.KindTemperature, Interval: FallbackInterval, Weight: weightTemperature, Fallback: true},
				est(types.KindRigor, 36, 72),
			},
			wantDiscarded: map[types.EstimatorKind]bool{types.KindTemperature: false, types.KindRigor: false},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, warnings := CrossValidate(tc.in)
			if diff := cmp.Diff(tc.wantDiscarded, discarded(got)); diff != "" {
				t.Errorf("discard set mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantWarnings, warnings); diff != "" {
				t.Errorf("warnings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCrossValidate_DoesNotMutateInput(t *testing.T) {
	in := []types.Estimate{est(types.KindTemperature, 8, 12), est(types.KindRigor, 24, 36)}
	CrossValidate(in)
	if in[1].Discarded {
		t.Error("input slice was modified")
	}
}

func TestCrossValidate_Idempotent(t *testing.T) {
	in := []types.Estimate{
		est(types.KindTemperature, 8, 12),
		est(types.KindRigor, 24, 36),
		est(types.KindLivor, 6, 10),
	}
	once, _ := CrossValidate(in)
	twice, _ := CrossValidate(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second pass changed the estimates (-once +twice):\n%s", diff)
	}

	// Check order does not matter for the final discard set.
	reversed := []types.Estimate{in[0], in[2], in[1]}
	got, _ := CrossValidate(reversed)
	if diff := cmp.Diff(discarded(once), discarded(got)); diff != "" {
		t.Errorf("discard set depends on order (-want +got):\n%s", diff)
	}
}
