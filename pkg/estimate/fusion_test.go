package estimate

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wqlegmed/death-time-calculator/pkg/types"
)

func TestWeight(t *testing.T) {
	tests := []struct {
		kind types.EstimatorKind
		diff float64
		want float64
	}{
		{types.KindTemperature, 10, 0.8},
		{types.KindTemperature, 2, 0.8},
		{types.KindTemperature, 1.9, 0.6},
		{types.KindRigor, 0, 0.6},
		{types.KindLivor, 0, 0.7},
		{"odour", 0, 0},
	}
	for _, tc := range tests {
		if got := Weight(tc.kind, tc.diff); got != tc.want {
			t.Errorf("Weight(%s, %v) = %v, want %v", tc.kind, tc.diff, got, tc.want)
		}
	}
}

func TestFuse_SingleEstimate(t *testing.T) {
	// A single estimate has zero weighted variance; σ is a quarter of its width.
	f, ok := Fuse([]types.Estimate{est(types.KindRigor, 0, 3)})
	if !ok {
		t.Fatal("ok = false")
	}
	if f.FullRange != (types.Interval{Lower: 0, Upper: 3}) {
		t.Errorf("FullRange = %+v, want (0, 3)", f.FullRange)
	}
	if !almostEqual(f.BestEstimate, 1.5, 1e-12) {
		t.Errorf("BestEstimate = %v, want 1.5", f.BestEstimate)
	}
	if !almostEqual(f.Sigma, 0.75, 1e-12) {
		t.Errorf("Sigma = %v, want 0.75", f.Sigma)
	}
	if !almostEqual(f.Range90.Lower, 1.5-1.645*0.75, 1e-12) || !almostEqual(f.Range90.Upper, 1.5+1.645*0.75, 1e-12) {
		t.Errorf("Range90 = %+v", f.Range90)
	}
}

func TestFuse_Weighted(t *testing.T) {
	in := []types.Estimate{
		est(types.KindTemperature, 0, 8), // mid 4, w 0.8
		est(types.KindRigor, 4, 10),      // mid 7, w 0.6
		est(types.KindLivor, 2, 4),       // mid 3, w 0.7
	}
	f, ok := Fuse(in)
	if !ok {
		t.Fatal("ok = false")
	}

	if !almostEqual(f.FullRange.Lower, 2, 1e-12) || !almostEqual(f.FullRange.Upper, 22.0/3, 1e-12) {
		t.Errorf("FullRange = %+v, want (2, 7.333)", f.FullRange)
	}
	wantMid := (4*0.8 + 7*0.6 + 3*0.7) / 2.1
	if !almostEqual(f.BestEstimate, wantMid, 1e-12) {
		t.Errorf("BestEstimate = %v, want %v", f.BestEstimate, wantMid)
	}
	wantVar := (0.8*math.Pow(4-wantMid, 2) + 0.6*math.Pow(7-wantMid, 2) + 0.7*math.Pow(3-wantMid, 2)) / 2.1
	if !almostEqual(f.Sigma, math.Sqrt(wantVar), 1e-12) {
		t.Errorf("Sigma = %v, want %v", f.Sigma, math.Sqrt(wantVar))
	}
	if !f.Weighted {
		t.Error("Weighted = false")
	}
	if !(nested(f.Range50, f.Range70) && nested(f.Range70, f.Range90)) {
		t.Errorf("intervals not nested: 50 %+v, 70 %+v, 90 %+v", f.Range50, f.Range70, f.Range90)
	}
}

func TestFuse_SkipsDiscarded(t *testing.T) {
	in := []types.Estimate{
		est(types.KindTemperature, 16, 24),
		{Kind: types.KindRigor, Interval: types.Interval{Lower: 4, Upper: 10}, Weight: weightRigor, Discarded: true},
	}
	f, _ := Fuse(in)
	if f.FullRange != (types.Interval{Lower: 16, Upper: 24}) {
		t.Errorf("FullRange = %+v, want the temperature interval", f.FullRange)
	}
	if !almostEqual(f.BestEstimate, 20, 1e-12) {
		t.Errorf("BestEstimate = %v, want 20", f.BestEstimate)
	}
}

func TestFuse_Unweighted(t *testing.T) {
	in := []types.Estimate{
		{Kind: types.KindRigor, Interval: types.Interval{Lower: 2, Upper: 6}},
		{Kind: types.KindLivor, Interval: types.Interval{Lower: 4, Upper: 12}},
	}
	f, ok := Fuse(in)
	if !ok {
		t.Fatal("ok = false")
	}
	if f.Weighted {
		t.Error("Weighted = true with zero weights")
	}
	if f.BestEstimate != 6 {
		t.Errorf("BestEstimate = %v, want unweighted midpoint 6", f.BestEstimate)
	}
	if f.Sigma != 1.5 {
		t.Errorf("Sigma = %v, want (9 - 3) / 4", f.Sigma)
	}
}

func TestFuse_LowerBoundClamped(t *testing.T) {
	in := []types.Estimate{
		est(types.KindTemperature, 0, 2),
		est(types.KindRigor, 0, 3),
		est(types.KindLivor, 0, 0.5),
	}
	f, _ := Fuse(in)
	for name, iv := range map[string]types.Interval{"90": f.Range90, "70": f.Range70, "50": f.Range50} {
		if iv.Lower < 0 {
			t.Errorf("Range%s lower = %v, want >= 0", name, iv.Lower)
		}
	}
}

func TestFuse_NothingSurvives(t *testing.T) {
	if _, ok := Fuse(nil); ok {
		t.Error("Fuse(nil) ok = true")
	}
	all := []types.Estimate{{Kind: types.KindRigor, Discarded: true}}
	if _, ok := Fuse(all); ok {
		t.Error("Fuse(all discarded) ok = true")
	}
}

func TestFuse_Deterministic(t *testing.T) {
	in := []types.Estimate{
		est(types.KindTemperature, 16.4, 24.6),
		est(types.KindRigor, 8, 20),
		est(types.KindLivor, 6, 16),
	}
	first, _ := Fuse(in)
	second, _ := Fuse(in)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Fuse not deterministic (-first +second):\n%s", diff)
	}
}
