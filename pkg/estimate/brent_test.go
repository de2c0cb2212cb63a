package estimate

import (
	"errors"
	"math"
	"testing"
)

// almostEqual returns true if a and b are within epsilon of each other.
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestBrent_Roots(t *testing.T) {
	tests := []struct {
		name string
		f    func(float64) float64
		a, b float64
		want float64
	}{
		{"sqrt2", func(x float64) float64 { return x*x - 2 }, 0, 2, math.Sqrt2},
		{"cos fixed point", func(x float64) float64 { return math.Cos(x) - x }, 0, 1, 0.7390851332151607},
		{"decreasing line", func(x float64) float64 { return 10 - 2*x }, 0, 120, 5},
		{"root at lower end", func(x float64) float64 { return x }, 0, 3, 0},
		{"root at upper end", func(x float64) float64 { return x - 3 }, 0, 3, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := brent(tc.f, tc.a, tc.b, rootTolerance, maxIterations)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !almostEqual(got, tc.want, 1e-9) {
				t.Errorf("root = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBrent_NotBracketed(t *testing.T) {
	_, err := brent(func(x float64) float64 { return x*x + 1 }, -1, 1, rootTolerance, maxIterations)
	if !errors.Is(err, ErrNotBracketed) {
		t.Errorf("err = %v, want ErrNotBracketed", err)
	}
	_, err = brent(func(float64) float64 { return math.NaN() }, 0, 1, rootTolerance, maxIterations)
	if !errors.Is(err, ErrNotBracketed) {
		t.Errorf("NaN endpoints: err = %v, want ErrNotBracketed", err)
	}
}

func TestBrent_IterationCap(t *testing.T) {
	calls := 0
	f := func(x float64) float64 {
		calls++
		return x - 0.123456789
	}
	_, err := brent(f, 0, 1, 0, 1)
	if !errors.Is(err, ErrNoConvergence) {
		t.Errorf("err = %v, want ErrNoConvergence with a one-step cap", err)
	}
	if calls > 3 {
		t.Errorf("f evaluated %d times, want at most 3 with a one-step cap", calls)
	}
}
