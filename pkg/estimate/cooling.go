package estimate

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/wqlegmed/death-time-calculator/pkg/types"
)

// Cooling model constants.
const (
	baselineTemp = 37.0 // °C at the moment of death
	plateauHours = 4.0  // end of the initial cooling phase
	k1           = 0.05 // phase-1 rate, per hour
	k2           = 0.02 // phase-2 rate, per hour

	// Humidity above humidCutoff percent slows cooling by humidFactor.
	humidCutoff = 70.0
	humidFactor = 0.95
)

// Root search window and limits.
const (
	searchLower   = 0.0
	searchUpper   = 120.0
	maxIterations = 100
	rootTolerance = 2e-12
)

// Differential thresholds (rectal minus ambient, °C).
const (
	// Below SmallDifferential the temperature read is weak: the uncertainty
	// widens and the temperature weight drops.
	SmallDifferential = 2.0
	// Below unreliableDifferential a failed root search is reported.
	unreliableDifferential = 5.0
)

// Uncertainty half-widths as a share of the solved hours, with a floor.
const (
	uncertaintyShareWeak = 0.4
	uncertaintyFloorWeak = 2.0
	uncertaintyShare     = 0.2
	uncertaintyFloor     = 1.0
)

// FallbackInterval is used as the temperature estimate when the cooling
// equation has no root in the search window.
var FallbackInterval = types.Interval{Lower: 0, Upper: 8}

// DecayForm selects the phase-2 cooling curve.
type DecayForm string

const (
	// DecayContinuous is continuous at the plateau and decreases monotonically
	// toward ambient:
	//
	//	T(t) = 37 − D·[1 − e^(−k1·c·tp)·e^(−k2·c·(t−tp))]
	DecayContinuous DecayForm = "continuous"

	// DecayLiteral multiplies the phase-1 loss by the phase-2 decay:
	//
	//	T(t) = 37 − D·[(1 − e^(−k1·c·tp))·e^(−k2·c·(t−tp))]
	//
	// After the plateau the body rewarms toward 37 °C, so most readings have
	// no bracketed root and get FallbackInterval. Kept for output
	// compatibility with results produced before DecayContinuous.
	DecayLiteral DecayForm = "literal"
)

// ParseDecayForm accepts "continuous" or "literal". The empty string is
// DecayContinuous.
func ParseDecayForm(s string) (DecayForm, error) {
	switch DecayForm(strings.ToLower(strings.TrimSpace(s))) {
	case "", DecayContinuous:
		return DecayContinuous, nil
	case DecayLiteral:
		return DecayLiteral, nil
	}
	return "", fmt.Errorf("estimate: unknown decay form %q: want continuous|literal", s)
}

// CoolingInput holds the observations the cooling model consumes.
type CoolingInput struct {
	EnvTemp    float64 // °C
	RectalTemp float64 // °C
	Humidity   float64 // percent
	Age        float64 // years
	BodyType   types.BodyType
	Sex        types.Sex
	Clothing   types.Clothing
}

// Differential returns rectal minus ambient temperature.
func (in CoolingInput) Differential() float64 { return in.RectalTemp - in.EnvTemp }

// Coefficient returns the combined correction c applied to both rate
// constants. Codes missing from a factor table contribute 1.0.
func Coefficient(in CoolingInput) float64 {
	c := factorOr1(clothingFactor, in.Clothing) *
		factorOr1(bodyTypeFactor, in.BodyType) *
		factorOr1(sexFactor, in.Sex)
	if in.Age < ageMinorBelow || in.Age > ageElderlyAbove {
		c *= ageFactorYoungOld
	}
	if in.Humidity > humidCutoff {
		c *= humidFactor
	}
	return c
}

func factorOr1[K comparable](m map[K]float64, k K) float64 {
	if f, ok := m[k]; ok {
		return f
	}
	return 1.0
}

// CoolingModel evaluates and inverts the two-phase cooling curve.
// The zero value uses DecayContinuous.
type CoolingModel struct {
	Form DecayForm
}

// Temperature returns the modelled body temperature t hours after death at
// ambient env with correction c.
func (m CoolingModel) Temperature(t, env, c float64) float64 {
	d := baselineTemp - env
	if t <= plateauHours {
		return baselineTemp - d*(1-math.Exp(-k1*c*t))
	}
	plateau := math.Exp(-k1 * c * plateauHours)
	decay := math.Exp(-k2 * c * (t - plateauHours))
	if m.Form == DecayLiteral {
		return baselineTemp - d*((1-plateau)*decay)
	}
	return baselineTemp - d*(1-plateau*decay)
}

// Solve returns the hours at which the modelled temperature equals the rectal
// reading. The error is ErrNotBracketed or ErrNoConvergence when no root is
// found in [0, 120].
func (m CoolingModel) Solve(in CoolingInput) (float64, error) {
	c := Coefficient(in)
	f := func(t float64) float64 {
		return m.Temperature(t, in.EnvTemp, c) - in.RectalTemp
	}
	return brent(f, searchLower, searchUpper, rootTolerance, maxIterations)
}

// CoolingResult is the temperature estimator's output.
type CoolingResult struct {
	Hours        float64 // solved hours; 0 when Fallback
	Interval     types.Interval
	Differential float64
	Fallback     bool
	Warnings     []Warning
}

// Estimate solves the cooling equation and wraps the root in an uncertainty
// interval. When no root exists it returns FallbackInterval.
func (m CoolingModel) Estimate(in CoolingInput) CoolingResult {
	diff := in.Differential()
	out := CoolingResult{Differential: diff}

	hours, err := m.Solve(in)
	if err != nil {
		slog.Debug("estimate: cooling root not found, using fallback",
			"env_temp", in.EnvTemp, "rectal_temp", in.RectalTemp, "form", m.Form, "err", err)
		out.Interval = FallbackInterval
		out.Fallback = true
		if diff < unreliableDifferential {
			out.Warnings = append(out.Warnings, Warning{Code: WarnCoolingUnreliable})
		}
	} else {
		u := math.Max(uncertaintyFloor, hours*uncertaintyShare)
		if diff < SmallDifferential {
			u = math.Max(uncertaintyFloorWeak, hours*uncertaintyShareWeak)
		}
		out.Hours = hours
		out.Interval = types.Interval{Lower: math.Max(0, hours-u), Upper: hours + u}
	}

	if diff < SmallDifferential {
		out.Warnings = append(out.Warnings, Warning{Code: WarnSmallDifferential, TempDiff: diff})
	}
	return out
}
