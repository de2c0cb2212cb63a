package estimate

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/wqlegmed/death-time-calculator/pkg/types"
)

// ErrNonFinite is returned by Infer when a numeric input is NaN or infinite.
// Callers surface it as a generic "computation failed" message.
var ErrNonFinite = errors.New("estimate: non-finite input")

// Options configure an Engine.
type Options struct {
	// Locale of the warning texts in Result.Warnings. Default LocaleEN.
	Locale Locale
	// Decay selects the phase-2 cooling curve. Default DecayContinuous.
	Decay DecayForm
	// FixedLocation ignores the observation's Location and Humidity and always
	// infers humidity from DefaultLocation.
	FixedLocation bool
}

// Engine runs the full estimation pipeline: humidity, the three estimators,
// cross-validation and fusion.
//
// An Engine holds only its options and is safe for concurrent use.
type Engine struct {
	opts    Options
	cooling CoolingModel
}

// NewEngine returns an Engine with the given options. Empty fields take
// their defaults.
func NewEngine(opts Options) *Engine {
	if opts.Locale == "" {
		opts.Locale = LocaleEN
	}
	if opts.Decay == "" {
		opts.Decay = DecayContinuous
	}
	return &Engine{opts: opts, cooling: CoolingModel{Form: opts.Decay}}
}

// Options returns the engine's effective options.
func (e *Engine) Options() Options { return e.opts }

var defaultEngine = NewEngine(Options{})

// Infer runs the default engine (English texts, continuous decay).
func Infer(obs types.Observation) (*types.Result, error) {
	return defaultEngine.Infer(obs)
}

// Infer estimates the hours since death for one observation.
//
// The only error is ErrNonFinite. Missing phenomena, unknown codes,
// a failed root search and disagreeing estimators all produce a normal
// Result carrying warnings.
func (e *Engine) Infer(obs types.Observation) (*types.Result, error) {
	if err := checkFinite(obs); err != nil {
		return nil, err
	}

	res := &types.Result{Humidity: e.Humidity(obs)}
	if !obs.HasPhenomena() {
		slog.Debug("estimate: observation carries no phenomena")
		return e.insufficient(res.Humidity), nil
	}

	var (
		estimates []types.Estimate
		warnings  []Warning
	)

	if obs.RectalTemp != nil {
		cr := e.cooling.Estimate(CoolingInput{
			EnvTemp:    obs.EnvTemp,
			RectalTemp: *obs.RectalTemp,
			Humidity:   res.Humidity,
			Age:        obs.Age,
			BodyType:   obs.BodyType,
			Sex:        obs.Sex,
			Clothing:   obs.Clothing,
		})
		estimates = append(estimates, types.Estimate{
			Kind:     types.KindTemperature,
			Interval: cr.Interval,
			Weight:   Weight(types.KindTemperature, cr.Differential),
			Fallback: cr.Fallback,
		})
		warnings = append(warnings, cr.Warnings...)
		res.Fallback = cr.Fallback
	}

	if obs.Rigor != nil {
		if iv, ok := RigorInterval(*obs.Rigor); ok {
			estimates = append(estimates, types.Estimate{
				Kind:     types.KindRigor,
				Interval: iv,
				Weight:   Weight(types.KindRigor, 0),
			})
		}
	}

	if obs.Livor != nil && obs.Pressure != nil {
		if iv, ok := LivorInterval(*obs.Livor, *obs.Pressure); ok {
			estimates = append(estimates, types.Estimate{
				Kind:     types.KindLivor,
				Interval: iv,
				Weight:   Weight(types.KindLivor, 0),
			})
		}
	}

	estimates, cvWarnings := CrossValidate(estimates)
	warnings = append(warnings, cvWarnings...)

	f, ok := Fuse(estimates)
	if !ok {
		slog.Debug("estimate: no estimator produced an interval")
		return e.insufficient(res.Humidity), nil
	}

	res.FullRange = f.FullRange
	res.Range90 = f.Range90
	res.Range70 = f.Range70
	res.Range50 = f.Range50
	res.BestEstimate = f.BestEstimate
	res.Estimates = estimates
	e.setWarnings(res, warnings)

	slog.Debug("estimate: inferred",
		"best", res.BestEstimate,
		"estimators", len(estimates),
		"fallback", res.Fallback,
		"warnings", res.WarningCodes,
	)
	return res, nil
}

// Humidity returns the relative humidity the engine uses for obs: the
// explicit Humidity, else the one inferred from Location, else the one
// inferred from DefaultLocation.
func (e *Engine) Humidity(obs types.Observation) float64 {
	loc := DefaultLocation
	if !e.opts.FixedLocation {
		if obs.Humidity != nil {
			return clamp(*obs.Humidity, 0, 100)
		}
		if obs.Location != nil {
			loc = *obs.Location
		}
	}
	return EstimateHumidity(loc.Region, loc.Month, loc.Weather)
}

// insufficient builds the zero sentinel returned when no phenomenon is usable.
func (e *Engine) insufficient(humidity float64) *types.Result {
	res := &types.Result{Humidity: humidity, Insufficient: true}
	e.setWarnings(res, []Warning{{Code: WarnInsufficientData}})
	return res
}

func (e *Engine) setWarnings(res *types.Result, warnings []Warning) {
	res.Warnings = make([]string, 0, len(warnings))
	res.WarningCodes = make([]string, 0, len(warnings))
	for _, w := range warnings {
		res.Warnings = append(res.Warnings, e.opts.Locale.Text(w))
		res.WarningCodes = append(res.WarningCodes, string(w.Code))
	}
}

func checkFinite(obs types.Observation) error {
	fields := []struct {
		name string
		v    *float64
	}{
		{"height", &obs.Height},
		{"age", &obs.Age},
		{"env_temp", &obs.EnvTemp},
		{"rectal_temp", obs.RectalTemp},
		{"humidity", obs.Humidity},
	}
	for _, f := range fields {
		if f.v == nil {
			continue
		}
		if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) {
			return fmt.Errorf("%w: %s = %v", ErrNonFinite, f.name, *f.v)
		}
	}
	return nil
}
