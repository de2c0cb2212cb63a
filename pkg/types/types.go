package types

// BodyType is the ordinal body-build code recorded at the scene.
type BodyType int

const (
	BodyThin       BodyType = 1
	BodyNormal     BodyType = 2
	BodyOverweight BodyType = 3
	BodyObese      BodyType = 4
)

// Sex is the ordinal sex code.
type Sex int

const (
	SexMale   Sex = 1
	SexFemale Sex = 2
)

// Clothing is the ordinal clothing-insulation code, from almost bare (1) to
// very heavy winter clothing (5).
type Clothing int

const (
	ClothingNone   Clothing = 1
	ClothingLight  Clothing = 2
	ClothingNormal Clothing = 3
	ClothingThick  Clothing = 4
	ClothingHeavy  Clothing = 5
)

// RigorStage is the ordinal rigor mortis stage.
//
//	0 none, 1 jaw and neck, 2 limbs partly, 3 whole body but movable,
//	4 whole body rigid, 5 starting to resolve, 6 mostly resolved
type RigorStage int

// LivorStage is the ordinal livor mortis stage.
//
//	0 none, 1 scattered spots, 2 confluent and pale, 3 large dark patches,
//	4 dark leathery, 5 fading
type LivorStage int

// PressureResponse is the blanching response of livid skin to finger pressure.
//
//	0 disappears completely, 1 mostly fades, 2 partly fades,
//	3 slightly fades, 4 no change
type PressureResponse int

// Weather is the weather condition at the scene, used for humidity inference.
type Weather string

const (
	WeatherClear     Weather = "clear"
	WeatherOvercast  Weather = "overcast"
	WeatherCloudy    Weather = "cloudy"
	WeatherLightRain Weather = "light-rain"
	WeatherHeavyRain Weather = "heavy-rain"
	WeatherLightSnow Weather = "light-snow"
	WeatherHeavySnow Weather = "heavy-snow"
)

// Location is the optional scene context used to infer ambient humidity.
type Location struct {
	// Region is free text (a province name); matched by substring.
	Region  string  `json:"region" yaml:"region"`
	Month   int     `json:"month" yaml:"month"`
	Weather Weather `json:"weather" yaml:"weather"`
}

// Observation is the full set of caller-supplied facts for one case.
// Pointer fields are optional; nil means "not observed".
type Observation struct {
	Height   float64  `json:"height" yaml:"height"` // cm
	BodyType BodyType `json:"body_type" yaml:"body_type"`
	Sex      Sex      `json:"sex" yaml:"sex"`
	Age      float64  `json:"age" yaml:"age"`           // years
	EnvTemp  float64  `json:"env_temp" yaml:"env_temp"` // °C
	Clothing Clothing `json:"clothing" yaml:"clothing"`

	RectalTemp *float64          `json:"rectal_temp,omitempty" yaml:"rectal_temp,omitempty"` // °C
	Rigor      *RigorStage       `json:"rigor_mortis,omitempty" yaml:"rigor_mortis,omitempty"`
	Livor      *LivorStage       `json:"livor_mortis,omitempty" yaml:"livor_mortis,omitempty"`
	Pressure   *PressureResponse `json:"livor_pressure,omitempty" yaml:"livor_pressure,omitempty"`

	// Location feeds the humidity estimate. Humidity, when set, overrides it.
	Location *Location `json:"location,omitempty" yaml:"location,omitempty"`
	Humidity *float64  `json:"humidity,omitempty" yaml:"humidity,omitempty"` // percent
}

// HasPhenomena reports whether at least one post-mortem phenomenon was
// observed. Livor mortis counts only together with its pressure response.
func (o Observation) HasPhenomena() bool {
	return o.RectalTemp != nil || o.Rigor != nil || (o.Livor != nil && o.Pressure != nil)
}

// Ptr returns a pointer to v. Handy for filling optional Observation fields.
func Ptr[T any](v T) *T { return &v }

// Interval is a closed range of elapsed hours since death.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Midpoint returns the centre of the interval.
func (iv Interval) Midpoint() float64 { return (iv.Lower + iv.Upper) / 2 }

// Width returns Upper - Lower; negative for an inverted interval.
func (iv Interval) Width() float64 { return iv.Upper - iv.Lower }

// Inverted reports whether Lower > Upper, which a livor intersection can produce.
func (iv Interval) Inverted() bool { return iv.Lower > iv.Upper }

// Contains reports whether v lies within [Lower, Upper].
func (iv Interval) Contains(v float64) bool { return v >= iv.Lower && v <= iv.Upper }

// EstimatorKind tags an interval with the estimator that produced it.
type EstimatorKind string

const (
	KindTemperature EstimatorKind = "temperature"
	KindRigor       EstimatorKind = "rigor"
	KindLivor       EstimatorKind = "livor"
)

// Estimate is one estimator's contribution to a result.
type Estimate struct {
	Kind     EstimatorKind `json:"kind"`
	Interval Interval      `json:"interval"`
	// Weight is the fusion weight assigned to the estimator.
	Weight float64 `json:"weight"`
	// Discarded is set when cross-validation removed the estimate from fusion.
	Discarded bool `json:"discarded"`
	// Fallback marks the fixed temperature interval used when the cooling
	// equation has no root. It never serves as a cross-validation reference.
	Fallback bool `json:"fallback,omitempty"`
}

// Result is the output of one estimation call.
type Result struct {
	FullRange    Interval `json:"full_range"`
	Range90      Interval `json:"range_90"`
	Range70      Interval `json:"range_70"`
	Range50      Interval `json:"range_50"`
	BestEstimate float64  `json:"best_estimate"`
	Warnings     []string `json:"warnings"`
	// WarningCodes holds the stable code of each entry in Warnings, in order.
	WarningCodes []string `json:"warning_codes"`

	// Estimates lists every estimator that ran, discarded ones included.
	Estimates []Estimate `json:"estimates"`
	// Humidity is the relative humidity (percent) used for the cooling correction.
	Humidity float64 `json:"humidity"`
	// Fallback is set when the cooling equation had no bracketed root and the
	// fixed fallback interval was used instead.
	Fallback bool `json:"fallback"`
	// Insufficient is set on the zero sentinel returned when no
	// post-mortem phenomenon was supplied.
	Insufficient bool `json:"insufficient"`
}

// Estimate returns the estimate of the given kind, if that estimator ran.
func (r *Result) Estimate(kind EstimatorKind) (Estimate, bool) {
	for _, e := range r.Estimates {
		if e.Kind == kind {
			return e, true
		}
	}
	return Estimate{}, false
}
