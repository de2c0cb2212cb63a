package types

import (
	"errors"
	"fmt"
)

// Input ranges accepted by the case form. The estimation core does not
// enforce them; callers run Validate before building a request.
const (
	MinHeight, MaxHeight         = 140.0, 200.0
	MinAge, MaxAge               = 10.0, 90.0
	MinEnvTemp, MaxEnvTemp       = -30.0, 40.0
	MinRectalTemp, MaxRectalTemp = 0.0, 40.0
)

// ErrInvalidObservation is wrapped by every error returned from Validate.
var ErrInvalidObservation = errors.New("invalid observation")

// Validate checks that every field is present and within the form's range.
// NaN values fail every range check.
func (o Observation) Validate() error {
	if !inRange(o.Height, MinHeight, MaxHeight) {
		return invalid("height %v out of range [%v, %v]", o.Height, MinHeight, MaxHeight)
	}
	if o.BodyType < BodyThin || o.BodyType > BodyObese {
		return invalid("body_type %d unknown: want 1-4", o.BodyType)
	}
	if o.Sex != SexMale && o.Sex != SexFemale {
		return invalid("sex %d unknown: want 1|2", o.Sex)
	}
	if !inRange(o.Age, MinAge, MaxAge) {
		return invalid("age %v out of range [%v, %v]", o.Age, MinAge, MaxAge)
	}
	if !inRange(o.EnvTemp, MinEnvTemp, MaxEnvTemp) {
		return invalid("env_temp %v out of range [%v, %v]", o.EnvTemp, MinEnvTemp, MaxEnvTemp)
	}
	if o.Clothing < ClothingNone || o.Clothing > ClothingHeavy {
		return invalid("clothing %d unknown: want 1-5", o.Clothing)
	}
	if o.RectalTemp != nil && !inRange(*o.RectalTemp, MinRectalTemp, MaxRectalTemp) {
		return invalid("rectal_temp %v out of range [%v, %v]", *o.RectalTemp, MinRectalTemp, MaxRectalTemp)
	}
	if o.Rigor != nil && (*o.Rigor < 0 || *o.Rigor > 6) {
		return invalid("rigor_mortis %d unknown: want 0-6", *o.Rigor)
	}
	if o.Livor != nil && (*o.Livor < 0 || *o.Livor > 5) {
		return invalid("livor_mortis %d unknown: want 0-5", *o.Livor)
	}
	if o.Pressure != nil && (*o.Pressure < 0 || *o.Pressure > 4) {
		return invalid("livor_pressure %d unknown: want 0-4", *o.Pressure)
	}
	if o.Humidity != nil && !inRange(*o.Humidity, 0, 100) {
		return invalid("humidity %v out of range [0, 100]", *o.Humidity)
	}
	if loc := o.Location; loc != nil {
		// Month 0 means "not given"; the humidity table then uses June.
		if loc.Month < 0 || loc.Month > 12 {
			return invalid("location.month %d out of range [0, 12]", loc.Month)
		}
		if loc.Weather != "" && !loc.Weather.Known() {
			return invalid("location.weather %q unknown", loc.Weather)
		}
	}
	return nil
}

// Known reports whether w is one of the defined weather conditions.
func (w Weather) Known() bool {
	switch w {
	case WeatherClear, WeatherOvercast, WeatherCloudy,
		WeatherLightRain, WeatherHeavyRain, WeatherLightSnow, WeatherHeavySnow:
		return true
	}
	return false
}

func inRange(v, lo, hi float64) bool { return v >= lo && v <= hi }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidObservation, fmt.Sprintf(format, args...))
}
