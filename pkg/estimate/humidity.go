package estimate

import (
	"strings"

	"github.com/wqlegmed/death-time-calculator/pkg/types"
)

// Region is a climate region used for the humidity base table.
type Region string

const (
	RegionSouth     Region = "south"
	RegionEast      Region = "east"
	RegionNorth     Region = "north"
	RegionNorthwest Region = "northwest"
	RegionNortheast Region = "northeast"
	RegionOther     Region = "other"
)

// DefaultLocation is the humidity context used when the caller supplies none:
// an unmatched region in June under an overcast sky.
var DefaultLocation = types.Location{Region: "", Month: 6, Weather: types.WeatherOvercast}

// ClassifyRegion maps free region text to a Region by substring match against
// each region's province names. The first region with a match wins; text
// matching nothing is RegionOther.
func ClassifyRegion(text string) Region {
	lower := strings.ToLower(text)
	for _, rp := range regionProvinces {
		for _, p := range rp.provinces {
			if strings.Contains(lower, p) {
				return rp.region
			}
		}
	}
	return RegionOther
}

// ParseWeather accepts an English condition name ("light-rain", "Light Rain",
// "light_rain") or one of the Chinese labels (晴, 阴, 多云, 小雨, 大雨, 小雪, 大雪).
func ParseWeather(s string) (types.Weather, bool) {
	s = strings.TrimSpace(s)
	if w, ok := weatherLabels[s]; ok {
		return w, true
	}
	norm := strings.NewReplacer(" ", "-", "_", "-").Replace(strings.ToLower(s))
	w := types.Weather(norm)
	return w, w.Known()
}

// EstimateHumidity returns the relative humidity (percent, 0–100) for a region,
// month (1–12) and weather condition. Unknown weather adds nothing; a month
// outside 1–12 is read as DefaultLocation.Month.
func EstimateHumidity(region string, month int, weather types.Weather) float64 {
	if month < 1 || month > 12 {
		month = DefaultLocation.Month
	}
	base := humidityBase[ClassifyRegion(region)][month-1]
	return clamp(base+weatherAdjust[weather], 0, 100)
}

// clamp restricts v to the range [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
