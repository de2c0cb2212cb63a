package estimate

import "github.com/wqlegmed/death-time-calculator/pkg/types"

// Cooling correction factors. A factor > 1 slows the modelled cooling.
// Codes missing from a table fall back to 1.0.
var (
	clothingFactor = map[types.Clothing]float64{
		types.ClothingNone:   1.2,
		types.ClothingLight:  1.1,
		types.ClothingNormal: 1.0,
		types.ClothingThick:  0.9,
		types.ClothingHeavy:  0.8,
	}
	bodyTypeFactor = map[types.BodyType]float64{
		types.BodyThin:       1.2,
		types.BodyNormal:     1.0,
		types.BodyOverweight: 0.9,
		types.BodyObese:      0.8,
	}
	sexFactor = map[types.Sex]float64{
		types.SexMale:   1.0,
		types.SexFemale: 0.95,
	}
)

// Age correction applies to minors and to the elderly.
const (
	ageFactorYoungOld = 1.1
	ageMinorBelow     = 18.0
	ageElderlyAbove   = 60.0
)

// rigorRanges maps a rigor mortis stage to elapsed hours.
var rigorRanges = map[types.RigorStage]types.Interval{
	0: {Lower: 0, Upper: 3},
	1: {Lower: 2, Upper: 6},
	2: {Lower: 4, Upper: 10},
	3: {Lower: 8, Upper: 20},
	4: {Lower: 16, Upper: 36},
	5: {Lower: 24, Upper: 48},
	6: {Lower: 36, Upper: 72},
}

// livorRanges maps a livor mortis stage to elapsed hours.
var livorRanges = map[types.LivorStage]types.Interval{
	0: {Lower: 0, Upper: 0.5},
	1: {Lower: 0.5, Upper: 4},
	2: {Lower: 2, Upper: 8},
	3: {Lower: 6, Upper: 16},
	4: {Lower: 12, Upper: 36},
	5: {Lower: 24, Upper: 48},
}

// pressureRanges maps a blanching-pressure response to elapsed hours.
var pressureRanges = map[types.PressureResponse]types.Interval{
	0: {Lower: 0, Upper: 6},
	1: {Lower: 2, Upper: 10},
	2: {Lower: 6, Upper: 16},
	3: {Lower: 12, Upper: 24},
	4: {Lower: 16, Upper: 48},
}

// humidityBase is the mean relative humidity (percent) per region and month.
var humidityBase = map[Region][12]float64{
	RegionSouth:     {70, 70, 70, 80, 80, 80, 65, 65, 65, 60, 60, 60},
	RegionEast:      {65, 65, 65, 75, 75, 75, 60, 60, 60, 55, 55, 55},
	RegionNorth:     {50, 50, 50, 60, 60, 60, 45, 45, 45, 30, 30, 30},
	RegionNorthwest: {40, 40, 40, 50, 50, 50, 35, 35, 35, 25, 25, 25},
	RegionNortheast: {35, 35, 40, 50, 60, 65, 60, 55, 45, 35, 35, 35},
	RegionOther:     {55, 55, 55, 65, 65, 65, 50, 50, 50, 40, 40, 40},
}

// weatherAdjust shifts the base humidity for the weather at the scene.
var weatherAdjust = map[types.Weather]float64{
	types.WeatherClear:     -10,
	types.WeatherOvercast:  0,
	types.WeatherCloudy:    5,
	types.WeatherLightRain: 20,
	types.WeatherHeavyRain: 40,
	types.WeatherLightSnow: 15,
	types.WeatherHeavySnow: 30,
}

// weatherLabels are the Chinese weather labels accepted by ParseWeather.
var weatherLabels = map[string]types.Weather{
	"晴":  types.WeatherClear,
	"阴":  types.WeatherOvercast,
	"多云": types.WeatherCloudy,
	"小雨": types.WeatherLightRain,
	"大雨": types.WeatherHeavyRain,
	"小雪": types.WeatherLightSnow,
	"大雪": types.WeatherHeavySnow,
}

// regionProvinces lists the provinces of each region, in match order.
// Both the Chinese names and their pinyin are accepted.
var regionProvinces = []struct {
	region    Region
	provinces []string
}{
	{RegionSouth, []string{"广东", "广西", "海南", "guangdong", "guangxi", "hainan"}},
	{RegionEast, []string{"上海", "江苏", "浙江", "shanghai", "jiangsu", "zhejiang"}},
	{RegionNorth, []string{"北京", "河北", "山西", "beijing", "hebei", "shanxi"}},
	{RegionNorthwest, []string{"甘肃", "新疆", "青海", "gansu", "xinjiang", "qinghai"}},
	{RegionNortheast, []string{"黑龙江", "吉林", "辽宁", "heilongjiang", "jilin", "liaoning"}},
}

// Tables is a read-only view of the lookup tables, for callers that display
// them. Each call returns fresh copies.
type Tables struct {
	Clothing map[types.Clothing]float64                `json:"clothing_factor"`
	BodyType map[types.BodyType]float64                `json:"body_type_factor"`
	Sex      map[types.Sex]float64                     `json:"sex_factor"`
	Rigor    map[types.RigorStage]types.Interval       `json:"rigor_ranges"`
	Livor    map[types.LivorStage]types.Interval       `json:"livor_ranges"`
	Pressure map[types.PressureResponse]types.Interval `json:"pressure_ranges"`
	Humidity map[Region][12]float64                    `json:"humidity_base"`
	Weather  map[types.Weather]float64                 `json:"weather_adjust"`
}

// LookupTables returns copies of every lookup table.
func LookupTables() Tables {
	return Tables{
		Clothing: copyMap(clothingFactor),
		BodyType: copyMap(bodyTypeFactor),
		Sex:      copyMap(sexFactor),
		Rigor:    copyMap(rigorRanges),
		Livor:    copyMap(livorRanges),
		Pressure: copyMap(pressureRanges),
		Humidity: copyMap(humidityBase),
		Weather:  copyMap(weatherAdjust),
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
