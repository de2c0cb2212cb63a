package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wqlegmed/death-time-calculator/cli/internal/casefile"
	"github.com/wqlegmed/death-time-calculator/cli/internal/render"
	"github.com/wqlegmed/death-time-calculator/pkg/estimate"
	"github.com/wqlegmed/death-time-calculator/pkg/types"
)

type estimateFlags struct {
	casePath string
	watch    bool
	output   string

	locale        string
	decay         string
	fixedLocation bool

	height   float64
	bodyType int
	sex      int
	age      float64
	envTemp  float64
	clothing int

	rectalTemp float64
	rigor      int
	livor      int
	pressure   int

	region   string
	month    int
	weather  string
	humidity float64
}

func newEstimateCmd() *cobra.Command {
	var fl estimateFlags

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate hours since death for one case",
		Long: "Estimate hours since death from flags or from a YAML case file.\n\n" +
			"At least one phenomenon is needed: --rectal-temp, --rigor, or\n" +
			"--livor together with --pressure.",
		Example: "  dtc estimate --height 170 --body-type 2 --age 30 --env-temp 20 --clothing 3 --rectal-temp 30\n" +
			"  dtc estimate --case case.yaml --output markdown\n" +
			"  dtc estimate --case case.yaml --watch",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEstimate(cmd, &fl)
		},
	}

	f := cmd.Flags()
	f.StringVar(&fl.casePath, "case", "", "YAML case file; flags below override its options")
	f.BoolVar(&fl.watch, "watch", false, "re-run whenever the case file changes (needs --case)")
	f.StringVarP(&fl.output, "output", "o", "table", "output format: table|markdown|json")

	f.StringVar(&fl.locale, "locale", "en", "warning language: en|zh")
	f.StringVar(&fl.decay, "decay", "continuous", "phase-2 cooling curve: continuous|literal")
	f.BoolVar(&fl.fixedLocation, "fixed-location", false, "ignore location and humidity, use the default humidity context")

	f.Float64Var(&fl.height, "height", 0, "body height in cm (140-200)")
	f.IntVar(&fl.bodyType, "body-type", 0, "1 thin | 2 normal | 3 overweight | 4 obese")
	f.IntVar(&fl.sex, "sex", int(types.SexMale), "1 male | 2 female")
	f.Float64Var(&fl.age, "age", 0, "age in years (10-90)")
	f.Float64Var(&fl.envTemp, "env-temp", 0, "ambient temperature in °C (-30-40)")
	f.IntVar(&fl.clothing, "clothing", 0, "1 almost none | 2 light | 3 normal | 4 thick | 5 very heavy")

	f.Float64Var(&fl.rectalTemp, "rectal-temp", 0, "rectal temperature in °C (0-40)")
	f.IntVar(&fl.rigor, "rigor", 0, "rigor mortis stage (0-6)")
	f.IntVar(&fl.livor, "livor", 0, "livor mortis stage (0-5)")
	f.IntVar(&fl.pressure, "pressure", 0, "livor blanching response to pressure (0-4)")

	f.StringVar(&fl.region, "region", "", "province, Chinese or pinyin (humidity)")
	f.IntVar(&fl.month, "month", 0, "month 1-12 (humidity)")
	f.StringVar(&fl.weather, "weather", "", "clear|overcast|cloudy|light-rain|heavy-rain|light-snow|heavy-snow or 晴/阴/多云/小雨/大雨/小雪/大雪")
	f.Float64Var(&fl.humidity, "humidity", 0, "relative humidity in percent; overrides the location estimate")

	return cmd
}

func runEstimate(cmd *cobra.Command, fl *estimateFlags) error {
	mode, err := render.ParseMode(fl.output)
	if err != nil {
		return err
	}
	if fl.watch && fl.casePath == "" {
		return errors.New("--watch needs --case")
	}

	out := cmd.OutOrStdout()

	if fl.casePath == "" {
		obs, err := observationFromFlags(cmd, fl)
		if err != nil {
			return err
		}
		opts, err := engineOptions(cmd, fl, casefile.Options{})
		if err != nil {
			return err
		}
		return estimateOnce(out, mode, obs, opts)
	}

	file, err := casefile.Load(fl.casePath)
	if err != nil {
		return err
	}
	if err := estimateCase(cmd, out, mode, fl, file); err != nil {
		return err
	}
	if !fl.watch {
		return nil
	}

	return casefile.Watch(cmd.Context(), fl.casePath, func(file *casefile.File) {
		fmt.Fprintf(out, "\n--- %s changed ---\n\n", fl.casePath)
		if err := estimateCase(cmd, out, mode, fl, file); err != nil {
			slog.Error("estimate: re-run failed", "path", fl.casePath, "err", err)
		}
	})
}

func estimateCase(cmd *cobra.Command, out io.Writer, mode render.Mode, fl *estimateFlags, file *casefile.File) error {
	opts, err := engineOptions(cmd, fl, file.Options)
	if err != nil {
		return err
	}
	return estimateOnce(out, mode, file.Case, opts)
}

func estimateOnce(out io.Writer, mode render.Mode, obs types.Observation, opts estimate.Options) error {
	res, err := estimate.NewEngine(opts).Infer(obs)
	if err != nil {
		slog.Error("estimate: inference failed", "err", err)
		return errors.New("computation failed, check the input values")
	}
	return render.Result(out, mode, res, opts.Locale)
}

// engineOptions starts from the case file options and applies any option
// flag set on the command line.
func engineOptions(cmd *cobra.Command, fl *estimateFlags, base casefile.Options) (estimate.Options, error) {
	changed := cmd.Flags().Changed
	if changed("locale") || base.Locale == "" {
		base.Locale = fl.locale
	}
	if changed("decay") || base.DecayForm == "" {
		base.DecayForm = fl.decay
	}
	if changed("fixed-location") {
		base.FixedLocation = fl.fixedLocation
	}
	return base.Engine()
}

// observationFromFlags builds and validates an observation. Optional fields
// are set only when their flag was given.
func observationFromFlags(cmd *cobra.Command, fl *estimateFlags) (types.Observation, error) {
	changed := cmd.Flags().Changed
	obs := types.Observation{
		Height:   fl.height,
		BodyType: types.BodyType(fl.bodyType),
		Sex:      types.Sex(fl.sex),
		Age:      fl.age,
		EnvTemp:  fl.envTemp,
		Clothing: types.Clothing(fl.clothing),
	}
	if changed("rectal-temp") {
		obs.RectalTemp = types.Ptr(fl.rectalTemp)
	}
	if changed("rigor") {
		obs.Rigor = types.Ptr(types.RigorStage(fl.rigor))
	}
	if changed("livor") {
		obs.Livor = types.Ptr(types.LivorStage(fl.livor))
	}
	if changed("pressure") {
		obs.Pressure = types.Ptr(types.PressureResponse(fl.pressure))
	}
	if changed("humidity") {
		obs.Humidity = types.Ptr(fl.humidity)
	}
	if changed("region") || changed("month") || changed("weather") {
		loc := types.Location{Region: fl.region, Month: fl.month, Weather: types.Weather(fl.weather)}
		if loc.Month == 0 {
			loc.Month = estimate.DefaultLocation.Month
		}
		if fl.weather != "" {
			w, ok := estimate.ParseWeather(fl.weather)
			if !ok {
				return types.Observation{}, fmt.Errorf("--weather %q unknown", fl.weather)
			}
			loc.Weather = w
		}
		obs.Location = &loc
	}
	if err := obs.Validate(); err != nil {
		return types.Observation{}, err
	}
	return obs, nil
}
