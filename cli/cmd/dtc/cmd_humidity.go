package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wqlegmed/death-time-calculator/cli/internal/render"
	"github.com/wqlegmed/death-time-calculator/pkg/estimate"
	"github.com/wqlegmed/death-time-calculator/pkg/types"
)

func newHumidityCmd() *cobra.Command {
	var (
		region  string
		month   int
		weather string
		output  string
	)

	cmd := &cobra.Command{
		Use:     "humidity",
		Short:   "Estimate ambient humidity from province, month and weather",
		Example: "  dtc humidity --region 广东 --month 7 --weather 小雨",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := render.ParseMode(output)
			if err != nil {
				return err
			}
			loc := types.Location{Region: region, Month: month}
			if weather != "" {
				w, ok := estimate.ParseWeather(weather)
				if !ok {
					return fmt.Errorf("--weather %q unknown", weather)
				}
				loc.Weather = w
			}
			value := estimate.EstimateHumidity(loc.Region, loc.Month, loc.Weather)
			return render.Humidity(cmd.OutOrStdout(), mode, loc, estimate.ClassifyRegion(region), value)
		},
	}

	f := cmd.Flags()
	f.StringVar(&region, "region", "", "province, Chinese or pinyin")
	f.IntVar(&month, "month", estimate.DefaultLocation.Month, "month 1-12")
	f.StringVar(&weather, "weather", string(estimate.DefaultLocation.Weather), "weather condition (English or Chinese label)")
	f.StringVarP(&output, "output", "o", "table", "output format: table|markdown|json")
	return cmd
}
