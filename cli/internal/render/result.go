package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/wqlegmed/death-time-calculator/pkg/estimate"
	"github.com/wqlegmed/death-time-calculator/pkg/types"
)

// resultDoc is the JSON form of a rendered result.
type resultDoc struct {
	Result     *types.Result `json:"result"`
	Disclaimer string        `json:"disclaimer"`
}

// Result writes res in mode m, with the locale's disclaimer.
func Result(w io.Writer, m Mode, res *types.Result, locale estimate.Locale) error {
	if m == JSON {
		return writeJSON(w, resultDoc{Result: res, Disclaimer: locale.Disclaimer()})
	}

	var b strings.Builder
	if res.Insufficient {
		writeWarnings(&b, m, res.Warnings)
		b.WriteString(locale.Disclaimer() + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	ranges := NewTable(m)
	ranges.Title("Time since death")
	ranges.Header("Range", "From (h)", "To (h)")
	ranges.AlignRight(2, 3)
	ranges.Row("50%", hours(res.Range50.Lower), hours(res.Range50.Upper))
	ranges.Row("70%", hours(res.Range70.Lower), hours(res.Range70.Upper))
	ranges.Row("90%", hours(res.Range90.Lower), hours(res.Range90.Upper))
	ranges.Row("Full", hours(res.FullRange.Lower), hours(res.FullRange.Upper))
	b.WriteString(ranges.String() + "\n\n")
	fmt.Fprintf(&b, "Best estimate: %s h (humidity %.0f%%)\n\n", hours(res.BestEstimate), res.Humidity)

	ests := NewTable(m)
	ests.Title("Estimators")
	ests.Header("Estimator", "From (h)", "To (h)", "Weight", "Status")
	ests.AlignRight(2, 3, 4)
	for _, e := range res.Estimates {
		ests.Row(string(e.Kind), hours(e.Interval.Lower), hours(e.Interval.Upper),
			fmt.Sprintf("%.1f", e.Weight), status(e))
	}
	b.WriteString(ests.String() + "\n\n")

	writeWarnings(&b, m, res.Warnings)
	b.WriteString(locale.Disclaimer() + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// Humidity writes one humidity estimate.
func Humidity(w io.Writer, m Mode, loc types.Location, region estimate.Region, value float64) error {
	if m == JSON {
		return writeJSON(w, struct {
			Location types.Location  `json:"location"`
			Region   estimate.Region `json:"region"`
			Humidity float64         `json:"humidity"`
		}{loc, region, value})
	}
	t := NewTable(m)
	t.Header("Region", "Class", "Month", "Weather", "Humidity (%)")
	t.AlignRight(3, 5)
	t.Row(loc.Region, string(region), loc.Month, string(loc.Weather), fmt.Sprintf("%.0f", value))
	_, err := io.WriteString(w, t.String()+"\n")
	return err
}

// LookupTables writes every lookup table.
func LookupTables(w io.Writer, m Mode, tbl estimate.Tables) error {
	if m == JSON {
		return writeJSON(w, tbl)
	}

	var b strings.Builder

	factors := NewTable(m)
	factors.Title("Cooling correction factors")
	factors.Header("Factor", "Code", "Value")
	factors.AlignRight(2, 3)
	for _, k := range sortedKeys(tbl.Clothing) {
		factors.Row("clothing", int(k), tbl.Clothing[k])
	}
	for _, k := range sortedKeys(tbl.BodyType) {
		factors.Row("body_type", int(k), tbl.BodyType[k])
	}
	for _, k := range sortedKeys(tbl.Sex) {
		factors.Row("sex", int(k), tbl.Sex[k])
	}
	b.WriteString(factors.String() + "\n\n")

	phen := NewTable(m)
	phen.Title("Phenomenon ranges")
	phen.Header("Table", "Code", "From (h)", "To (h)")
	phen.AlignRight(2, 3, 4)
	for _, k := range sortedKeys(tbl.Rigor) {
		phen.Row("rigor_mortis", int(k), tbl.Rigor[k].Lower, tbl.Rigor[k].Upper)
	}
	for _, k := range sortedKeys(tbl.Livor) {
		phen.Row("livor_mortis", int(k), tbl.Livor[k].Lower, tbl.Livor[k].Upper)
	}
	for _, k := range sortedKeys(tbl.Pressure) {
		phen.Row("livor_pressure", int(k), tbl.Pressure[k].Lower, tbl.Pressure[k].Upper)
	}
	b.WriteString(phen.String() + "\n\n")

	hum := NewTable(m)
	hum.Title("Base humidity (%) by month")
	cols := []string{"Region"}
	for month := 1; month <= 12; month++ {
		cols = append(cols, fmt.Sprint(month))
	}
	hum.Header(cols...)
	regions := make([]string, 0, len(tbl.Humidity))
	for r := range tbl.Humidity {
		regions = append(regions, string(r))
	}
	sort.Strings(regions)
	for _, r := range regions {
		row := []any{r}
		for _, v := range tbl.Humidity[estimate.Region(r)] {
			row = append(row, v)
		}
		hum.Row(row...)
	}
	b.WriteString(hum.String() + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeWarnings(b *strings.Builder, m Mode, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	b.WriteString("Warnings:\n")
	for _, w := range warnings {
		if m == Markdown {
			b.WriteString("- " + w + "\n")
		} else {
			b.WriteString("  ! " + w + "\n")
		}
	}
	b.WriteString("\n")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func hours(v float64) string { return fmt.Sprintf("%.1f", v) }

func status(e types.Estimate) string {
	switch {
	case e.Discarded:
		return "discarded"
	case e.Fallback:
		return "fallback"
	case e.Interval.Inverted():
		return "inverted"
	default:
		return "used"
	}
}

func sortedKeys[K ~int, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
