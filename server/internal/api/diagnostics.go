package api

import (
	"fmt"
	"math"
	"slices"

	"github.com/wqlegmed/death-time-calculator/pkg/estimate"
	"github.com/wqlegmed/death-time-calculator/pkg/types"
)

// DiagnosticHint is one human-readable note about how a result was reached.
// Clients show these next to the ranges; Detail explains the hint in plain
// English.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier (used for dedup/ordering).
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical"
	Level string `json:"level"`
	// Title is a short label (≤ 5 words).
	Title string `json:"title"`
	// Detail is the full explanation.
	Detail string `json:"detail"`
	// Value is an optional numeric value associated with this hint (e.g. hours apart).
	Value *float64 `json:"value,omitempty"`
}

var levelRank = map[string]int{"critical": 0, "warning": 1, "info": 2, "ok": 3}

// computeDiagnostics derives hints from a result.
// Diagnostics are ordered: critical first, then warnings, then info.
func computeDiagnostics(res *types.Result) []DiagnosticHint {
	var hints []DiagnosticHint

	// ── Nothing to estimate from ─────────────────────────────────────────────
	if res.Insufficient {
		hints = append(hints, DiagnosticHint{
			Key:   "no_phenomena",
			Level: "critical",
			Title: "No phenomena observed",
			Detail: "No estimator could run. Record at least one of: rectal temperature, " +
				"a rigor mortis stage, or a livor mortis stage together with its " +
				"blanching response to finger pressure. Livor mortis without the " +
				"pressure response is not used.",
		})
		return hints
	}

	temp, hasTemp := res.Estimate(types.KindTemperature)

	// ── Cooling curve had no root ────────────────────────────────────────────
	if res.Fallback {
		hints = append(hints, DiagnosticHint{
			Key:   "cooling_fallback",
			Level: "warning",
			Title: "Cooling fit failed",
			Detail: fmt.Sprintf(
				"The rectal temperature could not be matched to the cooling curve within "+
					"%.0f hours, so the temperature estimate fell back to a fixed %.0f-%.0f h "+
					"window. This usually means the body is already close to ambient "+
					"temperature. The fallback window is not used to check the other "+
					"estimators.",
				120.0, estimate.FallbackInterval.Lower, estimate.FallbackInterval.Upper,
			),
		})
	}

	// ── Small temperature differential ───────────────────────────────────────
	if slices.Contains(res.WarningCodes, string(estimate.WarnSmallDifferential)) {
		hints = append(hints, DiagnosticHint{
			Key:   "small_differential",
			Level: "warning",
			Title: "Body near ambient",
			Detail: fmt.Sprintf(
				"Body and ambient temperatures differ by less than %.0f °C. Cooling has "+
					"nearly run its course, so the temperature estimate gets a wider "+
					"uncertainty band and a lower fusion weight.",
				estimate.SmallDifferential,
			),
		})
	}

	// ── Estimators dropped by cross-validation ───────────────────────────────
	for _, e := range res.Estimates {
		if !e.Discarded {
			continue
		}
		var v *float64
		detail := fmt.Sprintf(
			"The %s estimate was left out of the final ranges because it disagreed "+
				"with the temperature estimate by more than %.0f hours. When one "+
				"phenomenon disagrees, all non-temperature estimators are dropped and "+
				"the temperature result is preferred. Re-check how the %s was scored.",
			e.Kind, estimate.CrossValidationThreshold, e.Kind,
		)
		if hasTemp {
			gap := math.Abs(e.Interval.Midpoint() - temp.Interval.Midpoint())
			v = &gap
		}
		hints = append(hints, DiagnosticHint{
			Key:    "discarded_" + string(e.Kind),
			Level:  "warning",
			Title:  fmt.Sprintf("%s discarded", title(string(e.Kind))),
			Detail: detail,
			Value:  v,
		})
	}

	// ── Livor stage and pressure response contradict each other ──────────────
	if livor, ok := res.Estimate(types.KindLivor); ok && livor.Interval.Inverted() {
		gap := livor.Interval.Lower - livor.Interval.Upper
		hints = append(hints, DiagnosticHint{
			Key:   "livor_inverted",
			Level: "warning",
			Title: "Livor findings conflict",
			Detail: fmt.Sprintf(
				"The livor mortis stage and the pressure response point to windows that "+
					"do not overlap (they miss each other by %.1f h). The livor interval "+
					"was kept as recorded, but one of the two findings is probably wrong.",
				gap,
			),
			Value: &gap,
		})
	}

	// ── Only one estimator contributed ───────────────────────────────────────
	var used int
	for _, e := range res.Estimates {
		if !e.Discarded {
			used++
		}
	}
	if used == 1 {
		hints = append(hints, DiagnosticHint{
			Key:   "single_estimator",
			Level: "info",
			Title: "Single estimator",
			Detail: "The ranges rest on one estimator only, so there was nothing to " +
				"cross-check it against. Adding another phenomenon narrows the " +
				"ranges and catches scoring mistakes.",
		})
	}

	// ── All clear ─────────────────────────────────────────────────────────────
	if len(hints) == 0 {
		best := res.BestEstimate
		hints = append(hints, DiagnosticHint{
			Key:   "consistent",
			Level: "ok",
			Title: "Estimators agree",
			Detail: fmt.Sprintf(
				"All %d estimators agree and contributed to the ranges. "+
					"The best estimate is %.1f hours since death.",
				used, best,
			),
			Value: &best,
		})
	}

	slices.SortStableFunc(hints, func(a, b DiagnosticHint) int {
		return levelRank[a.Level] - levelRank[b.Level]
	})
	return hints
}

// title upper-cases the first ASCII letter of s.
func title(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
