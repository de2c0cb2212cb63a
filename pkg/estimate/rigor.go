package estimate

import "github.com/wqlegmed/death-time-calculator/pkg/types"

// RigorInterval returns the elapsed-hours range for a rigor mortis stage.
// ok is false for a stage outside 0–6.
func RigorInterval(stage types.RigorStage) (iv types.Interval, ok bool) {
	iv, ok = rigorRanges[stage]
	return iv, ok
}
