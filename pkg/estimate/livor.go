package estimate

import (
	"math"

	"github.com/wqlegmed/death-time-calculator/pkg/types"
)

// LivorInterval intersects the range for the livor mortis stage with the range
// for its blanching response. ok is false when either code is unknown.
//
// The intersection is returned as-is even when it is empty (Lower > Upper);
// such an inverted interval still takes part in cross-validation and fusion.
func LivorInterval(stage types.LivorStage, pressure types.PressureResponse) (types.Interval, bool) {
	s, ok := livorRanges[stage]
	if !ok {
		return types.Interval{}, false
	}
	p, ok := pressureRanges[pressure]
	if !ok {
		return types.Interval{}, false
	}
	return types.Interval{
		Lower: math.Max(s.Lower, p.Lower),
		Upper: math.Min(s.Upper, p.Upper),
	}, true
}
