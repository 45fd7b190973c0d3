package norms

import (
	"sort"

	"github.com/meridianhr/assess-engine/internal/bank"
	"github.com/meridianhr/assess-engine/internal/profile"
)

// #region table

// Table converts raw dimension scores into population percentiles by
// linear interpolation between calibration points. Scores outside the
// calibrated range clamp to the outermost point.
type Table struct {
	curves map[profile.Dimension][]bank.NormPoint
}

// NewTable builds a lookup table from calibration points, sorting each
// dimension's curve by ascending raw score.
func NewTable(points []bank.NormPoint) *Table {
	curves := make(map[profile.Dimension][]bank.NormPoint)
	for _, p := range points {
		curves[p.Dimension] = append(curves[p.Dimension], p)
	}
	for dim := range curves {
		curve := curves[dim]
		sort.SliceStable(curve, func(i, j int) bool {
			return curve[i].RawScore < curve[j].RawScore
		})
	}
	return &Table{curves: curves}
}

// Percentile maps one raw score to its percentile. Dimensions without
// calibration data report ok=false instead of a fabricated number.
func (t *Table) Percentile(dim profile.Dimension, raw float64) (float64, bool) {
	curve := t.curves[dim]
	if len(curve) == 0 {
		return 0, false
	}
	if raw <= curve[0].RawScore {
		return curve[0].Percentile, true
	}
	last := curve[len(curve)-1]
	if raw >= last.RawScore {
		return last.Percentile, true
	}

	for i := 1; i < len(curve); i++ {
		lo, hi := curve[i-1], curve[i]
		if raw > hi.RawScore {
			continue
		}
		if hi.RawScore == lo.RawScore {
			return hi.Percentile, true
		}
		frac := (raw - lo.RawScore) / (hi.RawScore - lo.RawScore)
		return lo.Percentile + frac*(hi.Percentile-lo.Percentile), true
	}
	return last.Percentile, true
}

// Percentiles maps a full profile. Dimensions without calibration data
// are omitted from the result.
func (t *Table) Percentiles(p profile.ScoreProfile) map[profile.Dimension]float64 {
	out := make(map[profile.Dimension]float64, len(p))
	for dim, belief := range p {
		if pct, ok := t.Percentile(dim, belief.Score); ok {
			out[dim] = pct
		}
	}
	return out
}

// #endregion table
