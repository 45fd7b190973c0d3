package validity

import (
	"math"

	"github.com/meridianhr/assess-engine/internal/config"
	"github.com/meridianhr/assess-engine/internal/profile"
)

// #region analyze

// Analyze computes all validity signals from the full response history.
// It is a pure report: stateless, re-derivable at any point in the
// stream, never persisted incrementally.
func Analyze(responses []profile.ResponseRecord, itemsByID map[string]profile.Item, t config.ValidityThresholds) Signals {
	s := Signals{
		InconsistencyIndex:   inconsistencyIndex(responses, itemsByID),
		ImpressionManagement: impressionManagement(responses, itemsByID),
		FastResponsePct:      fastResponsePct(responses, t.FastLatencyFloorMS),
	}
	s.StraightLinePct, s.AcquiescenceBias, s.ExtremeResponsePct = scaledPatterns(responses, itemsByID)
	s.Reliability = verdict(s, t)
	return s
}

// #endregion analyze

// #region inconsistency

// inconsistencyIndex is the mean absolute difference, on the native
// answer scale, between paired validity items, after un-reversing any
// reverse-scored member. 0 when no complete pairs exist.
func inconsistencyIndex(responses []profile.ResponseRecord, itemsByID map[string]profile.Item) float64 {
	byPair := make(map[string][]float64)
	for _, r := range responses {
		item, ok := itemsByID[r.ItemID]
		if !ok || item.ValidityPairID == "" {
			continue
		}
		v, ok := scaledValue(r.Answer)
		if !ok {
			continue
		}
		if item.Reversed {
			v = float64(profile.ScaleMin+profile.ScaleMax) - v
		}
		byPair[item.ValidityPairID] = append(byPair[item.ValidityPairID], v)
	}

	var sum float64
	var pairs int
	for _, vals := range byPair {
		if len(vals) < 2 {
			continue
		}
		sum += math.Abs(vals[0] - vals[1])
		pairs++
	}
	if pairs == 0 {
		return 0
	}
	return sum / float64(pairs)
}

// #endregion inconsistency

// #region impression

// impressionManagement is the fraction of social-desirability probes
// answered in the top two scale positions.
func impressionManagement(responses []profile.ResponseRecord, itemsByID map[string]profile.Item) float64 {
	var probes, high int
	for _, r := range responses {
		item, ok := itemsByID[r.ItemID]
		if !ok || !item.ImpressionProbe {
			continue
		}
		v, ok := scaledValue(r.Answer)
		if !ok {
			continue
		}
		probes++
		if v >= float64(profile.ScaleMax-1) {
			high++
		}
	}
	if probes == 0 {
		return 0
	}
	return float64(high) / float64(probes)
}

// #endregion impression

// #region scaled-patterns

// scaledPatterns derives the three scaled-answer distribution ratios in
// one pass: modal-answer share, top-two agreement share, and endpoint
// share.
func scaledPatterns(responses []profile.ResponseRecord, itemsByID map[string]profile.Item) (straightLine, acquiescence, extreme float64) {
	counts := make(map[int]int)
	var total, topTwo, endpoints int
	for _, r := range responses {
		item, ok := itemsByID[r.ItemID]
		if !ok || item.Type != profile.ItemScaled {
			continue
		}
		v, ok := scaledValue(r.Answer)
		if !ok {
			continue
		}
		n := int(v)
		counts[n]++
		total++
		if n >= profile.ScaleMax-1 {
			topTwo++
		}
		if n == profile.ScaleMin || n == profile.ScaleMax {
			endpoints++
		}
	}
	if total == 0 {
		return 0, 0, 0
	}

	modal := 0
	for _, c := range counts {
		if c > modal {
			modal = c
		}
	}
	return float64(modal) / float64(total), float64(topTwo) / float64(total), float64(endpoints) / float64(total)
}

// #endregion scaled-patterns

// #region latency

// fastResponsePct is the fraction of all answers completed under the
// latency floor.
func fastResponsePct(responses []profile.ResponseRecord, floorMS int64) float64 {
	if len(responses) == 0 {
		return 0
	}
	var fast int
	for _, r := range responses {
		if r.LatencyMS < floorMS {
			fast++
		}
	}
	return float64(fast) / float64(len(responses))
}

// #endregion latency

// #region verdict

// verdict derives the three-level reliability call. Any single index
// past its high threshold forces "low"; all below their low thresholds
// yields "high"; everything else is "medium".
func verdict(s Signals, t config.ValidityThresholds) Verdict {
	if s.InconsistencyIndex > t.InconsistencyHigh ||
		s.ImpressionManagement > t.ImpressionHigh ||
		s.StraightLinePct > t.StraightLineHigh ||
		s.AcquiescenceBias > t.AcquiescenceHigh ||
		s.ExtremeResponsePct > t.ExtremeHigh {
		return ReliabilityLow
	}
	if s.InconsistencyIndex < t.InconsistencyLow &&
		s.ImpressionManagement < t.ImpressionLow &&
		s.StraightLinePct < t.StraightLineLow &&
		s.AcquiescenceBias < t.AcquiescenceLow &&
		s.ExtremeResponsePct < t.ExtremeLow {
		return ReliabilityHigh
	}
	return ReliabilityMedium
}

// #endregion verdict

// #region helpers

func scaledValue(a profile.Answer) (float64, bool) {
	v, ok := a.(profile.ScaledAnswer)
	if !ok {
		return 0, false
	}
	return float64(v), true
}

// #endregion helpers
