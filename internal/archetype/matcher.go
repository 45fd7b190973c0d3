package archetype

import (
	"errors"
	"math"
	"sort"

	"github.com/meridianhr/assess-engine/internal/profile"
)

// ErrEmptyCatalogue is returned when Match is called without archetypes.
// An empty catalogue is a caller contract violation, not a condition the
// matcher recovers from.
var ErrEmptyCatalogue = errors.New("archetype catalogue is empty")

// #region vectorize

// Vectorize builds the fixed six-element vector, in canonical dimension
// order, from a sparse target map. Missing dimensions read as 0.
func Vectorize(targets map[profile.Dimension]float64) profile.Vector {
	var v profile.Vector
	for d, score := range targets {
		if i := profile.DimensionIndex(d); i >= 0 {
			v[i] = score
		}
	}
	return v
}

// profileVectors extracts the score vector and the parallel
// confidence-weight vector from a belief state.
func profileVectors(p profile.ScoreProfile) (scores, weights profile.Vector) {
	for i, d := range profile.Dimensions() {
		b := p[d]
		scores[i] = b.Score
		weights[i] = b.Confidence
	}
	return scores, weights
}

// #endregion vectorize

// #region weighted-cosine

// WeightedCosine computes cosine similarity on element-wise-weighted
// copies of a and b. Returns 0 when either weighted vector has zero
// magnitude; it never divides by zero.
func WeightedCosine(a, b, weights profile.Vector) float64 {
	var dot, normA, normB float64
	for i := range a {
		wa := a[i] * weights[i]
		wb := b[i] * weights[i]
		dot += wa * wb
		normA += wa * wa
		normB += wb * wb
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// #endregion weighted-cosine

// #region match

// Match ranks the catalogue against the belief state. Dimensions the
// engine is unsure about influence the match less because each
// coordinate is weighted by its confidence. Red-flag violations subtract
// cfg.RedFlagPenalty each, stacking, floored at 0.
func Match(p profile.ScoreProfile, archetypes []profile.ArchetypeProfile, cfg MatcherConfig) (profile.MatchResult, error) {
	if len(archetypes) == 0 {
		return profile.MatchResult{}, ErrEmptyCatalogue
	}

	scores, weights := profileVectors(p)

	type ranked struct {
		id  string
		sim float64
	}
	rankedList := make([]ranked, 0, len(archetypes))
	similarity := make(map[string]float64, len(archetypes))

	for _, a := range archetypes {
		sim := WeightedCosine(scores, Vectorize(a.Targets), weights)
		sim -= float64(redFlagViolations(p, a)) * cfg.RedFlagPenalty
		if sim < 0 {
			sim = 0
		}
		rankedList = append(rankedList, ranked{id: a.ID, sim: sim})
		similarity[a.ID] = sim
	}

	// Stable on ties: catalogue order breaks them.
	sort.SliceStable(rankedList, func(i, j int) bool {
		return rankedList[i].sim > rankedList[j].sim
	})

	result := profile.MatchResult{
		PrimaryID:   rankedList[0].id,
		SecondaryID: rankedList[0].id,
		Similarity:  similarity,
	}
	if len(rankedList) > 1 {
		result.SecondaryID = rankedList[1].id
		result.NeedsTiebreak = rankedList[0].sim-rankedList[1].sim <= cfg.TiebreakMargin
	}
	return result, nil
}

// redFlagViolations counts the configured thresholds the actual scores
// violate.
func redFlagViolations(p profile.ScoreProfile, a profile.ArchetypeProfile) int {
	violations := 0
	for d, rng := range a.RedFlags {
		b, ok := p[d]
		if !ok {
			continue
		}
		if rng.Below != nil && b.Score < *rng.Below {
			violations++
		}
		if rng.Above != nil && b.Score > *rng.Above {
			violations++
		}
	}
	return violations
}

// #endregion match
