package selector

import (
	"sort"

	"github.com/meridianhr/assess-engine/internal/profile"
)

// #region fallback

// Fallback ranks the pool by information value and takes the top
// batchSize items. Information value is the item difficulty weighted by
// how uncertain its primary dimension still is: the single most
// uncertain dimension weighs 1.0, the second 0.5, all others 0.25.
func Fallback(scores profile.ScoreProfile, pool []profile.Item, batchSize int) profile.SelectionDecision {
	weights := uncertaintyWeights(scores)

	ranked := append([]profile.Item(nil), pool...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := infoValue(ranked[i], weights), infoValue(ranked[j], weights)
		if a != b {
			return a > b
		}
		return ranked[i].ID < ranked[j].ID
	})

	if len(ranked) > batchSize {
		ranked = ranked[:batchSize]
	}
	ranked = diversifyByInfo(ranked, pool, weights)
	return decision(SourceFallback, ranked, "information-value fallback")
}

// uncertaintyWeights orders dimensions by descending uncertainty and
// assigns the 1.0 / 0.5 / 0.25 weight ladder.
func uncertaintyWeights(scores profile.ScoreProfile) map[profile.Dimension]float64 {
	dims := profile.Dimensions()
	order := dims[:]
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]].Uncertainty > scores[order[j]].Uncertainty
	})

	weights := make(map[profile.Dimension]float64, len(order))
	for i, dim := range order {
		switch i {
		case 0:
			weights[dim] = 1.0
		case 1:
			weights[dim] = 0.5
		default:
			weights[dim] = 0.25
		}
	}
	return weights
}

func infoValue(it profile.Item, weights map[profile.Dimension]float64) float64 {
	w, ok := weights[it.Primary]
	if !ok {
		w = 0.25
	}
	return it.Difficulty * w
}

// diversifyByInfo breaks up an all-one-type batch by swapping its
// lowest-information member for the highest-information differently
// typed item anywhere in the pool.
func diversifyByInfo(batch, pool []profile.Item, weights map[profile.Dimension]float64) []profile.Item {
	if len(batch) == 0 {
		return batch
	}
	uniform := batch[0].Type
	for _, it := range batch[1:] {
		if it.Type != uniform {
			return batch
		}
	}

	var swap *profile.Item
	for _, it := range excluding(pool, batch) {
		if it.Type == uniform {
			continue
		}
		if swap == nil || infoValue(it, weights) > infoValue(*swap, weights) {
			it := it
			swap = &it
		}
	}
	if swap == nil {
		return batch
	}

	lowest := 0
	for i, it := range batch {
		if infoValue(it, weights) < infoValue(batch[lowest], weights) {
			lowest = i
		}
	}
	batch[lowest] = *swap
	return batch
}

// #endregion fallback
