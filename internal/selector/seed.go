package selector

import (
	"sort"

	"github.com/google/uuid"

	"github.com/meridianhr/assess-engine/internal/profile"
)

// #region seed

// Seed picks the first batch deterministically, before any evidence
// exists: the easiest item per dimension, trimmed to batchSize by
// deferring the dimension with the most alternatives left, with type
// diversity guaranteed and the batch sorted easiest-first.
func Seed(pool []profile.Item, batchSize int) profile.SelectionDecision {
	if len(pool) <= batchSize {
		out := append([]profile.Item(nil), pool...)
		sortByDifficulty(out)
		return decision(SourceSeed, out, "full eligible pool")
	}

	byDim := make(map[profile.Dimension][]profile.Item)
	for _, it := range pool {
		byDim[it.Primary] = append(byDim[it.Primary], it)
	}

	var picked []profile.Item
	for _, dim := range profile.Dimensions() {
		items := byDim[dim]
		if len(items) == 0 {
			continue
		}
		picked = append(picked, easiest(items))
	}

	// More candidates than the batch holds: defer the dimension that
	// loses the least by waiting, the one with the largest remaining
	// pool of alternatives.
	for len(picked) > batchSize {
		drop, largest := -1, -1
		for i, it := range picked {
			if n := len(byDim[it.Primary]); n > largest {
				drop, largest = i, n
			}
		}
		picked = append(picked[:drop], picked[drop+1:]...)
	}

	// Fewer dimensions than the batch needs: top up with the easiest
	// unpicked items regardless of dimension.
	if len(picked) < batchSize {
		rest := excluding(pool, picked)
		sortByDifficulty(rest)
		picked = append(picked, rest[:batchSize-len(picked)]...)
	}

	picked = ensureTypeDiversity(picked, pool)
	sortByDifficulty(picked)
	return decision(SourceSeed, picked, "deterministic seed: easiest item per dimension")
}

// ensureTypeDiversity swaps the hardest item of an all-scaled batch for
// the easiest option-type item not yet selected. No-op when the pool has
// no option-type item to offer.
func ensureTypeDiversity(batch, pool []profile.Item) []profile.Item {
	for _, it := range batch {
		if it.Type != profile.ItemScaled {
			return batch
		}
	}

	var candidates []profile.Item
	for _, it := range excluding(pool, batch) {
		if it.Type != profile.ItemScaled {
			candidates = append(candidates, it)
		}
	}
	if len(candidates) == 0 {
		return batch
	}

	hardest := 0
	for i, it := range batch {
		if it.Difficulty > batch[hardest].Difficulty {
			hardest = i
		}
	}
	batch[hardest] = easiest(candidates)
	return batch
}

// #endregion seed

// #region helpers

func easiest(items []profile.Item) profile.Item {
	best := items[0]
	for _, it := range items[1:] {
		if it.Difficulty < best.Difficulty || (it.Difficulty == best.Difficulty && it.ID < best.ID) {
			best = it
		}
	}
	return best
}

func excluding(pool, taken []profile.Item) []profile.Item {
	skip := make(map[string]bool, len(taken))
	for _, it := range taken {
		skip[it.ID] = true
	}
	var out []profile.Item
	for _, it := range pool {
		if !skip[it.ID] {
			out = append(out, it)
		}
	}
	return out
}

func sortByDifficulty(items []profile.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Difficulty != items[j].Difficulty {
			return items[i].Difficulty < items[j].Difficulty
		}
		return items[i].ID < items[j].ID
	})
}

func decision(source string, items []profile.Item, rationale string) profile.SelectionDecision {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return profile.SelectionDecision{
		DecisionID: uuid.NewString(),
		ItemIDs:    ids,
		Rationale:  rationale,
		Source:     source,
	}
}

// #endregion helpers
