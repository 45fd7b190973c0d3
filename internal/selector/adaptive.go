package selector

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/meridianhr/assess-engine/internal/profile"
	"github.com/meridianhr/assess-engine/internal/reasoning"
	"github.com/meridianhr/assess-engine/internal/validity"
)

// #region selector

// Selector chooses each adaptive round's batch. It prefers the
// reasoning collaborator but every call site gets a fully specified
// batch either way: anything short of a valid reasoning response
// collapses into the deterministic fallback here, never upstream.
type Selector struct {
	planner *reasoning.Planner
	batch   int
}

// New builds a selector. planner may be nil, in which case every
// adaptive round uses the deterministic fallback.
func New(planner *reasoning.Planner, batchSize int) *Selector {
	return &Selector{planner: planner, batch: batchSize}
}

// BatchSize reports the configured batch size.
func (s *Selector) BatchSize() int { return s.batch }

// SeedBatch issues the deterministic first round.
func (s *Selector) SeedBatch(pool []profile.Item) profile.SelectionDecision {
	return Seed(pool, s.batch)
}

// NextBatch chooses one adaptive round's items from the eligible,
// not-yet-answered pool.
func (s *Selector) NextBatch(
	ctx context.Context,
	scores profile.ScoreProfile,
	answered []string,
	pool []profile.Item,
	round, roundsRemaining int,
	signals validity.Signals,
) profile.SelectionDecision {
	if len(pool) <= s.batch {
		// Nothing to choose between.
		remainder := append([]profile.Item(nil), pool...)
		sortByDifficulty(remainder)
		return decision(SourceRemainder, remainder, "pool at or below batch size")
	}

	if s.planner == nil {
		return Fallback(scores, pool, s.batch)
	}

	req := buildRequest(scores, answered, pool, round, roundsRemaining, signals, s.batch)
	res := s.planner.PlanSelection(ctx, req)
	if res.Status != reasoning.StatusOK {
		log.Printf("[SELECT] round %d: reasoning %s (%s), using fallback", round, res.Status, res.Detail)
		return Fallback(scores, pool, s.batch)
	}

	return profile.SelectionDecision{
		DecisionID: uuid.NewString(),
		ItemIDs:    res.SelectedIDs,
		Rationale:  res.Rationale,
		Source:     SourceReasoning,
	}
}

func buildRequest(
	scores profile.ScoreProfile,
	answered []string,
	pool []profile.Item,
	round, roundsRemaining int,
	signals validity.Signals,
	batchSize int,
) reasoning.SelectionRequest {
	summaries := make(map[profile.Dimension]reasoning.DimensionSummary, len(scores))
	for dim, belief := range scores {
		summaries[dim] = reasoning.DimensionSummary{
			Score:         belief.Score,
			Confidence:    belief.Confidence,
			Uncertainty:   belief.Uncertainty,
			EvidenceCount: belief.EvidenceCount,
		}
	}

	poolSummary := make([]reasoning.PoolItem, len(pool))
	for i, it := range pool {
		poolSummary[i] = reasoning.PoolItem{
			ID:         it.ID,
			Primary:    it.Primary,
			Secondary:  it.Secondary,
			Type:       it.Type,
			Difficulty: it.Difficulty,
		}
	}

	return reasoning.SelectionRequest{
		Scores:          summaries,
		AnsweredIDs:     answered,
		Pool:            poolSummary,
		Round:           round,
		RoundsRemaining: roundsRemaining,
		Validity:        signals,
		BatchSize:       batchSize,
	}
}

// #endregion selector
