package replay

import (
	"fmt"

	"github.com/meridianhr/assess-engine/internal/archetype"
	"github.com/meridianhr/assess-engine/internal/config"
	"github.com/meridianhr/assess-engine/internal/fusion"
	"github.com/meridianhr/assess-engine/internal/profile"
	"github.com/meridianhr/assess-engine/internal/selector"
	"github.com/meridianhr/assess-engine/internal/validity"
)

// #region types

// RoundResult captures one replayed selection round.
type RoundResult struct {
	Round    int
	Phase    selector.Phase
	Source   string
	ItemIDs  []string
	Answered int
	Skipped  []string
}

// Summary aggregates a full replay run.
type Summary struct {
	TotalRounds int
	Answered    int
	Unanswered  int
	Profile     profile.ScoreProfile
	Validity    validity.Signals
	Match       profile.MatchResult
	Mismatches  []string
}

// #endregion types

// #region replay

// Replay re-runs a recorded assessment entirely in memory, using only
// the deterministic selection paths so the run is reproducible. Each
// round issues a batch against the remaining pool, consumes the
// recorded answers for it, and folds them into the belief state.
func Replay(f *Fixture, cfg config.Config) ([]RoundResult, Summary) {
	byID := f.ItemsByID()
	responses := make(map[string]profile.ResponseRecord, len(f.Responses))
	for _, rec := range f.ToResponses() {
		responses[rec.ItemID] = rec
	}

	scores := fusion.Initialize()
	sel := selector.New(nil, cfg.Selection.BatchSize)
	var history []profile.ResponseRecord
	answered := make(map[string]bool)

	var results []RoundResult
	phase := selector.PhaseSeeding
	round := 0
	for round < cfg.Selection.MaxRounds {
		var pool []profile.Item
		for _, it := range f.Items {
			if it.EligibleFor(f.Tier) && !answered[it.ID] {
				pool = append(pool, it)
			}
		}
		if len(pool) == 0 {
			break
		}
		round++

		var dec profile.SelectionDecision
		if phase == selector.PhaseSeeding {
			dec = sel.SeedBatch(pool)
		} else {
			dec = selector.Fallback(scores, pool, cfg.Selection.BatchSize)
			if len(pool) <= cfg.Selection.BatchSize {
				dec.Source = selector.SourceRemainder
			}
		}

		result := RoundResult{Round: round, Phase: phase, Source: dec.Source, ItemIDs: dec.ItemIDs}
		var batch []profile.ResponseRecord
		for _, id := range dec.ItemIDs {
			answered[id] = true
			rec, ok := responses[id]
			if !ok {
				continue
			}
			batch = append(batch, rec)
		}
		result.Answered = len(batch)

		scores, result.Skipped = fusion.Fold(byID, batch, scores)
		history = append(history, batch...)
		results = append(results, result)
		phase = selector.PhaseAdaptive

		// The recording ended mid-assessment: no point selecting
		// batches nobody answered.
		if len(batch) == 0 {
			break
		}
	}

	return results, summarize(f, cfg, results, scores, history, byID)
}

func summarize(
	f *Fixture,
	cfg config.Config,
	results []RoundResult,
	scores profile.ScoreProfile,
	history []profile.ResponseRecord,
	byID map[string]profile.Item,
) Summary {
	s := Summary{
		TotalRounds: len(results),
		Answered:    len(history),
		Unanswered:  len(f.Responses) - len(history),
		Profile:     scores,
		Validity:    validity.Analyze(history, byID, cfg.Validity),
	}

	match, err := archetype.Match(scores, f.Archetypes, archetype.MatcherConfig{
		RedFlagPenalty: cfg.Selection.RedFlagPenalty,
		TiebreakMargin: cfg.Selection.TiebreakMargin,
	})
	if err == nil {
		s.Match = match
	}

	s.Mismatches = checkExpectations(f.Expected, s)
	return s
}

// checkExpectations compares a run against the fixture's recorded
// outcomes. Only populated expectations are checked.
func checkExpectations(want FixtureExpected, got Summary) []string {
	var mismatches []string
	if want.Rounds > 0 && got.TotalRounds != want.Rounds {
		mismatches = append(mismatches, mismatch("rounds", want.Rounds, got.TotalRounds))
	}
	if want.PrimaryArchetype != "" && got.Match.PrimaryID != want.PrimaryArchetype {
		mismatches = append(mismatches, mismatch("primary archetype", want.PrimaryArchetype, got.Match.PrimaryID))
	}
	if want.Reliability != "" && string(got.Validity.Reliability) != want.Reliability {
		mismatches = append(mismatches, mismatch("reliability", want.Reliability, got.Validity.Reliability))
	}
	if want.NeedsTiebreak != nil && got.Match.NeedsTiebreak != *want.NeedsTiebreak {
		mismatches = append(mismatches, mismatch("needs tiebreak", *want.NeedsTiebreak, got.Match.NeedsTiebreak))
	}
	return mismatches
}

func mismatch(field string, want, got any) string {
	return fmt.Sprintf("%s: expected %v, got %v", field, want, got)
}

// #endregion replay
