package replay

import (
	"fmt"
	"testing"

	"github.com/meridianhr/assess-engine/internal/config"
	"github.com/meridianhr/assess-engine/internal/profile"
	"github.com/meridianhr/assess-engine/internal/selector"
)

// #region fixtures

func replayFixture() *Fixture {
	// The recorded respondent reads as a change-driver: strong on
	// drive, influence, and adaptability, soft on resilience and
	// integrity.
	high := map[profile.Dimension]bool{
		profile.DimDrive: true, profile.DimJudgment: true,
		profile.DimInfluence: true, profile.DimAdaptability: true,
	}
	var items []profile.Item
	for i, dim := range profile.Dimensions() {
		top := 80.0
		if !high[dim] {
			top = 35.0
		}
		items = append(items, profile.Item{
			ID:      fmt.Sprintf("%s-1", dim),
			Primary: dim,
			Type:    profile.ItemScaled,
			ScaleContributions: map[string]profile.ContributionTable{
				"2": {dim: 40}, "4": {dim: top},
			},
			Difficulty: 0.4 + 0.02*float64(i),
			Tiers:      []profile.Tier{profile.TierStandard},
		})
	}
	items = append(items, profile.Item{
		ID:      "scen-1",
		Primary: profile.DimJudgment,
		Type:    profile.ItemScenario,
		Options: []profile.ItemOption{
			{Key: "a", Contributions: profile.ContributionTable{profile.DimJudgment: 85}},
		},
		Difficulty: 0.6,
		Tiers:      []profile.Tier{profile.TierStandard},
	})

	var responses []FixtureResponse
	for _, it := range items {
		if it.Type == profile.ItemScenario {
			responses = append(responses, FixtureResponse{ItemID: it.ID, Answer: "a", LatencyMS: 8000})
			continue
		}
		responses = append(responses, FixtureResponse{ItemID: it.ID, Answer: 4, LatencyMS: 4000})
	}

	return &Fixture{
		Description: "full standard-tier run",
		Tier:        profile.TierStandard,
		Items:       items,
		Archetypes: []profile.ArchetypeProfile{
			{ID: "change-driver", Targets: map[profile.Dimension]float64{
				profile.DimDrive: 80, profile.DimJudgment: 75, profile.DimInfluence: 80,
				profile.DimResilience: 40, profile.DimIntegrity: 40, profile.DimAdaptability: 80,
			}},
			{ID: "caretaker", Targets: map[profile.Dimension]float64{
				profile.DimDrive: 35, profile.DimJudgment: 50, profile.DimInfluence: 35,
				profile.DimResilience: 85, profile.DimIntegrity: 85, profile.DimAdaptability: 40,
			}},
		},
		Responses: responses,
		Expected: FixtureExpected{
			Rounds:           2,
			PrimaryArchetype: "change-driver",
		},
	}
}

// #endregion fixtures

// #region replay-tests

func TestReplayFullRun(t *testing.T) {
	f := replayFixture()
	results, summary := Replay(f, config.Default())

	// Seven items at batch size five: a seed round and a remainder.
	if len(results) != 2 {
		t.Fatalf("rounds = %d, want 2", len(results))
	}
	if results[0].Phase != selector.PhaseSeeding || results[0].Source != selector.SourceSeed {
		t.Errorf("round 1 = %+v", results[0])
	}
	if results[1].Phase != selector.PhaseAdaptive || results[1].Source != selector.SourceRemainder {
		t.Errorf("round 2 = %+v", results[1])
	}
	if summary.Answered != len(f.Responses) || summary.Unanswered != 0 {
		t.Errorf("answered = %d, unanswered = %d", summary.Answered, summary.Unanswered)
	}

	if summary.Match.PrimaryID != "change-driver" {
		t.Errorf("primary match = %q", summary.Match.PrimaryID)
	}
	if len(summary.Mismatches) != 0 {
		t.Errorf("mismatches: %v", summary.Mismatches)
	}

	for _, dim := range profile.Dimensions() {
		if summary.Profile[dim].EvidenceCount == 0 {
			t.Errorf("%s never scored", dim)
		}
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	f := replayFixture()
	first, _ := Replay(f, config.Default())
	second, _ := Replay(f, config.Default())

	if len(first) != len(second) {
		t.Fatalf("round counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if len(first[i].ItemIDs) != len(second[i].ItemIDs) {
			t.Fatalf("round %d batch sizes differ", i+1)
		}
		for j := range first[i].ItemIDs {
			if first[i].ItemIDs[j] != second[i].ItemIDs[j] {
				t.Errorf("round %d item %d: %s vs %s", i+1, j, first[i].ItemIDs[j], second[i].ItemIDs[j])
			}
		}
	}
}

func TestReplayTruncatedRecording(t *testing.T) {
	f := replayFixture()
	f.Expected = FixtureExpected{}

	// Keep only the seed batch's answers; the second round then has
	// nothing to consume and the run stops there.
	seed, _ := Replay(f, config.Default())
	seedIDs := make(map[string]bool)
	for _, id := range seed[0].ItemIDs {
		seedIDs[id] = true
	}
	var kept []FixtureResponse
	for _, r := range f.Responses {
		if seedIDs[r.ItemID] {
			kept = append(kept, r)
		}
	}
	f.Responses = kept

	results, summary := Replay(f, config.Default())
	if len(results) != 2 {
		t.Fatalf("rounds = %d, want 2", len(results))
	}
	if results[1].Answered != 0 {
		t.Fatalf("expected the run to stop on an unanswered batch, got %+v", results[1])
	}
	if summary.Answered != len(kept) {
		t.Errorf("answered = %d, want %d", summary.Answered, len(kept))
	}
}

func TestReplayReportsMismatches(t *testing.T) {
	f := replayFixture()
	f.Expected = FixtureExpected{Rounds: 9, PrimaryArchetype: "caretaker"}

	_, summary := Replay(f, config.Default())
	if len(summary.Mismatches) != 2 {
		t.Fatalf("mismatches = %v", summary.Mismatches)
	}
}

// #endregion replay-tests
