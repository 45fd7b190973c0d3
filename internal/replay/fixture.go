package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/meridianhr/assess-engine/internal/config"
	"github.com/meridianhr/assess-engine/internal/profile"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a bank
// snapshot, a recorded response stream, and the expected outcomes.
type Fixture struct {
	Description string                     `json:"description"`
	Tier        profile.Tier               `json:"tier"`
	Config      FixtureConfig              `json:"config"`
	Items       []profile.Item             `json:"items"`
	Archetypes  []profile.ArchetypeProfile `json:"archetypes"`
	Responses   []FixtureResponse          `json:"responses"`
	Expected    FixtureExpected            `json:"expected"`
}

// FixtureResponse is one recorded answer. Answer carries the raw JSON
// value (number for scaled items, string for option keys).
type FixtureResponse struct {
	ItemID    string `json:"item_id"`
	Answer    any    `json:"answer"`
	LatencyMS int64  `json:"latency_ms"`
}

// FixtureConfig mirrors the engine knobs a fixture may pin. Zero values
// fall back to the compiled-in defaults.
type FixtureConfig struct {
	BatchSize      int     `json:"batch_size,omitempty"`
	MaxRounds      int     `json:"max_rounds,omitempty"`
	RedFlagPenalty float64 `json:"red_flag_penalty,omitempty"`
	TiebreakMargin float64 `json:"tiebreak_margin,omitempty"`
}

// FixtureExpected captures the outcomes a replay run must reproduce.
// Empty fields are not checked.
type FixtureExpected struct {
	Rounds           int    `json:"rounds,omitempty"`
	PrimaryArchetype string `json:"primary_archetype,omitempty"`
	Reliability      string `json:"reliability,omitempty"`
	NeedsTiebreak    *bool  `json:"needs_tiebreak,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.Tier == "" {
		f.Tier = profile.TierStandard
	}
	return &f, nil
}

// ToConfig overlays the fixture's pinned knobs on the defaults.
func (fc FixtureConfig) ToConfig() config.Config {
	cfg := config.Default()
	if fc.BatchSize > 0 {
		cfg.Selection.BatchSize = fc.BatchSize
	}
	if fc.MaxRounds > 0 {
		cfg.Selection.MaxRounds = fc.MaxRounds
	}
	if fc.RedFlagPenalty > 0 {
		cfg.Selection.RedFlagPenalty = fc.RedFlagPenalty
	}
	if fc.TiebreakMargin > 0 {
		cfg.Selection.TiebreakMargin = fc.TiebreakMargin
	}
	return cfg
}

// ToResponses resolves the raw fixture answers against the bank.
// Responses naming unknown items are kept; the fold skips them the same
// way a live session would.
func (f *Fixture) ToResponses() []profile.ResponseRecord {
	byID := f.ItemsByID()
	out := make([]profile.ResponseRecord, 0, len(f.Responses))
	for _, fr := range f.Responses {
		itemType := profile.ItemScaled
		if it, ok := byID[fr.ItemID]; ok {
			itemType = it.Type
		}
		out = append(out, profile.ResponseRecord{
			ItemID:    fr.ItemID,
			Answer:    profile.ResolveAnswer(itemType, fr.Answer),
			LatencyMS: fr.LatencyMS,
		})
	}
	return out
}

// ItemsByID indexes the fixture's bank snapshot.
func (f *Fixture) ItemsByID() map[string]profile.Item {
	byID := make(map[string]profile.Item, len(f.Items))
	for _, it := range f.Items {
		byID[it.ID] = it
	}
	return byID
}

// #endregion fixture-loader
