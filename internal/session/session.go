package session

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/meridianhr/assess-engine/internal/archetype"
	"github.com/meridianhr/assess-engine/internal/bank"
	"github.com/meridianhr/assess-engine/internal/config"
	"github.com/meridianhr/assess-engine/internal/fusion"
	"github.com/meridianhr/assess-engine/internal/norms"
	"github.com/meridianhr/assess-engine/internal/provlog"
	"github.com/meridianhr/assess-engine/internal/selector"
	"github.com/meridianhr/assess-engine/internal/validity"

	"github.com/meridianhr/assess-engine/internal/profile"
)

// #region session-struct

// Session runs one respondent's assessment from seed to report. Rounds
// are strictly sequential: each Next depends on the belief state the
// prior Record produced, so callers must serialize per respondent.
// Concurrent sessions for different respondents share nothing beyond
// the store.
type Session struct {
	id           string
	respondentID string
	tier         profile.Tier
	cfg          config.Config

	store     *bank.Store
	catalogue *bank.Catalogue
	sel       *selector.Selector
	normTable *norms.Table

	phase     selector.Phase
	round     int
	responses []profile.ResponseRecord
	scores    profile.ScoreProfile
	pending   map[string]bool
	answered  map[string]bool
}

// Report is the finished assessment output handed to the host (and,
// downstream, to the narrative collaborator).
type Report struct {
	SessionID    string
	RespondentID string
	Profile      profile.ScoreProfile
	Validity     validity.Signals
	Match        profile.MatchResult
	Percentiles  map[profile.Dimension]float64
	Rounds       int
}

// #endregion session-struct

// #region constructor

// New starts a session for one respondent at the given tier. normTable
// may be nil when no calibration data is loaded; the report then omits
// percentiles.
func New(
	respondentID string,
	tier profile.Tier,
	cfg config.Config,
	store *bank.Store,
	catalogue *bank.Catalogue,
	sel *selector.Selector,
	normTable *norms.Table,
) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	return &Session{
		id:           uuid.NewString(),
		respondentID: respondentID,
		tier:         tier,
		cfg:          cfg,
		store:        store,
		catalogue:    catalogue,
		sel:          sel,
		normTable:    normTable,
		phase:        selector.PhaseSeeding,
		scores:       fusion.Initialize(),
		pending:      make(map[string]bool),
		answered:     make(map[string]bool),
	}, nil
}

// ID returns the session identifier used in the selection log.
func (s *Session) ID() string { return s.id }

// Phase reports where the session sits in its lifecycle.
func (s *Session) Phase() selector.Phase { return s.phase }

// Scores returns the current belief state.
func (s *Session) Scores() profile.ScoreProfile { return s.scores.Clone() }

// #endregion constructor

// #region next

// Next chooses the next batch of items. ok is false once the pool or
// the round budget is exhausted; the decision is then empty and the
// session has moved to its terminal phase.
func (s *Session) Next(ctx context.Context) (profile.SelectionDecision, bool, error) {
	if s.phase == selector.PhaseExhausted {
		return profile.SelectionDecision{}, false, nil
	}

	pool, err := s.eligiblePool()
	if err != nil {
		return profile.SelectionDecision{}, false, err
	}
	if len(pool) == 0 || s.round >= s.cfg.Selection.MaxRounds {
		s.phase = selector.PhaseExhausted
		log.Printf("[SESSION] %s: exhausted after %d round(s)", s.id, s.round)
		return profile.SelectionDecision{}, false, nil
	}

	s.round++
	phase := s.phase
	signals := validity.Analyze(s.responses, s.itemIndex(), s.cfg.Validity)

	var dec profile.SelectionDecision
	if phase == selector.PhaseSeeding {
		dec = s.sel.SeedBatch(pool)
		s.phase = selector.PhaseAdaptive
	} else {
		dec = s.sel.NextBatch(ctx, s.scores, s.answeredIDs(), pool, s.round, s.cfg.Selection.MaxRounds-s.round, signals)
	}

	for _, id := range dec.ItemIDs {
		s.pending[id] = true
	}
	s.logSelection(dec, phase, signals)
	log.Printf("[SESSION] %s: round %d issued %d item(s) via %s", s.id, s.round, len(dec.ItemIDs), dec.Source)
	return dec, true, nil
}

// #endregion next

// #region record

// Record folds one batch of answers into the belief state and appends
// them to the durable history. Responses referencing unknown items are
// skipped, not fatal.
func (s *Session) Record(responses []profile.ResponseRecord) error {
	byID := s.itemIndex()

	fused, skipped := fusion.Fold(byID, responses, s.scores)
	s.scores = fused
	for _, id := range skipped {
		log.Printf("[SESSION] %s: skipping response for unknown item %s", s.id, id)
	}

	for _, rec := range responses {
		it, ok := byID[rec.ItemID]
		if !ok {
			continue
		}
		if err := s.store.AppendResponse(s.respondentID, it.Type, rec); err != nil {
			return fmt.Errorf("record response %s: %w", rec.ItemID, err)
		}
		s.responses = append(s.responses, rec)
		s.answered[rec.ItemID] = true
		delete(s.pending, rec.ItemID)
	}
	return nil
}

// #endregion record

// #region finish

// Finish computes the final report. The session stays readable but
// issues no further batches.
func (s *Session) Finish() (Report, error) {
	s.phase = selector.PhaseExhausted

	byID := s.itemIndex()
	signals := validity.Analyze(s.responses, byID, s.cfg.Validity)

	archetypes, err := s.catalogue.Archetypes()
	if err != nil {
		return Report{}, fmt.Errorf("load archetypes: %w", err)
	}
	match, err := archetype.Match(s.scores, archetypes, archetype.MatcherConfig{
		RedFlagPenalty: s.cfg.Selection.RedFlagPenalty,
		TiebreakMargin: s.cfg.Selection.TiebreakMargin,
	})
	if err != nil {
		return Report{}, fmt.Errorf("match archetypes: %w", err)
	}

	report := Report{
		SessionID:    s.id,
		RespondentID: s.respondentID,
		Profile:      s.scores.Clone(),
		Validity:     signals,
		Match:        match,
		Rounds:       s.round,
	}
	if s.normTable != nil {
		report.Percentiles = s.normTable.Percentiles(s.scores)
	}
	return report, nil
}

// #endregion finish

// #region helpers

func (s *Session) eligiblePool() ([]profile.Item, error) {
	items, err := s.catalogue.EligibleItems(s.tier)
	if err != nil {
		return nil, fmt.Errorf("load item pool: %w", err)
	}
	var pool []profile.Item
	for _, it := range items {
		if !s.answered[it.ID] && !s.pending[it.ID] {
			pool = append(pool, it)
		}
	}
	return pool, nil
}

func (s *Session) itemIndex() map[string]profile.Item {
	byID, err := s.catalogue.ItemsByID()
	if err != nil {
		log.Printf("[SESSION] %s: item index unavailable: %v", s.id, err)
		return map[string]profile.Item{}
	}
	return byID
}

func (s *Session) answeredIDs() []string {
	ids := make([]string, 0, len(s.answered))
	for _, rec := range s.responses {
		ids = append(ids, rec.ItemID)
	}
	return ids
}

func (s *Session) logSelection(dec profile.SelectionDecision, phase selector.Phase, signals validity.Signals) {
	entry := provlog.Entry{
		SessionID:   s.id,
		Round:       s.round,
		Phase:       string(phase),
		DecisionID:  dec.DecisionID,
		ItemIDs:     dec.ItemIDs,
		Source:      dec.Source,
		Rationale:   dec.Rationale,
		Reliability: string(signals.Reliability),
	}
	if err := provlog.LogSelection(s.store.DB(), entry); err != nil {
		log.Printf("[SESSION] %s: selection log write failed: %v", s.id, err)
	}
}

// #endregion helpers
