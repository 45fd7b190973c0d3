package reasoning

import (
	"context"

	"github.com/meridianhr/assess-engine/internal/profile"
	"github.com/meridianhr/assess-engine/internal/validity"
)

// #region generator-interface

// Generator abstracts the model call so the planner can be tested
// without a network connection.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// #endregion generator-interface

// #region request

// DimensionSummary is the per-dimension belief snapshot sent to the
// reasoning collaborator.
type DimensionSummary struct {
	Score         float64 `json:"score"`
	Confidence    float64 `json:"confidence"`
	Uncertainty   float64 `json:"uncertainty"`
	EvidenceCount int     `json:"evidence_count"`
}

// PoolItem summarizes one remaining bank item for the collaborator.
type PoolItem struct {
	ID         string           `json:"id"`
	Primary    profile.Dimension `json:"primary"`
	Secondary  profile.Dimension `json:"secondary,omitempty"`
	Type       profile.ItemType  `json:"type"`
	Difficulty float64          `json:"difficulty"`
}

// SelectionRequest is the full payload for one adaptive round.
type SelectionRequest struct {
	Scores          map[profile.Dimension]DimensionSummary `json:"scores_by_dimension"`
	AnsweredIDs     []string                               `json:"answered_ids"`
	Pool            []PoolItem                             `json:"pool_summary"`
	Round           int                                    `json:"round_number"`
	RoundsRemaining int                                    `json:"rounds_remaining"`
	Validity        validity.Signals                       `json:"validity_signals"`
	BatchSize       int                                    `json:"batch_size"`
}

// #endregion request

// #region result

// CallStatus classifies the outcome of one reasoning call. There is no
// partial success: anything short of a fully valid response collapses
// into the deterministic fallback at the call site.
type CallStatus string

const (
	StatusOK       CallStatus = "ok"
	StatusTimedOut CallStatus = "timed_out"
	StatusInvalid  CallStatus = "invalid"
)

// CallResult is the outcome of PlanSelection. SelectedIDs and Rationale
// are only meaningful when Status is StatusOK; Detail explains non-OK
// outcomes for the audit trail.
type CallResult struct {
	Status      CallStatus
	SelectedIDs []string
	Rationale   string
	Detail      string
}

// #endregion result
