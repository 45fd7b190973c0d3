package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// #region planner

// Planner issues the bounded reasoning call for adaptive item selection
// and validates the response strictly. One attempt per round: the
// fallback computed by the caller is always correct, just less informed,
// so there is no retry loop.
type Planner struct {
	gen     Generator
	timeout time.Duration
}

// NewPlanner creates a planner around a generator. timeout bounds each
// call.
func NewPlanner(gen Generator, timeout time.Duration) *Planner {
	return &Planner{gen: gen, timeout: timeout}
}

// #endregion planner

// #region plan-selection

// PlanSelection asks the reasoning collaborator for the next batch.
// Any violation of the response contract — malformed payload, wrong id
// count, an id outside the pool, timeout, network failure — yields a
// non-OK status, never an error the caller must branch on.
func (p *Planner) PlanSelection(ctx context.Context, req SelectionRequest) CallResult {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	payload, err := json.Marshal(req)
	if err != nil {
		return CallResult{Status: StatusInvalid, Detail: fmt.Sprintf("marshal request: %v", err)}
	}

	raw, err := p.gen.Generate(callCtx, systemPrompt, buildPrompt(string(payload), req))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil {
			return CallResult{Status: StatusTimedOut, Detail: err.Error()}
		}
		return CallResult{Status: StatusInvalid, Detail: err.Error()}
	}

	return validateResponse(raw, req)
}

// #endregion plan-selection

// #region validation

type selectionResponse struct {
	SelectedIDs []string `json:"selected_ids"`
	Rationale   string   `json:"rationale"`
}

// validateResponse enforces the contract: exactly batch-size ids, every
// id drawn from the pool, no duplicates.
func validateResponse(raw string, req SelectionRequest) CallResult {
	var resp selectionResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		return CallResult{Status: StatusInvalid, Detail: fmt.Sprintf("parse response: %v", err)}
	}

	if len(resp.SelectedIDs) != req.BatchSize {
		return CallResult{
			Status: StatusInvalid,
			Detail: fmt.Sprintf("expected %d ids, got %d", req.BatchSize, len(resp.SelectedIDs)),
		}
	}

	pool := make(map[string]bool, len(req.Pool))
	for _, it := range req.Pool {
		pool[it.ID] = true
	}
	seen := make(map[string]bool, len(resp.SelectedIDs))
	for _, id := range resp.SelectedIDs {
		if !pool[id] {
			return CallResult{Status: StatusInvalid, Detail: fmt.Sprintf("id %q not in eligible pool", id)}
		}
		if seen[id] {
			return CallResult{Status: StatusInvalid, Detail: fmt.Sprintf("duplicate id %q", id)}
		}
		seen[id] = true
	}

	return CallResult{
		Status:      StatusOK,
		SelectedIDs: resp.SelectedIDs,
		Rationale:   resp.Rationale,
	}
}

// stripFences removes a surrounding markdown code fence, which models
// add despite instructions.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// #endregion validation
