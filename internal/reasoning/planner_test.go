package reasoning

import (
	"context"
	"testing"
	"time"
)

type fakeGenerator struct {
	reply string
	err   error
	delay time.Duration
}

func (f *fakeGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func testRequest() SelectionRequest {
	return SelectionRequest{
		Pool: []PoolItem{
			{ID: "q1", Primary: "drive", Type: "scaled", Difficulty: 0.4},
			{ID: "q2", Primary: "judgment", Type: "scenario", Difficulty: 0.6},
			{ID: "q3", Primary: "influence", Type: "scaled", Difficulty: 0.5},
			{ID: "q4", Primary: "resilience", Type: "forced_choice", Difficulty: 0.7},
			{ID: "q5", Primary: "integrity", Type: "scaled", Difficulty: 0.3},
			{ID: "q6", Primary: "adaptability", Type: "scenario", Difficulty: 0.8},
		},
		Round:       1,
		BatchSize:   3,
		AnsweredIDs: []string{"s1", "s2"},
	}
}

func TestPlanSelectionValid(t *testing.T) {
	gen := &fakeGenerator{reply: `{"selected_ids":["q1","q4","q6"],"rationale":"coverage"}`}
	p := NewPlanner(gen, time.Second)

	res := p.PlanSelection(context.Background(), testRequest())
	if res.Status != StatusOK {
		t.Fatalf("status = %v, want OK (detail %q)", res.Status, res.Detail)
	}
	if len(res.SelectedIDs) != 3 || res.SelectedIDs[0] != "q1" || res.SelectedIDs[2] != "q6" {
		t.Errorf("selected = %v", res.SelectedIDs)
	}
	if res.Rationale != "coverage" {
		t.Errorf("rationale = %q", res.Rationale)
	}
}

func TestPlanSelectionFencedReply(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n{\"selected_ids\":[\"q2\",\"q3\",\"q5\"],\"rationale\":\"r\"}\n```"}
	p := NewPlanner(gen, time.Second)

	res := p.PlanSelection(context.Background(), testRequest())
	if res.Status != StatusOK {
		t.Fatalf("fenced reply rejected: %v %q", res.Status, res.Detail)
	}
}

func TestPlanSelectionWrongCount(t *testing.T) {
	gen := &fakeGenerator{reply: `{"selected_ids":["q1","q2"],"rationale":"short"}`}
	p := NewPlanner(gen, time.Second)

	if res := p.PlanSelection(context.Background(), testRequest()); res.Status != StatusInvalid {
		t.Fatalf("status = %v, want invalid", res.Status)
	}
}

func TestPlanSelectionUnknownID(t *testing.T) {
	gen := &fakeGenerator{reply: `{"selected_ids":["q1","q2","zz"],"rationale":"r"}`}
	p := NewPlanner(gen, time.Second)

	if res := p.PlanSelection(context.Background(), testRequest()); res.Status != StatusInvalid {
		t.Fatalf("status = %v, want invalid", res.Status)
	}
}

func TestPlanSelectionDuplicateID(t *testing.T) {
	gen := &fakeGenerator{reply: `{"selected_ids":["q1","q2","q1"],"rationale":"r"}`}
	p := NewPlanner(gen, time.Second)

	if res := p.PlanSelection(context.Background(), testRequest()); res.Status != StatusInvalid {
		t.Fatalf("status = %v, want invalid", res.Status)
	}
}

func TestPlanSelectionMalformedJSON(t *testing.T) {
	gen := &fakeGenerator{reply: `the best items are q1, q2 and q3`}
	p := NewPlanner(gen, time.Second)

	if res := p.PlanSelection(context.Background(), testRequest()); res.Status != StatusInvalid {
		t.Fatalf("status = %v, want invalid", res.Status)
	}
}

func TestPlanSelectionTimeout(t *testing.T) {
	gen := &fakeGenerator{reply: `{"selected_ids":["q1","q2","q3"]}`, delay: 200 * time.Millisecond}
	p := NewPlanner(gen, 10*time.Millisecond)

	if res := p.PlanSelection(context.Background(), testRequest()); res.Status != StatusTimedOut {
		t.Fatalf("status = %v, want timed out", res.Status)
	}
}
