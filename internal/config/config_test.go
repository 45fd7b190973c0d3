package config

import (
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ASSESS_BATCH_SIZE", "7")
	t.Setenv("ASSESS_REASONING_TIMEOUT", "3s")
	t.Setenv("ASSESS_STRAIGHT_LINE_HIGH", "0.9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Selection.BatchSize != 7 {
		t.Errorf("expected batch size 7, got %d", cfg.Selection.BatchSize)
	}
	if cfg.Selection.ReasoningTimeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %s", cfg.Selection.ReasoningTimeout)
	}
	if cfg.Validity.StraightLineHigh != 0.9 {
		t.Errorf("expected straight-line high 0.9, got %f", cfg.Validity.StraightLineHigh)
	}
	// Untouched fields keep defaults.
	if cfg.Selection.RedFlagPenalty != 0.15 {
		t.Errorf("expected default penalty 0.15, got %f", cfg.Selection.RedFlagPenalty)
	}
}

func TestValidateRejectsBadBatch(t *testing.T) {
	cfg := Default()
	cfg.Selection.BatchSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero batch size")
	}
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	t.Setenv("ASSESS_BATCH_SIZE", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed env override")
	}
}
