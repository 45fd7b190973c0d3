package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// #region validity-thresholds
// ValidityThresholds holds the low/high cut points for every validity
// index. These are tuning parameters, not algorithmic constants: the
// analyzer never hard-codes them.
type ValidityThresholds struct {
	// InconsistencyHigh is on the native answer scale (mean absolute
	// pair deviation); everything else is a [0,1] ratio.
	InconsistencyHigh float64 `env:"ASSESS_INCONSISTENCY_HIGH"`
	InconsistencyLow  float64 `env:"ASSESS_INCONSISTENCY_LOW"`
	ImpressionHigh    float64 `env:"ASSESS_IMPRESSION_HIGH"`
	ImpressionLow     float64 `env:"ASSESS_IMPRESSION_LOW"`
	StraightLineHigh  float64 `env:"ASSESS_STRAIGHT_LINE_HIGH"`
	StraightLineLow   float64 `env:"ASSESS_STRAIGHT_LINE_LOW"`
	AcquiescenceHigh  float64 `env:"ASSESS_ACQUIESCENCE_HIGH"`
	AcquiescenceLow   float64 `env:"ASSESS_ACQUIESCENCE_LOW"`
	ExtremeHigh       float64 `env:"ASSESS_EXTREME_HIGH"`
	ExtremeLow        float64 `env:"ASSESS_EXTREME_LOW"`

	// FastLatencyFloorMS: answers completed faster than this count as
	// rushed.
	FastLatencyFloorMS int64 `env:"ASSESS_FAST_LATENCY_FLOOR_MS"`
}

// #endregion validity-thresholds

// #region selection
// Selection holds the adaptive-selector tuning knobs.
type Selection struct {
	BatchSize        int           `env:"ASSESS_BATCH_SIZE"`
	ReasoningTimeout time.Duration `env:"ASSESS_REASONING_TIMEOUT"`
	MaxRounds        int           `env:"ASSESS_MAX_ROUNDS"`
	RedFlagPenalty   float64       `env:"ASSESS_RED_FLAG_PENALTY"`
	TiebreakMargin   float64       `env:"ASSESS_TIEBREAK_MARGIN"`
}

// #endregion selection

// #region config
// Config is the full engine configuration.
type Config struct {
	Validity  ValidityThresholds
	Selection Selection

	DBPath          string        `env:"ASSESS_DB"`
	CatalogueTTL    time.Duration `env:"ASSESS_CATALOGUE_TTL"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY"`
	ReasoningModel  string        `env:"ASSESS_REASONING_MODEL"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		Validity: ValidityThresholds{
			InconsistencyHigh:  1.5,
			InconsistencyLow:   0.75,
			ImpressionHigh:     0.6,
			ImpressionLow:      0.3,
			StraightLineHigh:   0.8,
			StraightLineLow:    0.5,
			AcquiescenceHigh:   0.8,
			AcquiescenceLow:    0.6,
			ExtremeHigh:        0.7,
			ExtremeLow:         0.4,
			FastLatencyFloorMS: 2000,
		},
		Selection: Selection{
			BatchSize:        5,
			ReasoningTimeout: 8 * time.Second,
			MaxRounds:        6,
			RedFlagPenalty:   0.15,
			TiebreakMargin:   0.05,
		},
		DBPath:         "assess.db",
		CatalogueTTL:   5 * time.Minute,
		ReasoningModel: "claude-sonnet-4-5",
	}
}

// Load applies environment overrides on top of the defaults. A malformed
// override is a host configuration error, not something to recover from.
func Load() (Config, error) {
	cfg := Default()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot honor.
func (c Config) Validate() error {
	if c.Selection.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive, got %d", c.Selection.BatchSize)
	}
	if c.Selection.ReasoningTimeout <= 0 {
		return fmt.Errorf("reasoning timeout must be positive, got %s", c.Selection.ReasoningTimeout)
	}
	if c.Selection.RedFlagPenalty < 0 {
		return fmt.Errorf("red flag penalty must be non-negative, got %f", c.Selection.RedFlagPenalty)
	}
	if c.Validity.FastLatencyFloorMS < 0 {
		return fmt.Errorf("fast latency floor must be non-negative, got %d", c.Validity.FastLatencyFloorMS)
	}
	return nil
}
