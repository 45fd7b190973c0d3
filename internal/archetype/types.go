package archetype

// #region matcher-config
// MatcherConfig holds the match tuning knobs.
type MatcherConfig struct {
	// RedFlagPenalty is subtracted from similarity per violated
	// threshold; violations stack.
	RedFlagPenalty float64
	// TiebreakMargin: when the top two similarities differ by no more
	// than this, the match is flagged for a closer read downstream.
	TiebreakMargin float64
}

// DefaultMatcherConfig returns the standard penalties.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		RedFlagPenalty: 0.15,
		TiebreakMargin: 0.05,
	}
}

// #endregion matcher-config
