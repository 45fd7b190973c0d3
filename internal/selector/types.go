package selector

// #region phases

// Phase tracks where an assessment sits in its lifecycle. There is no
// path back to PhaseSeeding once the seed batch has been issued.
type Phase string

const (
	PhaseSeeding   Phase = "SEEDING"
	PhaseAdaptive  Phase = "ADAPTIVE_ROUND"
	PhaseExhausted Phase = "EXHAUSTED"
)

// #endregion phases

// #region sources

// Batch sources recorded on each SelectionDecision.
const (
	SourceSeed      = "seed"
	SourceReasoning = "reasoning"
	SourceFallback  = "fallback"
	// SourceRemainder marks a round where five or fewer items were
	// left, so the whole pool was returned without selection logic.
	SourceRemainder = "remainder"
)

// #endregion sources
