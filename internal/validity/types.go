package validity

// #region verdict
// Verdict is the three-level reliability call on a response history.
type Verdict string

const (
	ReliabilityHigh   Verdict = "high"
	ReliabilityMedium Verdict = "medium"
	ReliabilityLow    Verdict = "low"
)

// #endregion verdict

// #region signals
// Signals is the fixed set of response-pattern diagnostics. All ratios
// are in [0,1]; InconsistencyIndex is a mean absolute deviation on the
// native answer scale. Signals discount trust in the scored result
// without ever altering the scores themselves.
type Signals struct {
	InconsistencyIndex   float64 `json:"inconsistency_index"`
	ImpressionManagement float64 `json:"impression_management"`
	StraightLinePct      float64 `json:"straight_line_pct"`
	AcquiescenceBias     float64 `json:"acquiescence_bias"`
	ExtremeResponsePct   float64 `json:"extreme_response_pct"`
	FastResponsePct      float64 `json:"fast_response_pct"`
	Reliability          Verdict `json:"overall_reliability"`
}

// #endregion signals
