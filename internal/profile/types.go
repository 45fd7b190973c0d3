package profile

import "strconv"

// #region dimensions
// Dimension is one of the six leadership traits scored by the assessment.
// The order of dimensionOrder is significant and fixed: every vector
// operation in the engine assumes it.
type Dimension string

const (
	DimDrive        Dimension = "drive"
	DimJudgment     Dimension = "judgment"
	DimInfluence    Dimension = "influence"
	DimResilience   Dimension = "resilience"
	DimIntegrity    Dimension = "integrity"
	DimAdaptability Dimension = "adaptability"
)

// NumDimensions is the size of the closed dimension set.
const NumDimensions = 6

var dimensionOrder = [NumDimensions]Dimension{
	DimDrive, DimJudgment, DimInfluence, DimResilience, DimIntegrity, DimAdaptability,
}

// Dimensions returns the dimensions in their fixed canonical order.
func Dimensions() [NumDimensions]Dimension {
	return dimensionOrder
}

// DimensionIndex returns the canonical position of d, or -1 for an
// unknown dimension.
func DimensionIndex(d Dimension) int {
	for i, dim := range dimensionOrder {
		if dim == d {
			return i
		}
	}
	return -1
}

// #endregion dimensions

// #region vector
// Vector is a fixed six-element numeric vector in canonical Dimension order.
type Vector [NumDimensions]float64

// #endregion vector

// #region scale
// Scaled items are answered on a 1-5 Likert scale.
const (
	ScaleMin = 1
	ScaleMax = 5
)

// #endregion scale

// #region belief
// DimensionBelief is the engine's current estimate for one dimension.
// Confidence is non-decreasing and capped at 1.0; EvidenceCount only
// increases; Uncertainty is always sqrt(1/(EvidenceCount+1)).
type DimensionBelief struct {
	Score           float64
	Confidence      float64
	Uncertainty     float64
	EvidenceCount   int
	RawContribution float64
	MaxPossible     float64
}

// ScoreProfile maps every dimension to its belief. All six keys are
// always present.
type ScoreProfile map[Dimension]DimensionBelief

// Clone returns an independent copy of the profile.
func (p ScoreProfile) Clone() ScoreProfile {
	out := make(ScoreProfile, NumDimensions)
	for d, b := range p {
		out[d] = b
	}
	return out
}

// #endregion belief

// #region item
// ItemType distinguishes the three supported item formats.
type ItemType string

const (
	ItemScaled       ItemType = "scaled"
	ItemScenario     ItemType = "scenario"
	ItemForcedChoice ItemType = "forced_choice"
)

// Tier identifies an assessment length a bank item is eligible for.
type Tier string

const (
	TierQuick    Tier = "quick"
	TierStandard Tier = "standard"
	TierDeep     Tier = "deep"
)

// ContributionTable maps dimensions to the score contribution one answer
// carries. Dimensions absent from the table contribute 0.
type ContributionTable map[Dimension]float64

// ItemOption is one selectable answer of a scenario or forced-choice item.
type ItemOption struct {
	Key           string            `json:"key"`
	Text          string            `json:"text,omitempty"`
	Contributions ContributionTable `json:"contributions"`
}

/// Item is a bank entry. Difficulty is the [0,1] reliability weight: how
// informative one correct reading of this item is.
type Item struct {
	ID                 string                       `json:"id"`
	Primary            Dimension                    `json:"primary"`
	Secondary          Dimension                    `json:"secondary,omitempty"`
	Type               ItemType                     `json:"type"`
	ScaleContributions map[string]ContributionTable `json:"scale_contributions,omitempty"`
	Options            []ItemOption                 `json:"options,omitempty"`
	Difficulty         float64                      `json:"difficulty"`
	Reversed           bool                         `json:"reversed,omitempty"`
	ValidityPairID     string                       `json:"validity_pair_id,omitempty"`
	ImpressionProbe    bool                         `json:"impression_probe,omitempty"`
	Tiers              []Tier                       `json:"tiers"`
}

// EligibleFor reports whether the item may be administered in the tier.
func (it Item) EligibleFor(tier Tier) bool {
	for _, t := range it.Tiers {
		if t == tier {
			return true
		}
	}
	return false
}

// Option returns the option with the given key, if any.
func (it Item) Option(key string) (ItemOption, bool) {
	for _, o := range it.Options {
		if o.Key == key {
			return o, true
		}
	}
	return ItemOption{}, false
}

// #endregion item

// #region answer
// Answer is the tagged union of the two answer shapes. Raw host input is
// resolved into one of the two variants at the boundary so the engine
// never type-probes at runtime.
type Answer interface {
	// Key is the string form used to index contribution tables.
	Key() string
}

// ScaledAnswer is a 1-5 Likert position.
type ScaledAnswer int

func (a ScaledAnswer) Key() string { return strconv.Itoa(int(a)) }

// OptionAnswer is the key of a chosen scenario/forced-choice option.
type OptionAnswer string

func (a OptionAnswer) Key() string { return string(a) }

// ResolveAnswer converts a raw host value (JSON number or string) into
// the tagged union. Numeric strings for scaled items become
// ScaledAnswer; everything else is an OptionAnswer.
func ResolveAnswer(itemType ItemType, raw any) Answer {
	switch v := raw.(type) {
	case float64:
		return ScaledAnswer(int(v))
	case int:
		return ScaledAnswer(v)
	case string:
		if itemType == ItemScaled {
			if n, err := strconv.Atoi(v); err == nil {
				return ScaledAnswer(n)
			}
		}
		return OptionAnswer(v)
	default:
		return OptionAnswer("")
	}
}

// #endregion answer

// #region response
// ResponseRecord is one recorded answer. Records are immutable: the
// engine only ever folds new ones into the belief, never edits history.
type ResponseRecord struct {
	ItemID    string
	Answer    Answer
	LatencyMS int64
}

// #endregion response

// #region archetype
// RedFlagRange defines a disqualifying score range for one dimension.
// A nil bound means that side is unconstrained.
type RedFlagRange struct {
	Below *float64 `json:"below,omitempty"`
	Above *float64 `json:"above,omitempty"`
}

// ArchetypeProfile is a reference profile with an ideal score vector and
// disqualifying red-flag ranges.
type ArchetypeProfile struct {
	ID       string                     `json:"id"`
	Targets  map[Dimension]float64      `json:"targets"`
	RedFlags map[Dimension]RedFlagRange `json:"red_flags,omitempty"`
}

// MatchResult is the outcome of matching a profile against a catalogue.
// Computed once, never mutated.
type MatchResult struct {
	PrimaryID     string
	SecondaryID   string
	Similarity    map[string]float64
	NeedsTiebreak bool
}

// #endregion archetype

// #region selection
// SelectionDecision is one round's choice of items to administer.
type SelectionDecision struct {
	DecisionID string
	ItemIDs    []string
	Rationale  string
	// Source records how the batch was chosen: "seed", "reasoning",
	// or "fallback".
	Source string
}

// #endregion selection
