package fusion

import (
	"math"

	"github.com/meridianhr/assess-engine/internal/profile"
)

// #region prior
// Prior parameters: an uninformative, mildly-central starting belief.
const (
	priorScore      = 50.0
	priorConfidence = 0.1
)

// Initialize returns the starting ScoreProfile: every dimension at score
// 50 with confidence 0.1 and no evidence.
func Initialize() profile.ScoreProfile {
	p := make(profile.ScoreProfile, profile.NumDimensions)
	for _, d := range profile.Dimensions() {
		p[d] = profile.DimensionBelief{
			Score:       priorScore,
			Confidence:  priorConfidence,
			Uncertainty: uncertaintyFor(0),
		}
	}
	return p
}

// #endregion prior

// #region contribution
// Contribution resolves one answered item into a six-dimension evidence
// vector. Unknown answers degrade to the zero vector: no information,
// never a failure.
func Contribution(item profile.Item, answer profile.Answer) profile.Vector {
	var vec profile.Vector
	if answer == nil {
		return vec
	}

	var table profile.ContributionTable
	switch item.Type {
	case profile.ItemScaled:
		table = item.ScaleContributions[answer.Key()]
	default:
		if opt, ok := item.Option(answer.Key()); ok {
			table = opt.Contributions
		}
	}

	for d, v := range table {
		if i := profile.DimensionIndex(d); i >= 0 {
			vec[i] = v
		}
	}
	return vec
}

// #endregion contribution

// #region fuse
// Fuse folds one item's evidence vector into the belief and returns a
// new profile. For every dimension with nonzero contribution the score
// becomes the confidence-weighted average of the old score and the
// contribution; dimensions with zero contribution are left untouched.
// The input profile is never mutated.
func Fuse(belief profile.ScoreProfile, contribution profile.Vector, reliability float64) profile.ScoreProfile {
	next := belief.Clone()

	for i, d := range profile.Dimensions() {
		c := contribution[i]
		if c == 0 {
			continue
		}

		b := next[d]
		b.Score = (b.Score*b.Confidence + c*reliability) / (b.Confidence + reliability)
		b.Confidence = math.Min(1.0, b.Confidence+reliability)
		b.EvidenceCount++
		b.Uncertainty = uncertaintyFor(b.EvidenceCount)
		b.RawContribution += c
		b.MaxPossible += 100
		next[d] = b
	}

	return next
}

// #endregion fuse

// #region fold
// Fold applies Fuse once per response in the order given, seeded from
// prior (or Initialize when prior is nil). Because each step is a
// confidence-weighted average and confidence accumulates additively, the
// final scores are independent of response order.
//
// Responses whose item id cannot be resolved are skipped and returned so
// the caller can log them; an unresolvable id never fails the fold.
func Fold(itemsByID map[string]profile.Item, responses []profile.ResponseRecord, prior profile.ScoreProfile) (profile.ScoreProfile, []string) {
	var current profile.ScoreProfile
	if prior != nil {
		current = prior.Clone()
	} else {
		current = Initialize()
	}

	var skipped []string
	for _, r := range responses {
		item, ok := itemsByID[r.ItemID]
		if !ok {
			skipped = append(skipped, r.ItemID)
			continue
		}
		current = Fuse(current, Contribution(item, r.Answer), item.Difficulty)
	}
	return current, skipped
}

// #endregion fold

// #region confidence-tier
// ConfidenceTier classifies an uncertainty value for reporting.
func ConfidenceTier(uncertainty float64) string {
	switch {
	case uncertainty < 0.1:
		return "high"
	case uncertainty <= 0.2:
		return "medium"
	default:
		return "low"
	}
}

// #endregion confidence-tier

// #region helpers
func uncertaintyFor(evidenceCount int) float64 {
	return math.Sqrt(1.0 / float64(evidenceCount+1))
}

// #endregion helpers
