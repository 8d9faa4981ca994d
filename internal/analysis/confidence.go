package analysis

import (
	"context"
	"math"

	"dispute-backend/internal/jurisdiction"
	"dispute-backend/internal/llm"
)

// Fixed factor weights. A model invariant, not configurable at call
// time: overall confidence must stay stable and auditable no matter
// which path produced the factors.
const (
	weightEvidenceQuality       = 0.25
	weightPrecedentStrength     = 0.15
	weightFactualCertainty      = 0.30
	weightJurisdictionalClarity = 0.15
	weightIssueComplexity       = 0.15
)

// Qualitative confidence levels for human-readable output.
const (
	LevelVeryHigh = "very_high"
	LevelHigh     = "high"
	LevelModerate = "moderate"
	LevelLow      = "low"
)

// ConfidenceScorer combines five factor scores into overall confidence.
// Scoring is cheap relative to generation, so the provider path can run
// on a smaller model.
type ConfidenceScorer struct {
	Provider llm.Provider
	Model    string
}

// ScoreInput carries everything the scorer looks at.
type ScoreInput struct {
	Jurisdiction   string
	Issues         []LegalIssue
	Burden         *BurdenResult
	Damages        *DamagesCalculation
	Contradictions int
	Citations      []string
	EvidenceCount  int
	CredibilityDelta float64
}

// Score returns the factors, tokens consumed, and whether the fallback
// path was taken. The weighted combination is identical on both paths.
func (s *ConfidenceScorer) Score(ctx context.Context, input ScoreInput) (ConfidenceFactors, int, bool) {
	if s.Provider == nil {
		return s.heuristicFactors(input), 0, true
	}

	completion, err := s.Provider.Complete(ctx, llm.CompletionRequest{
		System:    systemInstruction,
		Prompt:    buildConfidencePrompt(input.Issues, input.Burden, input.Damages, input.Contradictions, input.EvidenceCount),
		Model:     s.Model,
		MaxTokens: 400,
	})
	if err != nil {
		return s.heuristicFactors(input), 0, true
	}

	var parsed ConfidenceFactors
	if err := extractJSONObject(completion.Text, &parsed); err != nil {
		return s.heuristicFactors(input), completion.TokensUsed, true
	}

	return ConfidenceFactors{
		EvidenceQuality:       clamp01(parsed.EvidenceQuality),
		PrecedentStrength:     clamp01(parsed.PrecedentStrength),
		FactualCertainty:      clamp01(parsed.FactualCertainty),
		JurisdictionalClarity: clamp01(parsed.JurisdictionalClarity),
		IssueComplexity:       clamp01(parsed.IssueComplexity),
	}, completion.TokensUsed, false
}

// heuristicFactors computes the five factors without the provider.
// Deterministic for identical input.
func (s *ConfidenceScorer) heuristicFactors(input ScoreInput) ConfidenceFactors {
	factors := ConfidenceFactors{
		JurisdictionalClarity: jurisdiction.ClarityScore(input.Jurisdiction),
	}

	// Evidence quality: document count plus how much of the claim the
	// record actually supports.
	countScore := math.Min(float64(input.EvidenceCount)/10.0, 1.0)
	supportRatio := 0.0
	if input.Damages != nil && input.Damages.ClaimedTotal > 0 {
		supportRatio = math.Min(input.Damages.SupportedTotal/input.Damages.ClaimedTotal, 1.0)
	}
	factors.EvidenceQuality = clamp01(0.6*countScore + 0.4*supportRatio)

	factors.PrecedentStrength = clamp01(0.2 + 0.1*float64(len(input.Citations)))

	// Factual certainty: mean burden probability, penalized per
	// contradiction (capped) and credited when the burden was met.
	var probSum float64
	var probCount int
	if input.Burden != nil {
		for _, ba := range input.Burden.Analyses {
			probSum += ba.Probability
			probCount++
		}
	}
	certainty := 0.5
	if probCount > 0 {
		certainty = probSum / float64(probCount)
	}
	penalty := math.Min(0.05*float64(input.Contradictions), 0.3)
	certainty -= penalty
	if input.Burden != nil && input.Burden.OverallMet {
		certainty += 0.1
	}
	factors.FactualCertainty = clamp01(certainty)

	issueCount := len(input.Issues)
	if issueCount < 1 {
		issueCount = 1
	}
	factors.IssueComplexity = clamp01(1.0 / (1.0 + 0.25*float64(issueCount-1)))

	return factors
}

// CombineFactors applies the fixed weights and rounds to two decimals.
func CombineFactors(factors ConfidenceFactors) float64 {
	overall := weightEvidenceQuality*clamp01(factors.EvidenceQuality) +
		weightPrecedentStrength*clamp01(factors.PrecedentStrength) +
		weightFactualCertainty*clamp01(factors.FactualCertainty) +
		weightJurisdictionalClarity*clamp01(factors.JurisdictionalClarity) +
		weightIssueComplexity*clamp01(factors.IssueComplexity)
	return math.Round(overall*100) / 100
}

// ConfidenceLevel maps a score to a qualitative level.
func ConfidenceLevel(score float64) string {
	switch {
	case score >= 0.85:
		return LevelVeryHigh
	case score >= 0.70:
		return LevelHigh
	case score >= 0.50:
		return LevelModerate
	default:
		return LevelLow
	}
}

// AggregateCitations deduplicates statutes, case law, adjustment bases,
// and the interest statute across the whole result.
func AggregateCitations(issues []LegalIssue, damages *DamagesCalculation) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(citation string) {
		if citation == "" || seen[citation] {
			return
		}
		seen[citation] = true
		out = append(out, citation)
	}
	for _, issue := range issues {
		for _, statute := range issue.ApplicableStatutes {
			add(statute)
		}
		for _, caseLaw := range issue.ApplicableCaseLaw {
			add(caseLaw)
		}
	}
	if damages != nil {
		for _, item := range damages.Items {
			for _, adj := range item.Adjustments {
				add(adj.LegalBasis)
			}
		}
		if damages.Interest != nil {
			add(damages.Interest.StatutoryBasis)
		}
	}
	return out
}
