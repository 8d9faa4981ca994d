package analysis

import (
	"context"
	"fmt"
	"strings"

	"dispute-backend/internal/facts"
	"dispute-backend/internal/jurisdiction"
	"dispute-backend/internal/llm"
)

// Probability thresholds per burden standard.
var standardThresholds = map[BurdenStandard]float64{
	StandardPreponderance:      0.5,
	StandardClearAndConvincing: 0.75,
	StandardBeyondReasonable:   0.9,
}

// BurdenAnalyzer determines whether the claimant carries the burden of
// proof on each classified issue.
type BurdenAnalyzer struct {
	Provider llm.Provider
	Model    string

	// Heuristic knobs, configurable because they shift outcomes.
	ContradictionPenaltyPer float64
	MaxContradictionPenalty float64
}

// ElementFinding is a per-element determination reported by the burden
// phase, merged back into the issue set by name (never by index).
type ElementFinding struct {
	IssueID   string
	Name      string
	Satisfied *bool
	Analysis  string
	Confidence float64
}

type burdenResponse struct {
	Analyses []struct {
		IssueID  string `json:"issueId"`
		Elements []struct {
			Name       string  `json:"name"`
			Satisfied  *bool   `json:"satisfied"`
			Analysis   string  `json:"analysis"`
			Confidence float64 `json:"confidence"`
		} `json:"elements"`
		IsMet       *bool    `json:"isMet"`
		Probability float64  `json:"probability"`
		Reasoning   string   `json:"reasoning"`
		KeyEvidence []string `json:"keyEvidence"`
		Weaknesses  []string `json:"weaknesses"`
	} `json:"analyses"`
	Summary string `json:"summary"`
}

// Analyze returns the burden result, element findings for the merge
// step, tokens consumed, and whether the fallback path was taken.
func (a *BurdenAnalyzer) Analyze(ctx context.Context, cf facts.CaseFacts, issues []LegalIssue, legalContext string) (BurdenResult, []ElementFinding, int, bool) {
	if a.Provider == nil {
		return a.heuristicResult(cf, issues), nil, 0, true
	}

	completion, err := a.Provider.Complete(ctx, llm.CompletionRequest{
		System:    systemInstruction,
		Prompt:    buildBurdenPrompt(cf, issues, legalContext),
		Model:     a.Model,
		MaxTokens: 2000,
	})
	if err != nil {
		return a.heuristicResult(cf, issues), nil, 0, true
	}

	var parsed burdenResponse
	if err := extractJSONObject(completion.Text, &parsed); err != nil || len(parsed.Analyses) == 0 {
		return a.heuristicResult(cf, issues), nil, completion.TokensUsed, true
	}

	byIssueID := make(map[string]int, len(parsed.Analyses))
	for i, analysis := range parsed.Analyses {
		byIssueID[strings.TrimSpace(analysis.IssueID)] = i
	}

	var findings []ElementFinding
	analyses := make([]BurdenAnalysis, 0, len(issues))
	for _, issue := range issues {
		standard := NormalizeStandard(jurisdiction.GetBurdenStandard(cf.Jurisdiction, string(issue.Category)))
		ba := BurdenAnalysis{
			Party:            facts.PartyClaimant,
			Standard:         standard,
			IssueID:          issue.ID,
			IssueDescription: issue.Description,
		}

		idx, ok := byIssueID[issue.ID]
		if !ok {
			// The provider skipped this issue; fall back per issue.
			ba = a.heuristicAnalysis(cf, issue, standard)
			analyses = append(analyses, ba)
			continue
		}

		raw := parsed.Analyses[idx]
		ba.Probability = clamp01(raw.Probability)
		ba.Reasoning = strings.TrimSpace(raw.Reasoning)
		ba.KeyEvidence = trimAll(raw.KeyEvidence)
		ba.Weaknesses = trimAll(raw.Weaknesses)
		if raw.IsMet != nil {
			ba.IsMet = boolPtr(*raw.IsMet)
		} else {
			ba.IsMet = boolPtr(ba.Probability >= standardThresholds[standard])
		}

		for _, el := range raw.Elements {
			name := strings.TrimSpace(el.Name)
			if name == "" {
				continue
			}
			finding := ElementFinding{
				IssueID:    issue.ID,
				Name:       name,
				Analysis:   strings.TrimSpace(el.Analysis),
				Confidence: clamp01(el.Confidence),
			}
			if el.Satisfied != nil {
				finding.Satisfied = boolPtr(*el.Satisfied)
			}
			findings = append(findings, finding)
		}
		analyses = append(analyses, ba)
	}

	result := BurdenResult{
		OverallMet: overallBurdenMet(issues, analyses),
		Analyses:   analyses,
		Summary:    strings.TrimSpace(parsed.Summary),
	}
	return result, findings, completion.TokensUsed, false
}

// heuristicResult scores every issue without the provider: average
// element confidence, pushed down by contradictions and up when a
// majority of elements are already marked satisfied.
func (a *BurdenAnalyzer) heuristicResult(cf facts.CaseFacts, issues []LegalIssue) BurdenResult {
	analyses := make([]BurdenAnalysis, 0, len(issues))
	for _, issue := range issues {
		standard := NormalizeStandard(jurisdiction.GetBurdenStandard(cf.Jurisdiction, string(issue.Category)))
		analyses = append(analyses, a.heuristicAnalysis(cf, issue, standard))
	}
	return BurdenResult{
		OverallMet: overallBurdenMet(issues, analyses),
		Analyses:   analyses,
		Summary:    "Burden assessed heuristically from element confidence and record contradictions.",
	}
}

func (a *BurdenAnalyzer) heuristicAnalysis(cf facts.CaseFacts, issue LegalIssue, standard BurdenStandard) BurdenAnalysis {
	var confSum float64
	for _, el := range issue.Elements {
		confSum += clamp01(el.Confidence)
	}
	avg := 0.0
	if len(issue.Elements) > 0 {
		avg = confSum / float64(len(issue.Elements))
	}

	penaltyPer := a.ContradictionPenaltyPer
	if penaltyPer <= 0 {
		penaltyPer = 0.05
	}
	maxPenalty := a.MaxContradictionPenalty
	if maxPenalty <= 0 {
		maxPenalty = 0.3
	}
	penalty := float64(len(cf.Contradictions)) * penaltyPer
	if penalty > maxPenalty {
		penalty = maxPenalty
	}

	bonus := 0.0
	if len(issue.Elements) > 0 && issue.SatisfiedCount()*2 > len(issue.Elements) {
		bonus = 0.15
	}

	probability := clamp01(avg - penalty + bonus)
	return BurdenAnalysis{
		Party:            facts.PartyClaimant,
		Standard:         standard,
		IssueID:          issue.ID,
		IssueDescription: issue.Description,
		IsMet:            boolPtr(probability >= standardThresholds[standard]),
		Probability:      probability,
		Reasoning: fmt.Sprintf(
			"Heuristic determination: mean element confidence %.2f, %d contradiction(s) in the record, standard %s.",
			avg, len(cf.Contradictions), standard,
		),
	}
}

// overallBurdenMet is true only when the claimant met the standard on
// every primary issue. Primary issues are selected by materiality, not
// position: any issue within 0.1 of the highest materiality score.
func overallBurdenMet(issues []LegalIssue, analyses []BurdenAnalysis) bool {
	if len(issues) == 0 || len(analyses) == 0 {
		return false
	}
	maxMateriality := 0.0
	for _, issue := range issues {
		if issue.MaterialityScore > maxMateriality {
			maxMateriality = issue.MaterialityScore
		}
	}
	byID := make(map[string]BurdenAnalysis, len(analyses))
	for _, ba := range analyses {
		byID[ba.IssueID] = ba
	}

	met := false
	for _, issue := range issues {
		if issue.MaterialityScore < maxMateriality-0.1 {
			continue
		}
		ba, ok := byID[issue.ID]
		if !ok || ba.IsMet == nil || !*ba.IsMet {
			return false
		}
		met = true
	}
	return met
}
