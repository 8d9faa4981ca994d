package analysis

import (
	"strings"
	"testing"
)

func satisfiedIssue(id string, category IssueCategory, satisfied ...bool) LegalIssue {
	issue := LegalIssue{ID: id, Category: category, MaterialityScore: 0.8}
	for i, s := range satisfied {
		el := LegalElement{Name: string(rune('a' + i)), Confidence: 0.7}
		el.Satisfied = boolPtr(s)
		issue.Elements = append(issue.Elements, el)
	}
	return issue
}

func TestSynthesizeConclusionsFullySatisfied(t *testing.T) {
	issue := satisfiedIssue("issue-1", CategoryBreachOfContract, true, true, true)
	issue.ApplicableStatutes = []string{"Cal. Civ. Code § 1549"}
	burden := &BurdenResult{Analyses: []BurdenAnalysis{{IssueID: "issue-1", Probability: 0.8}}}

	conclusions := synthesizeConclusions([]LegalIssue{issue}, burden, nil)
	if len(conclusions) != 1 {
		t.Fatalf("conclusions = %d", len(conclusions))
	}
	c := conclusions[0]
	if !strings.Contains(c.Conclusion, "established") || strings.Contains(c.Conclusion, "partially") {
		t.Fatalf("conclusion %q", c.Conclusion)
	}
	if c.Confidence != 0.8 {
		t.Fatalf("confidence = %v", c.Confidence)
	}
	if len(c.LegalBasis) != 1 {
		t.Fatalf("legal basis %v", c.LegalBasis)
	}
}

func TestSynthesizeConclusionsPartialNamesUnsatisfiedElements(t *testing.T) {
	issue := LegalIssue{
		ID:       "issue-1",
		Category: CategoryBreachOfContract,
		Elements: []LegalElement{
			{Name: "contract formation", Satisfied: boolPtr(true)},
			{Name: "breach", Satisfied: boolPtr(false)},
			{Name: "resulting damages"}, // undetermined
		},
	}

	conclusions := synthesizeConclusions([]LegalIssue{issue}, nil, nil)
	text := conclusions[0].Conclusion
	if !strings.Contains(text, "partially established") {
		t.Fatalf("conclusion %q", text)
	}
	if !strings.Contains(text, "breach") || !strings.Contains(text, "resulting damages") {
		t.Fatalf("unsatisfied elements not named: %q", text)
	}
	if strings.Contains(text, "contract formation") {
		t.Fatalf("satisfied element listed as unsatisfied: %q", text)
	}
}

func TestSynthesizeConclusionsAppendsDamages(t *testing.T) {
	damages := &DamagesCalculation{
		ClaimedTotal:     7500,
		RecommendedTotal: 3750,
		Confidence:       0.5,
		Interest: &InterestCalculation{
			Amount:         375,
			Days:           365,
			AnnualRate:     0.10,
			StatutoryBasis: "Cal. Civ. Code § 3289",
		},
	}
	conclusions := synthesizeConclusions(nil, nil, damages)
	if len(conclusions) != 1 || conclusions[0].IssueID != "damages" {
		t.Fatalf("conclusions %+v", conclusions)
	}
	if !strings.Contains(conclusions[0].Conclusion, "prejudgment interest") {
		t.Fatalf("interest not mentioned: %q", conclusions[0].Conclusion)
	}
	if len(conclusions[0].LegalBasis) != 1 || conclusions[0].LegalBasis[0] != "Cal. Civ. Code § 3289" {
		t.Fatalf("legal basis %v", conclusions[0].LegalBasis)
	}
}

func TestRecommendAwardClaimantPrevails(t *testing.T) {
	issues := []LegalIssue{satisfiedIssue("issue-1", CategoryBreachOfContract, true, true)}
	burden := &BurdenResult{OverallMet: true}
	damages := &DamagesCalculation{RecommendedTotal: 3750}

	award := recommendAward(issues, burden, damages)
	if award.PrevailingParty != PrevailClaimant {
		t.Fatalf("prevailing = %q", award.PrevailingParty)
	}
	if award.Amount != 3750 {
		t.Fatalf("amount = %v", award.Amount)
	}
}

func TestRecommendAwardSplitOnPartialElements(t *testing.T) {
	issues := []LegalIssue{satisfiedIssue("issue-1", CategoryBreachOfContract, true, false)}
	burden := &BurdenResult{OverallMet: true}
	damages := &DamagesCalculation{RecommendedTotal: 1000}

	award := recommendAward(issues, burden, damages)
	if award.PrevailingParty != PrevailSplit || award.Amount != 1000 {
		t.Fatalf("award %+v", award)
	}
}

func TestRecommendAwardSplitOnSupportedDamagesOnly(t *testing.T) {
	issues := []LegalIssue{satisfiedIssue("issue-1", CategoryBreachOfContract, false, false)}
	burden := &BurdenResult{OverallMet: false}
	damages := &DamagesCalculation{RecommendedTotal: 500}

	award := recommendAward(issues, burden, damages)
	if award.PrevailingParty != PrevailSplit || award.Amount != 500 {
		t.Fatalf("award %+v", award)
	}
}

func TestRecommendAwardRespondentPrevails(t *testing.T) {
	issues := []LegalIssue{satisfiedIssue("issue-1", CategoryBreachOfContract, false)}
	award := recommendAward(issues, &BurdenResult{OverallMet: false}, &DamagesCalculation{})
	if award.PrevailingParty != PrevailRespondent {
		t.Fatalf("prevailing = %q", award.PrevailingParty)
	}
	if award.Amount != 0 {
		t.Fatalf("amount = %v", award.Amount)
	}
}
