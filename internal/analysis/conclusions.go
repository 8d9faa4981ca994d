package analysis

import (
	"fmt"
	"strings"
)

// synthesizeConclusions produces conclusions of law from the merged
// issue set and burden result. No external call: this is a deterministic
// rendering of what earlier phases established.
func synthesizeConclusions(issues []LegalIssue, burden *BurdenResult, damages *DamagesCalculation) []ConclusionOfLaw {
	probabilities := make(map[string]float64)
	if burden != nil {
		for _, ba := range burden.Analyses {
			probabilities[ba.IssueID] = ba.Probability
		}
	}

	var conclusions []ConclusionOfLaw
	for _, issue := range issues {
		satisfied := issue.SatisfiedCount()
		total := len(issue.Elements)

		var text string
		switch {
		case total > 0 && satisfied == total:
			text = fmt.Sprintf("The claim of %s is established: all %d required elements are satisfied.", categoryLabel(issue.Category), total)
		case satisfied > 0:
			text = fmt.Sprintf(
				"The claim of %s is partially established: the following elements remain unsatisfied or undetermined: %s.",
				categoryLabel(issue.Category), strings.Join(unsatisfiedElementNames(issue), ", "),
			)
		default:
			text = fmt.Sprintf("The burden of proof was not met on the claim of %s.", categoryLabel(issue.Category))
		}

		conclusions = append(conclusions, ConclusionOfLaw{
			IssueID:           issue.ID,
			Conclusion:        text,
			LegalBasis:        append([]string(nil), issue.ApplicableStatutes...),
			SupportingFactIDs: supportingFactIDs(issue),
			Confidence:        clamp01(probabilities[issue.ID]),
		})
	}

	if damages != nil && damages.RecommendedTotal > 0 {
		conclusion := ConclusionOfLaw{
			IssueID: "damages",
			Conclusion: fmt.Sprintf(
				"Damages of $%.2f are supported on the record, against $%.2f claimed.",
				damages.RecommendedTotal, damages.ClaimedTotal,
			),
			Confidence: clamp01(damages.Confidence),
		}
		if damages.Interest != nil {
			conclusion.Conclusion += fmt.Sprintf(
				" This includes $%.2f prejudgment interest (%d days at %.1f%%).",
				damages.Interest.Amount, damages.Interest.Days, damages.Interest.AnnualRate*100,
			)
			if damages.Interest.StatutoryBasis != "" {
				conclusion.LegalBasis = []string{damages.Interest.StatutoryBasis}
			}
		}
		conclusions = append(conclusions, conclusion)
	}

	return conclusions
}

// recommendAward decides the prevailing party over the full issue set.
// The claimant prevails outright only when the overall burden is met and
// every issue's elements are fully satisfied.
func recommendAward(issues []LegalIssue, burden *BurdenResult, damages *DamagesCalculation) AwardRecommendation {
	burdenMet := burden != nil && burden.OverallMet
	allSatisfied := len(issues) > 0
	anySatisfied := false
	for _, issue := range issues {
		satisfied := issue.SatisfiedCount()
		if satisfied < len(issue.Elements) {
			allSatisfied = false
		}
		if satisfied > 0 {
			anySatisfied = true
		}
	}
	damagesSupported := damages != nil && damages.RecommendedTotal > 0

	award := AwardRecommendation{PrevailingParty: PrevailRespondent}
	switch {
	case burdenMet && allSatisfied:
		award.PrevailingParty = PrevailClaimant
		award.Rationale = "The claimant met the burden of proof and every required element is satisfied."
	case burdenMet && anySatisfied:
		award.PrevailingParty = PrevailSplit
		award.Rationale = "The claimant met the burden of proof on the primary issues, but some elements remain unsatisfied."
	case burdenMet:
		award.PrevailingParty = PrevailSplit
		award.Rationale = "The claimant met the burden of proof, though element-level findings are incomplete."
	case damagesSupported:
		award.PrevailingParty = PrevailSplit
		award.Rationale = "The burden of proof was not fully met, but part of the claimed damages is supported by the record."
	default:
		award.Rationale = "The claimant did not meet the burden of proof and no damages are supported."
	}

	if award.PrevailingParty != PrevailRespondent && damages != nil {
		award.Amount = damages.RecommendedTotal
	}
	return award
}

func categoryLabel(category IssueCategory) string {
	return strings.ReplaceAll(string(category), "_", " ")
}

func unsatisfiedElementNames(issue LegalIssue) []string {
	var names []string
	for _, el := range issue.Elements {
		if el.Satisfied == nil || !*el.Satisfied {
			names = append(names, el.Name)
		}
	}
	return names
}

func supportingFactIDs(issue LegalIssue) []string {
	seen := make(map[string]bool)
	var out []string
	for _, el := range issue.Elements {
		for _, id := range el.SupportingFactIDs {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
