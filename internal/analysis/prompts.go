package analysis

import (
	"fmt"
	"strings"

	"dispute-backend/internal/facts"
)

// Input bounds for prompt construction. Provider context windows are
// finite and extraction output is not.
const (
	maxNarrativeChars  = 2000
	maxFactsPerParty   = 20
	maxDisputedFacts   = 10
	maxEvidenceEntries = 15
)

const systemInstruction = "You are a legal analyst for a consumer dispute-resolution service. " +
	"Answer with a single JSON object and no surrounding commentary. " +
	"Base every determination only on the facts provided."

func buildClassifyPrompt(cf facts.CaseFacts, legalContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Identify the legal issues in this dispute.\n\n")
	fmt.Fprintf(&b, "Jurisdiction: %s\nDispute type: %s\nClaimed amount: $%.2f\n\n", cf.Jurisdiction, cf.DisputeType, cf.ClaimedAmount)
	fmt.Fprintf(&b, "Case narrative:\n%s\n\n", truncate(cf.Description, maxNarrativeChars))

	writeFactList(&b, "Claimant facts", cf.ClaimantFacts)
	writeFactList(&b, "Respondent facts", cf.RespondentFacts)

	if len(cf.DisputedFacts) > 0 {
		b.WriteString("Disputed topics:\n")
		for i, df := range cf.DisputedFacts {
			if i >= maxDisputedFacts {
				break
			}
			fmt.Fprintf(&b, "- %s (claimant: %s / respondent: %s)\n", df.Topic, truncate(df.ClaimantPosition, 200), truncate(df.RespondentPosition, 200))
		}
		b.WriteString("\n")
	}
	if legalContext != "" {
		fmt.Fprintf(&b, "Relevant legal context:\n%s\n\n", truncate(legalContext, maxNarrativeChars))
	}

	b.WriteString(`Respond with JSON:
{
  "issues": [
    {
      "category": "breach_of_contract|consumer_protection|warranty|fraud|negligence|unjust_enrichment|statutory_violation|payment_dispute|service_dispute|property_damage",
      "description": "string",
      "elements": [{"name": "string", "description": "string", "supportingFactIds": ["id"], "opposingFactIds": ["id"], "confidence": 0.0}],
      "applicableStatutes": ["string"],
      "applicableCaseLaw": ["string"],
      "materialityScore": 0.0
    }
  ]
}`)
	return b.String()
}

func buildBurdenPrompt(cf facts.CaseFacts, issues []LegalIssue, legalContext string) string {
	var b strings.Builder
	b.WriteString("Determine whether the claimant meets the burden of proof on each issue.\n\n")
	fmt.Fprintf(&b, "Jurisdiction: %s\n", cf.Jurisdiction)
	fmt.Fprintf(&b, "Claimant credibility: %.2f, respondent credibility: %.2f\n\n", cf.Credibility[facts.PartyClaimant], cf.Credibility[facts.PartyRespondent])

	b.WriteString("Issues and required elements:\n")
	for _, issue := range issues {
		fmt.Fprintf(&b, "- [%s] %s (%s)\n", issue.ID, issue.Description, issue.Category)
		for _, el := range issue.Elements {
			fmt.Fprintf(&b, "  - element %q: %s\n", el.Name, truncate(el.Description, 200))
		}
	}
	b.WriteString("\n")

	writeFactList(&b, "Claimant facts", cf.ClaimantFacts)
	writeFactList(&b, "Respondent facts", cf.RespondentFacts)

	if len(cf.Contradictions) > 0 {
		b.WriteString("Contradictions found in the record:\n")
		for _, c := range cf.Contradictions {
			fmt.Fprintf(&b, "- %s (%s): %s\n", c.Topic, c.Severity, truncate(c.Analysis, 200))
		}
		b.WriteString("\n")
	}
	if legalContext != "" {
		fmt.Fprintf(&b, "Relevant legal context:\n%s\n\n", truncate(legalContext, maxNarrativeChars))
	}

	b.WriteString(`Respond with JSON:
{
  "analyses": [
    {
      "issueId": "string",
      "elements": [{"name": "string", "satisfied": true, "analysis": "string", "confidence": 0.0}],
      "isMet": true,
      "probability": 0.0,
      "reasoning": "string",
      "keyEvidence": ["fact id"],
      "weaknesses": ["string"]
    }
  ],
  "summary": "string"
}`)
	return b.String()
}

func buildDamagesPrompt(cf facts.CaseFacts, items []DamagesItem) string {
	var b strings.Builder
	b.WriteString("Assess the claimed damages and produce a supported breakdown.\n\n")
	fmt.Fprintf(&b, "Jurisdiction: %s\nClaimed total: $%.2f\n\n", cf.Jurisdiction, cf.ClaimedAmount)

	b.WriteString("Claimed items:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- %s: $%.2f\n", truncate(item.Description, 200), item.ClaimedAmount)
	}
	b.WriteString("\n")

	writeFactList(&b, "Claimant facts", cf.ClaimantFacts)
	writeFactList(&b, "Respondent facts", cf.RespondentFacts)

	if len(cf.Evidence) > 0 {
		b.WriteString("Evidence on file:\n")
		for i, ev := range cf.Evidence {
			if i >= maxEvidenceEntries {
				break
			}
			fmt.Fprintf(&b, "- [%s] %s (%s, submitted by %s): %s\n", ev.ID, ev.FileName, ev.DocumentType, ev.SubmittingParty, truncate(ev.Summary, 200))
		}
		b.WriteString("\n")
	}

	b.WriteString(`Respond with JSON:
{
  "items": [
    {
      "type": "compensatory|consequential|incidental|restitution|statutory|punitive",
      "description": "string",
      "claimedAmount": 0.0,
      "supportedAmount": 0.0,
      "adjustments": [{"type": "mitigation|limitation|offset", "amount": -0.0, "description": "string", "legalBasis": "string"}],
      "confidence": 0.0
    }
  ],
  "mitigationAnalysis": "string"
}`)
	return b.String()
}

func buildConfidencePrompt(issues []LegalIssue, burden *BurdenResult, damages *DamagesCalculation, contradictionCount, evidenceCount int) string {
	var b strings.Builder
	b.WriteString("Score the reliability of this completed legal analysis.\n\n")
	fmt.Fprintf(&b, "Issues analyzed: %d\n", len(issues))
	if burden != nil {
		fmt.Fprintf(&b, "Overall burden met: %t across %d determinations\n", burden.OverallMet, len(burden.Analyses))
	}
	if damages != nil {
		fmt.Fprintf(&b, "Damages: claimed $%.2f, recommended $%.2f across %d items\n", damages.ClaimedTotal, damages.RecommendedTotal, len(damages.Items))
	}
	fmt.Fprintf(&b, "Contradictions in record: %d\nEvidence documents: %d\n\n", contradictionCount, evidenceCount)

	b.WriteString(`Respond with JSON, every score in [0,1]:
{
  "evidenceQuality": 0.0,
  "precedentStrength": 0.0,
  "factualCertainty": 0.0,
  "jurisdictionalClarity": 0.0,
  "issueComplexity": 0.0
}`)
	return b.String()
}

func writeFactList(b *strings.Builder, label string, list []facts.Fact) {
	if len(list) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", label)
	for i, f := range list {
		if i >= maxFactsPerParty {
			break
		}
		fmt.Fprintf(b, "- [%s] %s", f.ID, truncate(f.Statement, 300))
		if f.Amount != nil {
			fmt.Fprintf(b, " (amount: $%.2f)", *f.Amount)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
