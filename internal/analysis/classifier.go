package analysis

import (
	"context"
	"fmt"
	"strings"

	"dispute-backend/internal/facts"
	"dispute-backend/internal/jurisdiction"
	"dispute-backend/internal/llm"
)

// Classifier turns case facts into classified legal issues. The provider
// path is best-effort; the dispute-type fallback has zero external
// dependencies and is the pipeline's correctness floor.
type Classifier struct {
	Provider llm.Provider
	Model    string
}

type classifyResponse struct {
	Issues []struct {
		Category    string `json:"category"`
		Description string `json:"description"`
		Elements    []struct {
			Name              string   `json:"name"`
			Description       string   `json:"description"`
			SupportingFactIDs []string `json:"supportingFactIds"`
			OpposingFactIDs   []string `json:"opposingFactIds"`
			Confidence        float64  `json:"confidence"`
		} `json:"elements"`
		ApplicableStatutes []string `json:"applicableStatutes"`
		ApplicableCaseLaw  []string `json:"applicableCaseLaw"`
		MaterialityScore   float64  `json:"materialityScore"`
	} `json:"issues"`
}

// Classify returns the issue set, tokens consumed, and whether the
// fallback path was taken. It never fails: any provider or parse error
// degrades to the deterministic default issue set.
func (c *Classifier) Classify(ctx context.Context, cf facts.CaseFacts, legalContext string) ([]LegalIssue, int, bool) {
	if c.Provider == nil {
		return c.fallbackIssues(cf), 0, true
	}

	completion, err := c.Provider.Complete(ctx, llm.CompletionRequest{
		System:    systemInstruction,
		Prompt:    buildClassifyPrompt(cf, legalContext),
		Model:     c.Model,
		MaxTokens: 2000,
	})
	if err != nil {
		return c.fallbackIssues(cf), 0, true
	}

	var parsed classifyResponse
	if err := extractJSONObject(completion.Text, &parsed); err != nil || len(parsed.Issues) == 0 {
		return c.fallbackIssues(cf), completion.TokensUsed, true
	}

	issues := make([]LegalIssue, 0, len(parsed.Issues))
	for i, raw := range parsed.Issues {
		category := NormalizeCategory(raw.Category)
		issue := LegalIssue{
			ID:                fmt.Sprintf("issue-%d", i+1),
			Category:          category,
			Description:       strings.TrimSpace(raw.Description),
			ApplicableCaseLaw: trimAll(raw.ApplicableCaseLaw),
			MaterialityScore:  clamp01(raw.MaterialityScore),
		}
		if issue.Description == "" {
			issue.Description = describeCategory(category)
		}

		for _, el := range raw.Elements {
			name := strings.TrimSpace(el.Name)
			if name == "" {
				continue
			}
			issue.Elements = append(issue.Elements, LegalElement{
				Name:              name,
				Description:       strings.TrimSpace(el.Description),
				SupportingFactIDs: trimAll(el.SupportingFactIDs),
				OpposingFactIDs:   trimAll(el.OpposingFactIDs),
				Confidence:        clamp01(el.Confidence),
			})
		}
		if len(issue.Elements) == 0 {
			issue.Elements = canonicalElements(category)
		}

		issue.ApplicableStatutes = unionStatutes(
			trimAll(raw.ApplicableStatutes),
			jurisdiction.GetApplicableStatutes(cf.Jurisdiction, cf.DisputeType, []string{string(category)}),
		)
		issues = append(issues, issue)
	}

	return issues, completion.TokensUsed, false
}

// fallbackIssues derives a default issue set purely from dispute type and
// jurisdiction. Deterministic: identical input yields identical output.
func (c *Classifier) fallbackIssues(cf facts.CaseFacts) []LegalIssue {
	var categories []IssueCategory
	switch strings.ToUpper(strings.TrimSpace(cf.DisputeType)) {
	case "CONTRACT":
		categories = []IssueCategory{CategoryBreachOfContract}
	case "SERVICE", "SERVICES", "GOODS":
		categories = []IssueCategory{CategoryBreachOfContract, CategoryConsumerProtection}
	case "PAYMENT":
		categories = []IssueCategory{CategoryPaymentDispute}
	case "PROPERTY":
		categories = []IssueCategory{CategoryPropertyDamage}
	default:
		categories = []IssueCategory{CategoryBreachOfContract}
	}

	issues := make([]LegalIssue, 0, len(categories))
	for i, category := range categories {
		materiality := 0.8
		if i > 0 {
			materiality = 0.5
		}
		issues = append(issues, LegalIssue{
			ID:                 fmt.Sprintf("issue-%d", i+1),
			Category:           category,
			Description:        describeCategory(category),
			Elements:           canonicalElements(category),
			ApplicableStatutes: jurisdiction.GetApplicableStatutes(cf.Jurisdiction, cf.DisputeType, []string{string(category)}),
			MaterialityScore:   materiality,
		})
	}
	return issues
}

// canonicalElements returns the fixed element list for a category.
// Unrecognized categories get the generic liability/damages pair.
func canonicalElements(category IssueCategory) []LegalElement {
	names, ok := canonicalElementNames[category]
	if !ok {
		names = [][2]string{
			{"liability", "The respondent is legally responsible for the claimed harm"},
			{"damages", "The claimant suffered a quantifiable loss"},
		}
	}
	elements := make([]LegalElement, 0, len(names))
	for _, pair := range names {
		elements = append(elements, LegalElement{Name: pair[0], Description: pair[1]})
	}
	return elements
}

var canonicalElementNames = map[IssueCategory][][2]string{
	CategoryBreachOfContract: {
		{"contract formation", "A valid contract existed between the parties"},
		{"claimant performance", "The claimant performed or was excused from performing"},
		{"breach", "The respondent failed to perform as agreed"},
		{"resulting damages", "The breach caused the claimant's loss"},
	},
	CategoryFraud: {
		{"misrepresentation", "The respondent made a false statement of material fact"},
		{"knowledge of falsity", "The respondent knew the statement was false"},
		{"intent to induce reliance", "The statement was made to induce the claimant to act"},
		{"justifiable reliance", "The claimant reasonably relied on the statement"},
		{"resulting damages", "The reliance caused the claimant's loss"},
	},
	CategoryConsumerProtection: {
		{"deceptive act or practice", "The respondent engaged in a deceptive or unfair practice"},
		{"consumer transaction", "The conduct arose from a consumer transaction"},
		{"causation", "The practice caused the claimant's harm"},
		{"injury", "The claimant suffered an ascertainable loss"},
	},
	CategoryWarranty: {
		{"warranty existence", "An express or implied warranty covered the goods or services"},
		{"breach of warranty", "The goods or services failed to conform to the warranty"},
		{"notice of breach", "The claimant gave timely notice of the nonconformity"},
		{"resulting damages", "The nonconformity caused the claimant's loss"},
	},
	CategoryNegligence: {
		{"duty of care", "The respondent owed the claimant a duty of care"},
		{"breach of duty", "The respondent's conduct fell below the standard of care"},
		{"causation", "The breach proximately caused the harm"},
		{"damages", "The claimant suffered actual harm"},
	},
	CategoryUnjustEnrichment: {
		{"benefit conferred", "The claimant conferred a benefit on the respondent"},
		{"appreciation of benefit", "The respondent knew of and accepted the benefit"},
		{"inequitable retention", "Retaining the benefit without payment would be unjust"},
	},
}

func describeCategory(category IssueCategory) string {
	switch category {
	case CategoryBreachOfContract:
		return "Whether the respondent breached the parties' agreement"
	case CategoryConsumerProtection:
		return "Whether the respondent engaged in an unfair or deceptive practice"
	case CategoryWarranty:
		return "Whether the goods or services conformed to the applicable warranty"
	case CategoryFraud:
		return "Whether the respondent committed fraud"
	case CategoryNegligence:
		return "Whether the respondent was negligent"
	case CategoryUnjustEnrichment:
		return "Whether the respondent was unjustly enriched"
	case CategoryStatutoryViolation:
		return "Whether the respondent violated an applicable statute"
	case CategoryPaymentDispute:
		return "Whether payment is owed between the parties"
	case CategoryServiceDispute:
		return "Whether the services rendered met the agreed standard"
	case CategoryPropertyDamage:
		return "Whether the respondent is liable for damage to property"
	default:
		return "Whether the respondent is liable to the claimant"
	}
}

func unionStatutes(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, statute := range list {
			if statute == "" || seen[statute] {
				continue
			}
			seen[statute] = true
			out = append(out, statute)
		}
	}
	return out
}

func trimAll(list []string) []string {
	var out []string
	for _, item := range list {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
