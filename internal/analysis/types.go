package analysis

import (
	"math"
	"strings"
	"time"
)

// IssueCategory is the closed set of legal issue categories. Provider
// output is normalized against this set at the boundary; anything
// unrecognized maps to CategoryBreachOfContract.
type IssueCategory string

const (
	CategoryBreachOfContract   IssueCategory = "breach_of_contract"
	CategoryConsumerProtection IssueCategory = "consumer_protection"
	CategoryWarranty           IssueCategory = "warranty"
	CategoryFraud              IssueCategory = "fraud"
	CategoryNegligence         IssueCategory = "negligence"
	CategoryUnjustEnrichment   IssueCategory = "unjust_enrichment"
	CategoryStatutoryViolation IssueCategory = "statutory_violation"
	CategoryPaymentDispute     IssueCategory = "payment_dispute"
	CategoryServiceDispute     IssueCategory = "service_dispute"
	CategoryPropertyDamage     IssueCategory = "property_damage"
)

var issueCategories = map[IssueCategory]bool{
	CategoryBreachOfContract:   true,
	CategoryConsumerProtection: true,
	CategoryWarranty:           true,
	CategoryFraud:              true,
	CategoryNegligence:         true,
	CategoryUnjustEnrichment:   true,
	CategoryStatutoryViolation: true,
	CategoryPaymentDispute:     true,
	CategoryServiceDispute:     true,
	CategoryPropertyDamage:     true,
}

// NormalizeCategory maps a free-form category string onto the closed set.
func NormalizeCategory(raw string) IssueCategory {
	key := strings.ReplaceAll(strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(raw))), "_"), "-", "_")
	if issueCategories[IssueCategory(key)] {
		return IssueCategory(key)
	}
	return CategoryBreachOfContract
}

// LegalElement is one element a legal issue must satisfy. Satisfied is
// tri-state: nil means undetermined and is never coerced to a boolean.
type LegalElement struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Satisfied         *bool    `json:"satisfied"`
	SupportingFactIDs []string `json:"supportingFactIds,omitempty"`
	OpposingFactIDs   []string `json:"opposingFactIds,omitempty"`
	Analysis          string   `json:"analysis,omitempty"`
	Confidence        float64  `json:"confidence"`
}

// LegalIssue is one classified issue with its required elements.
// Invariant: Elements is never empty once classification completes.
type LegalIssue struct {
	ID                 string         `json:"id"`
	Category           IssueCategory  `json:"category"`
	Description        string         `json:"description"`
	Elements           []LegalElement `json:"elements"`
	ApplicableStatutes []string       `json:"applicableStatutes,omitempty"`
	ApplicableCaseLaw  []string       `json:"applicableCaseLaw,omitempty"`
	MaterialityScore   float64        `json:"materialityScore"`
}

// SatisfiedCount returns how many elements are affirmatively satisfied.
func (li LegalIssue) SatisfiedCount() int {
	count := 0
	for _, el := range li.Elements {
		if el.Satisfied != nil && *el.Satisfied {
			count++
		}
	}
	return count
}

// BurdenStandard mirrors the jurisdiction engine's standards.
type BurdenStandard string

const (
	StandardPreponderance      BurdenStandard = "preponderance"
	StandardClearAndConvincing BurdenStandard = "clear_and_convincing"
	StandardBeyondReasonable   BurdenStandard = "beyond_reasonable_doubt"
)

// NormalizeStandard maps a free-form standard string onto the closed set.
func NormalizeStandard(raw string) BurdenStandard {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_") {
	case string(StandardClearAndConvincing):
		return StandardClearAndConvincing
	case string(StandardBeyondReasonable):
		return StandardBeyondReasonable
	default:
		return StandardPreponderance
	}
}

// BurdenAnalysis is the per-issue burden-of-proof determination.
type BurdenAnalysis struct {
	Party            string         `json:"party"`
	Standard         BurdenStandard `json:"standard"`
	IssueID          string         `json:"issueId"`
	IssueDescription string         `json:"issueDescription"`
	IsMet            *bool          `json:"isMet"`
	Probability      float64        `json:"probability"`
	Reasoning        string         `json:"reasoning,omitempty"`
	KeyEvidence      []string       `json:"keyEvidence,omitempty"`
	Weaknesses       []string       `json:"weaknesses,omitempty"`
}

// BurdenResult is the burden phase output.
type BurdenResult struct {
	OverallMet bool             `json:"overallMet"`
	Analyses   []BurdenAnalysis `json:"analyses"`
	Summary    string           `json:"summary,omitempty"`
}

// DamagesType is the closed set of damages item types.
type DamagesType string

const (
	DamagesCompensatory  DamagesType = "compensatory"
	DamagesConsequential DamagesType = "consequential"
	DamagesIncidental    DamagesType = "incidental"
	DamagesRestitution   DamagesType = "restitution"
	DamagesStatutory     DamagesType = "statutory"
	DamagesPunitive      DamagesType = "punitive"
)

var damagesTypes = map[DamagesType]bool{
	DamagesCompensatory:  true,
	DamagesConsequential: true,
	DamagesIncidental:    true,
	DamagesRestitution:   true,
	DamagesStatutory:     true,
	DamagesPunitive:      true,
}

// NormalizeDamagesType maps a free-form type string onto the closed set.
func NormalizeDamagesType(raw string) DamagesType {
	key := DamagesType(strings.ToLower(strings.TrimSpace(raw)))
	if damagesTypes[key] {
		return key
	}
	return DamagesCompensatory
}

// AdjustmentType is the closed set of damages adjustment types.
type AdjustmentType string

const (
	AdjustmentMitigation   AdjustmentType = "mitigation"
	AdjustmentLimitation   AdjustmentType = "limitation"
	AdjustmentOffset       AdjustmentType = "offset"
	AdjustmentStatutoryCap AdjustmentType = "statutory_cap"
	AdjustmentInterest     AdjustmentType = "interest"
)

var adjustmentTypes = map[AdjustmentType]bool{
	AdjustmentMitigation:   true,
	AdjustmentLimitation:   true,
	AdjustmentOffset:       true,
	AdjustmentStatutoryCap: true,
	AdjustmentInterest:     true,
}

// NormalizeAdjustmentType maps a free-form type string onto the closed set.
func NormalizeAdjustmentType(raw string) AdjustmentType {
	key := AdjustmentType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_"))
	if adjustmentTypes[key] {
		return key
	}
	return AdjustmentLimitation
}

// DamagesAdjustment is a signed adjustment applied to an item.
type DamagesAdjustment struct {
	Type        AdjustmentType `json:"type"`
	Amount      float64        `json:"amount"`
	Description string         `json:"description,omitempty"`
	LegalBasis  string         `json:"legalBasis,omitempty"`
}

// DamagesItem is one claimed damages line. CalculatedAmount starts equal
// to SupportedAmount and is then mutated only by recorded adjustments.
type DamagesItem struct {
	Type             DamagesType         `json:"type"`
	Description      string              `json:"description"`
	ClaimedAmount    float64             `json:"claimedAmount"`
	SupportedAmount  float64             `json:"supportedAmount"`
	CalculatedAmount float64             `json:"calculatedAmount"`
	Adjustments      []DamagesAdjustment `json:"adjustments,omitempty"`
	Confidence       float64             `json:"confidence"`
}

// InterestCalculation is derived from principal and dates; it is
// recomputed whenever either changes, never edited in place.
type InterestCalculation struct {
	Principal      float64   `json:"principal"`
	AnnualRate     float64   `json:"annualRate"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Days           int       `json:"days"`
	Amount         float64   `json:"amount"`
	StatutoryBasis string    `json:"statutoryBasis,omitempty"`
}

// DamagesCalculation is the damages phase output. RecommendedTotal is
// always the sum of item CalculatedAmount plus interest, re-summed after
// every adjustment.
type DamagesCalculation struct {
	Items              []DamagesItem        `json:"items"`
	Interest           *InterestCalculation `json:"interest,omitempty"`
	MitigationAnalysis string               `json:"mitigationAnalysis,omitempty"`
	ClaimedTotal       float64              `json:"claimedTotal"`
	SupportedTotal     float64              `json:"supportedTotal"`
	RecommendedTotal   float64              `json:"recommendedTotal"`
	Confidence         float64              `json:"confidence"`
}

// Recompute re-sums supported and recommended totals from the items.
// This is the only way totals change; nothing does ad hoc arithmetic on
// a prior total.
func (dc *DamagesCalculation) Recompute() {
	var supported, calculated float64
	for _, item := range dc.Items {
		supported += item.SupportedAmount
		calculated += item.CalculatedAmount
	}
	if dc.Interest != nil {
		calculated += dc.Interest.Amount
	}
	dc.SupportedTotal = roundCents(supported)
	dc.RecommendedTotal = roundCents(calculated)
}

// ConclusionOfLaw is generated during conclusion synthesis and read-only
// once produced.
type ConclusionOfLaw struct {
	IssueID           string   `json:"issueId"`
	Conclusion        string   `json:"conclusion"`
	LegalBasis        []string `json:"legalBasis,omitempty"`
	SupportingFactIDs []string `json:"supportingFactIds,omitempty"`
	Confidence        float64  `json:"confidence"`
}

// ConfidenceFactors are the five weighted confidence inputs, each in [0,1].
type ConfidenceFactors struct {
	EvidenceQuality       float64 `json:"evidenceQuality"`
	PrecedentStrength     float64 `json:"precedentStrength"`
	FactualCertainty      float64 `json:"factualCertainty"`
	JurisdictionalClarity float64 `json:"jurisdictionalClarity"`
	IssueComplexity       float64 `json:"issueComplexity"`
}

// Prevailing party values for the award recommendation.
const (
	PrevailClaimant   = "claimant"
	PrevailRespondent = "respondent"
	PrevailSplit      = "split"
)

// AwardRecommendation is the synthesized outcome recommendation.
type AwardRecommendation struct {
	PrevailingParty string  `json:"prevailingParty"`
	Amount          float64 `json:"amount"`
	Rationale       string  `json:"rationale,omitempty"`
}

// LegalAnalysisResult is the complete outbound result contract.
type LegalAnalysisResult struct {
	CaseID            string              `json:"caseId"`
	JobID             string              `json:"jobId"`
	Status            string              `json:"status"`
	Issues            []LegalIssue        `json:"issues,omitempty"`
	Burden            *BurdenResult       `json:"burden,omitempty"`
	Damages           *DamagesCalculation `json:"damages,omitempty"`
	Conclusions       []ConclusionOfLaw   `json:"conclusions,omitempty"`
	OverallConfidence float64             `json:"overallConfidence"`
	Factors           ConfidenceFactors   `json:"confidenceFactors"`
	ConfidenceLevel   string              `json:"confidenceLevel,omitempty"`
	Citations         []string            `json:"citations,omitempty"`
	Award             AwardRecommendation `json:"award"`
	Jurisdiction      string              `json:"jurisdiction"`
	Model             string              `json:"model,omitempty"`
	TokensUsed        int                 `json:"tokensUsed"`
	ProcessingTimeMs  int64               `json:"processingTimeMs"`
	EstimatedCostUSD  float64             `json:"estimatedCostUsd"`
	ErrorMessage      string              `json:"errorMessage,omitempty"`
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

func boolPtr(v bool) *bool { return &v }

func roundCents(value float64) float64 {
	return math.Round(value*100) / 100
}
