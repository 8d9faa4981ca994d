package analysis

import (
	"context"
	"strings"
	"time"

	"dispute-backend/internal/facts"
	"dispute-backend/internal/jurisdiction"
	"dispute-backend/internal/llm"
)

// DamagesCalculator produces the supported damages breakdown. The
// provider path parses a structured breakdown; the fallback supports
// each claimed item at a configured fraction of its claimed value.
type DamagesCalculator struct {
	Provider llm.Provider
	Model    string

	// FallbackSupportRate is the fraction of each claimed amount treated
	// as supported when the provider is unavailable. A policy constant,
	// not an empirical one, so it stays configurable.
	FallbackSupportRate float64
	FallbackConfidence  float64
}

type damagesResponse struct {
	Items []struct {
		Type            string  `json:"type"`
		Description     string  `json:"description"`
		ClaimedAmount   float64 `json:"claimedAmount"`
		SupportedAmount float64 `json:"supportedAmount"`
		Adjustments     []struct {
			Type        string  `json:"type"`
			Amount      float64 `json:"amount"`
			Description string  `json:"description"`
			LegalBasis  string  `json:"legalBasis"`
		} `json:"adjustments"`
		Confidence float64 `json:"confidence"`
	} `json:"items"`
	MitigationAnalysis string `json:"mitigationAnalysis"`
}

// Calculate returns the damages calculation, tokens consumed, and
// whether the fallback path was taken.
func (d *DamagesCalculator) Calculate(ctx context.Context, cf facts.CaseFacts, isContractClaim bool, breachDate *time.Time) (DamagesCalculation, int, bool) {
	claimed := claimedItems(cf)

	if d.Provider == nil {
		return d.fallbackCalculation(cf, claimed, isContractClaim, breachDate), 0, true
	}

	completion, err := d.Provider.Complete(ctx, llm.CompletionRequest{
		System:    systemInstruction,
		Prompt:    buildDamagesPrompt(cf, claimed),
		Model:     d.Model,
		MaxTokens: 2000,
	})
	if err != nil {
		return d.fallbackCalculation(cf, claimed, isContractClaim, breachDate), 0, true
	}

	var parsed damagesResponse
	if err := extractJSONObject(completion.Text, &parsed); err != nil || len(parsed.Items) == 0 {
		return d.fallbackCalculation(cf, claimed, isContractClaim, breachDate), completion.TokensUsed, true
	}

	calc := DamagesCalculation{
		MitigationAnalysis: strings.TrimSpace(parsed.MitigationAnalysis),
	}
	for _, raw := range parsed.Items {
		item := DamagesItem{
			Type:            NormalizeDamagesType(raw.Type),
			Description:     strings.TrimSpace(raw.Description),
			ClaimedAmount:   roundCents(raw.ClaimedAmount),
			SupportedAmount: roundCents(raw.SupportedAmount),
			Confidence:      clamp01(raw.Confidence),
		}
		if item.SupportedAmount < 0 {
			item.SupportedAmount = 0
		}
		item.CalculatedAmount = item.SupportedAmount
		for _, adj := range raw.Adjustments {
			adjustment := DamagesAdjustment{
				Type:        NormalizeAdjustmentType(adj.Type),
				Amount:      roundCents(adj.Amount),
				Description: strings.TrimSpace(adj.Description),
				LegalBasis:  strings.TrimSpace(adj.LegalBasis),
			}
			item.Adjustments = append(item.Adjustments, adjustment)
			item.CalculatedAmount = roundCents(item.CalculatedAmount + adjustment.Amount)
		}
		if item.CalculatedAmount < 0 {
			item.CalculatedAmount = 0
		}
		calc.Items = append(calc.Items, item)
	}

	calc.ClaimedTotal = claimedTotal(cf, calc.Items)
	d.attachInterest(&calc, cf, isContractClaim, breachDate)
	calc.Recompute()
	calc.Confidence = averageItemConfidence(calc.Items)
	return calc, completion.TokensUsed, false
}

// fallbackCalculation supports each claimed item at the configured rate.
// Deterministic: identical input yields identical output.
func (d *DamagesCalculator) fallbackCalculation(cf facts.CaseFacts, claimed []DamagesItem, isContractClaim bool, breachDate *time.Time) DamagesCalculation {
	rate := d.FallbackSupportRate
	if rate <= 0 || rate > 1 {
		rate = 0.5
	}
	confidence := d.FallbackConfidence
	if confidence <= 0 || confidence > 1 {
		confidence = 0.5
	}

	calc := DamagesCalculation{
		MitigationAnalysis: "Mitigation not assessed: damages estimated by the conservative support heuristic.",
	}
	for _, item := range claimed {
		supported := roundCents(item.ClaimedAmount * rate)
		calc.Items = append(calc.Items, DamagesItem{
			Type:             item.Type,
			Description:      item.Description,
			ClaimedAmount:    item.ClaimedAmount,
			SupportedAmount:  supported,
			CalculatedAmount: supported,
			Confidence:       confidence,
		})
	}
	calc.ClaimedTotal = claimedTotal(cf, calc.Items)
	d.attachInterest(&calc, cf, isContractClaim, breachDate)
	calc.Recompute()
	calc.Confidence = confidence
	return calc
}

// attachInterest computes prejudgment interest on the calculated
// principal when the claim is contract-based and a breach date exists.
func (d *DamagesCalculator) attachInterest(calc *DamagesCalculation, cf facts.CaseFacts, isContractClaim bool, breachDate *time.Time) {
	if !isContractClaim || breachDate == nil {
		return
	}
	var principal float64
	for _, item := range calc.Items {
		principal += item.CalculatedAmount
	}
	if principal <= 0 {
		return
	}
	now := time.Now().UTC()
	result := jurisdiction.CalculateInterest(cf.Jurisdiction, principal, *breachDate, now, true)
	if result.Days <= 0 {
		return
	}
	calc.Interest = &InterestCalculation{
		Principal:      roundCents(principal),
		AnnualRate:     result.Rate,
		StartDate:      *breachDate,
		EndDate:        now,
		Days:           result.Days,
		Amount:         result.Amount,
		StatutoryBasis: result.StatutoryBasis,
	}
}

// claimedItems derives the itemized claim from facts carrying a monetary
// amount, falling back to one "total claimed" item.
func claimedItems(cf facts.CaseFacts) []DamagesItem {
	var items []DamagesItem
	for _, f := range cf.ClaimantFacts {
		if f.Amount == nil || *f.Amount <= 0 {
			continue
		}
		items = append(items, DamagesItem{
			Type:          DamagesCompensatory,
			Description:   f.Statement,
			ClaimedAmount: roundCents(*f.Amount),
		})
	}
	if len(items) == 0 {
		items = append(items, DamagesItem{
			Type:          DamagesCompensatory,
			Description:   "Total claimed amount",
			ClaimedAmount: roundCents(cf.ClaimedAmount),
		})
	}
	return items
}

func claimedTotal(cf facts.CaseFacts, items []DamagesItem) float64 {
	var total float64
	for _, item := range items {
		total += item.ClaimedAmount
	}
	if total <= 0 {
		total = cf.ClaimedAmount
	}
	return roundCents(total)
}

func averageItemConfidence(items []DamagesItem) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, item := range items {
		sum += clamp01(item.Confidence)
	}
	return sum / float64(len(items))
}

// inferBreachDate picks the earliest dated claimant fact as the breach
// date. Absent any dated fact there is no interest accrual.
func inferBreachDate(cf facts.CaseFacts) *time.Time {
	var earliest *time.Time
	for _, f := range cf.ClaimantFacts {
		if f.Date == nil {
			continue
		}
		if earliest == nil || f.Date.Before(*earliest) {
			date := *f.Date
			earliest = &date
		}
	}
	return earliest
}
