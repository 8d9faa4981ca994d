package analysis

import (
	"fmt"

	"dispute-backend/internal/jurisdiction"
)

// applyJurisdictionLimits enforces statutory caps, the punitive
// multiplier, and statutory minimums on a damages calculation. Every
// application re-sums the totals; nothing adjusts a prior total in
// place. Applied by the orchestrator after the damages phase so the
// calculator stays independent of jurisdiction content.
func applyJurisdictionLimits(calc *DamagesCalculation, code, disputeType string, issues []LegalIssue) {
	if calc == nil {
		return
	}
	applyStatutoryCaps(calc, code, disputeType)
	applyPunitiveCap(calc, code)
	calc.Recompute()
	applyStatutoryMinimums(calc, code, issues)
	calc.Recompute()
}

// applyStatutoryCaps truncates statutory-type items above the
// jurisdiction's configured maximum, recording the truncation.
func applyStatutoryCaps(calc *DamagesCalculation, code, disputeType string) {
	caps := jurisdiction.GetDamagesCaps(code, disputeType)
	if len(caps) == 0 {
		return
	}
	for i := range calc.Items {
		item := &calc.Items[i]
		for _, cap := range caps {
			if NormalizeDamagesType(cap.DamagesType) != item.Type {
				continue
			}
			if item.CalculatedAmount <= cap.MaxAmount {
				continue
			}
			delta := roundCents(cap.MaxAmount - item.CalculatedAmount)
			item.Adjustments = append(item.Adjustments, DamagesAdjustment{
				Type:        AdjustmentStatutoryCap,
				Amount:      delta,
				Description: fmt.Sprintf("Capped at statutory maximum of $%.2f", cap.MaxAmount),
				LegalBasis:  cap.Statute,
			})
			item.CalculatedAmount = cap.MaxAmount
			break
		}
	}
}

// applyPunitiveCap limits punitive items to the jurisdiction's multiple
// of the compensatory total.
func applyPunitiveCap(calc *DamagesCalculation, code string) {
	multiplier := jurisdiction.PunitiveCapMultiplier(code)
	if multiplier <= 0 {
		return
	}

	var compensatory float64
	for _, item := range calc.Items {
		if item.Type == DamagesCompensatory {
			compensatory += item.CalculatedAmount
		}
	}
	limit := roundCents(compensatory * multiplier)

	for i := range calc.Items {
		item := &calc.Items[i]
		if item.Type != DamagesPunitive || item.CalculatedAmount <= limit {
			continue
		}
		delta := roundCents(limit - item.CalculatedAmount)
		item.Adjustments = append(item.Adjustments, DamagesAdjustment{
			Type:        AdjustmentStatutoryCap,
			Amount:      delta,
			Description: fmt.Sprintf("Punitive damages capped at %.0fx the compensatory total of $%.2f", multiplier, compensatory),
		})
		item.CalculatedAmount = limit
	}
}

// applyStatutoryMinimums appends a synthetic statutory item raising the
// recommended total to the jurisdiction's floor when a qualifying issue
// category is present and the computed total falls short.
func applyStatutoryMinimums(calc *DamagesCalculation, code string, issues []LegalIssue) {
	for _, issue := range issues {
		for _, rule := range jurisdiction.GetSpecialRules(code, string(issue.Category)) {
			if rule.Kind != "minimum_recovery" {
				continue
			}
			if calc.RecommendedTotal >= rule.MinimumAmount {
				continue
			}
			shortfall := roundCents(rule.MinimumAmount - calc.RecommendedTotal)
			calc.Items = append(calc.Items, DamagesItem{
				Type: DamagesStatutory,
				Description: fmt.Sprintf(
					"Statutory minimum recovery under %s raises the award to $%.2f", rule.Statute, rule.MinimumAmount,
				),
				ClaimedAmount:    0,
				SupportedAmount:  shortfall,
				CalculatedAmount: shortfall,
				Confidence:       0.9,
			})
			calc.Recompute()
		}
	}
}
