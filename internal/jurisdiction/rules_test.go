package jurisdiction

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func TestGetRulesUnknownCode(t *testing.T) {
	if _, err := GetRules("US-ZZ"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if Supported("US-ZZ") {
		t.Fatal("US-ZZ should not be supported")
	}
}

func TestGetRulesNormalizesCode(t *testing.T) {
	rules, err := GetRules("  us-ca ")
	if err != nil {
		t.Fatalf("GetRules: %v", err)
	}
	if rules.Name != "California" {
		t.Fatalf("expected California, got %q", rules.Name)
	}
}

func TestCalculateInterestSimple(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0) // 365 days

	res := CalculateInterest("US-CA", 10000, start, end, true)
	if res.Days != 365 {
		t.Fatalf("expected 365 days, got %d", res.Days)
	}
	if res.Rate != 0.10 {
		t.Fatalf("expected contract rate 0.10, got %v", res.Rate)
	}
	// 10000 * 0.10 * 365/365
	if res.Amount != 1000 {
		t.Fatalf("expected 1000 interest, got %v", res.Amount)
	}
	if res.StatutoryBasis != "Cal. Civ. Code § 3289" {
		t.Fatalf("unexpected basis %q", res.StatutoryBasis)
	}
}

func TestCalculateInterestNonContractRate(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 100)

	res := CalculateInterest("US-CA", 5000, start, end, false)
	if res.Rate != 0.07 {
		t.Fatalf("expected non-contract rate 0.07, got %v", res.Rate)
	}
	want := math.Round(5000*0.07*100/365*100) / 100
	if res.Amount != want {
		t.Fatalf("expected %v, got %v", want, res.Amount)
	}
}

func TestCalculateInterestReversedRange(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, -3, 0)

	res := CalculateInterest("US-CA", 10000, start, end, true)
	if res.Days != 0 || res.Amount != 0 {
		t.Fatalf("reversed range should yield zero interest, got days=%d amount=%v", res.Days, res.Amount)
	}
}

func TestCalculateInterestUnknownJurisdictionUsesDefault(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	res := CalculateInterest("US-ZZ", 1000, start, start.AddDate(1, 0, 0), true)
	if res.Rate != 0.05 {
		t.Fatalf("expected default rate 0.05, got %v", res.Rate)
	}
}

func TestCalculateInterestNegativePrincipal(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	res := CalculateInterest("US-CA", -500, start, start.AddDate(1, 0, 0), true)
	if res.Amount != 0 {
		t.Fatalf("negative principal should yield zero interest, got %v", res.Amount)
	}
}

func TestGetApplicableStatutesDeduplicates(t *testing.T) {
	// "contract" dispute type and breach_of_contract category both cite
	// Cal. Civ. Code § 1549; it must appear once.
	got := GetApplicableStatutes("US-CA", "CONTRACT", []string{"breach_of_contract"})
	want := []string{"Cal. Civ. Code § 1549", "Cal. Civ. Code § 3300"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("statutes = %v, want %v", got, want)
	}
}

func TestGetApplicableStatutesUnknownJurisdiction(t *testing.T) {
	if got := GetApplicableStatutes("US-ZZ", "CONTRACT", []string{"fraud"}); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestGetBurdenStandard(t *testing.T) {
	tests := []struct {
		code     string
		category string
		want     string
	}{
		{"US-CA", "fraud", StandardClearAndConvincing},
		{"US-CA", "FRAUD", StandardClearAndConvincing},
		{"US-CA", "breach_of_contract", StandardPreponderance},
		{"UK", "fraud", StandardPreponderance},
		{"US-ZZ", "fraud", StandardPreponderance},
	}
	for _, tt := range tests {
		if got := GetBurdenStandard(tt.code, tt.category); got != tt.want {
			t.Errorf("GetBurdenStandard(%q, %q) = %q, want %q", tt.code, tt.category, got, tt.want)
		}
	}
}

func TestCheckStatuteOfLimitations(t *testing.T) {
	recent := time.Now().UTC().AddDate(-1, 0, 0)
	res := CheckStatuteOfLimitations("US-CA", "breach_of_contract", recent)
	if !res.WithinLimit {
		t.Fatal("one-year-old contract claim should be within the four-year limit")
	}
	if res.LimitYears != 4 {
		t.Fatalf("expected 4-year limit, got %d", res.LimitYears)
	}

	stale := time.Now().UTC().AddDate(-5, 0, 0)
	res = CheckStatuteOfLimitations("US-CA", "breach_of_contract", stale)
	if res.WithinLimit {
		t.Fatal("five-year-old contract claim should be outside the limit")
	}

	// Unknown category falls back to the default window.
	res = CheckStatuteOfLimitations("US-CA", "something_else", recent)
	if res.LimitYears != 4 {
		t.Fatalf("expected default 4-year limit, got %d", res.LimitYears)
	}
}

func TestGetDamagesCaps(t *testing.T) {
	caps := GetDamagesCaps("US-CA", "CONTRACT")
	if len(caps) != 1 {
		t.Fatalf("expected 1 cap, got %d", len(caps))
	}
	if caps[0].DamagesType != "statutory" || caps[0].MaxAmount != 10000 {
		t.Fatalf("unexpected cap %+v", caps[0])
	}

	if got := GetDamagesCaps("US-ZZ", "CONTRACT"); got != nil {
		t.Fatalf("expected nil for unknown jurisdiction, got %v", got)
	}
}

func TestGetSpecialRules(t *testing.T) {
	rules := GetSpecialRules("US-CA", "consumer_protection")
	if len(rules) != 1 {
		t.Fatalf("expected 1 special rule, got %d", len(rules))
	}
	if rules[0].Kind != "minimum_recovery" || rules[0].MinimumAmount != 1000 {
		t.Fatalf("unexpected rule %+v", rules[0])
	}
	if got := GetSpecialRules("US-CA", "fraud"); got != nil {
		t.Fatalf("expected nil for fraud, got %v", got)
	}
}

func TestPunitiveCapMultiplier(t *testing.T) {
	if got := PunitiveCapMultiplier("US-CA"); got != 3 {
		t.Fatalf("US-CA multiplier = %v, want 3", got)
	}
	if got := PunitiveCapMultiplier("UK"); got != 0 {
		t.Fatalf("UK multiplier = %v, want 0", got)
	}
	if got := PunitiveCapMultiplier("US-ZZ"); got != 0 {
		t.Fatalf("unknown multiplier = %v, want 0", got)
	}
}

func TestClarityScore(t *testing.T) {
	if got := ClarityScore("US-CA"); got != 0.85 {
		t.Fatalf("US-CA clarity = %v, want 0.85", got)
	}
	if got := ClarityScore("US-ZZ"); got != 0.5 {
		t.Fatalf("unknown clarity = %v, want 0.5", got)
	}
}
