package analysis

import (
	"context"
	"reflect"
	"testing"

	"dispute-backend/internal/facts"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want IssueCategory
	}{
		{"breach_of_contract", CategoryBreachOfContract},
		{"Breach of Contract", CategoryBreachOfContract},
		{"consumer-protection", CategoryConsumerProtection},
		{"  FRAUD  ", CategoryFraud},
		{"something novel", CategoryBreachOfContract},
		{"", CategoryBreachOfContract},
	}
	for _, tt := range tests {
		if got := NormalizeCategory(tt.raw); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestClassifyFallbackWithoutProvider(t *testing.T) {
	c := &Classifier{}
	cf := facts.CaseFacts{
		CaseID:        "case-1",
		Jurisdiction:  "US-CA",
		DisputeType:   "CONTRACT",
		ClaimedAmount: 7500,
	}

	issues, tokens, fellBack := c.Classify(context.Background(), cf, "")
	if !fellBack {
		t.Fatal("nil provider must take the fallback path")
	}
	if tokens != 0 {
		t.Fatalf("expected 0 tokens, got %d", tokens)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue for CONTRACT, got %d", len(issues))
	}
	issue := issues[0]
	if issue.ID != "issue-1" || issue.Category != CategoryBreachOfContract {
		t.Fatalf("unexpected issue %+v", issue)
	}
	if len(issue.Elements) != 4 {
		t.Fatalf("expected 4 contract elements, got %d", len(issue.Elements))
	}
	if issue.MaterialityScore != 0.8 {
		t.Fatalf("expected materiality 0.8, got %v", issue.MaterialityScore)
	}
	if len(issue.ApplicableStatutes) == 0 {
		t.Fatal("expected California contract statutes")
	}

	// Deterministic: identical input yields identical output.
	again, _, _ := c.Classify(context.Background(), cf, "")
	if !reflect.DeepEqual(issues, again) {
		t.Fatal("fallback classification should be deterministic")
	}
}

func TestClassifyFallbackByDisputeType(t *testing.T) {
	tests := []struct {
		disputeType string
		want        []IssueCategory
	}{
		{"CONTRACT", []IssueCategory{CategoryBreachOfContract}},
		{"GOODS", []IssueCategory{CategoryBreachOfContract, CategoryConsumerProtection}},
		{"SERVICES", []IssueCategory{CategoryBreachOfContract, CategoryConsumerProtection}},
		{"PAYMENT", []IssueCategory{CategoryPaymentDispute}},
		{"PROPERTY", []IssueCategory{CategoryPropertyDamage}},
		{"UNKNOWN", []IssueCategory{CategoryBreachOfContract}},
	}
	c := &Classifier{}
	for _, tt := range tests {
		issues, _, _ := c.Classify(context.Background(), facts.CaseFacts{DisputeType: tt.disputeType, Jurisdiction: "US-CA"}, "")
		var got []IssueCategory
		for _, issue := range issues {
			got = append(got, issue.Category)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("dispute type %q: categories %v, want %v", tt.disputeType, got, tt.want)
		}
	}
}

func TestClassifyFallsBackOnProviderError(t *testing.T) {
	c := &Classifier{Provider: failingProvider{err: context.DeadlineExceeded}}
	issues, tokens, fellBack := c.Classify(context.Background(), facts.CaseFacts{DisputeType: "CONTRACT", Jurisdiction: "US-CA"}, "")
	if !fellBack || tokens != 0 {
		t.Fatalf("expected fallback with 0 tokens, got fellBack=%v tokens=%d", fellBack, tokens)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 fallback issue, got %d", len(issues))
	}
}

func TestClassifyFallsBackOnUnparseableResponse(t *testing.T) {
	c := &Classifier{Provider: &fakeProvider{responses: []fakeResponse{{text: "I cannot help with that.", tokens: 90}}}}
	issues, tokens, fellBack := c.Classify(context.Background(), facts.CaseFacts{DisputeType: "CONTRACT", Jurisdiction: "US-CA"}, "")
	if !fellBack {
		t.Fatal("unparseable response must fall back")
	}
	// Tokens were still consumed and must be reported.
	if tokens != 90 {
		t.Fatalf("expected 90 tokens, got %d", tokens)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 fallback issue, got %d", len(issues))
	}
}

func TestClassifyNormalizesProviderOutput(t *testing.T) {
	response := `{"issues":[{
		"category": "Consumer Protection",
		"description": "  Deceptive sales practice  ",
		"elements": [
			{"name": "deceptive act or practice", "confidence": 1.7},
			{"name": "", "confidence": 0.5},
			{"name": "injury", "confidence": -0.5}
		],
		"applicableStatutes": [" Cal. Civ. Code § 1750 (CLRA) ", ""],
		"materialityScore": 2.0
	}]}`
	c := &Classifier{Provider: &fakeProvider{responses: []fakeResponse{{text: response, tokens: 150}}}}
	cf := facts.CaseFacts{DisputeType: "GOODS", Jurisdiction: "US-CA"}

	issues, tokens, fellBack := c.Classify(context.Background(), cf, "")
	if fellBack {
		t.Fatal("valid provider response should not fall back")
	}
	if tokens != 150 {
		t.Fatalf("expected 150 tokens, got %d", tokens)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	issue := issues[0]
	if issue.ID != "issue-1" {
		t.Fatalf("expected sequential id, got %q", issue.ID)
	}
	if issue.Category != CategoryConsumerProtection {
		t.Fatalf("category = %q", issue.Category)
	}
	if issue.Description != "Deceptive sales practice" {
		t.Fatalf("description = %q", issue.Description)
	}
	// Blank-named element dropped, confidences clamped to [0,1].
	if len(issue.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(issue.Elements))
	}
	if issue.Elements[0].Confidence != 1 || issue.Elements[1].Confidence != 0 {
		t.Fatalf("confidences not clamped: %v, %v", issue.Elements[0].Confidence, issue.Elements[1].Confidence)
	}
	if issue.MaterialityScore != 1 {
		t.Fatalf("materiality not clamped: %v", issue.MaterialityScore)
	}
	// Provider statute unioned with jurisdiction statutes, no duplicate CLRA entry.
	seen := map[string]int{}
	for _, statute := range issue.ApplicableStatutes {
		seen[statute]++
	}
	if seen["Cal. Civ. Code § 1750 (CLRA)"] != 1 {
		t.Fatalf("expected CLRA exactly once, statutes = %v", issue.ApplicableStatutes)
	}
}

func TestClassifyProviderIssueWithoutElementsGetsCanonicalSet(t *testing.T) {
	response := `{"issues":[{"category": "fraud", "description": "Misrepresented condition"}]}`
	c := &Classifier{Provider: &fakeProvider{responses: []fakeResponse{{text: response, tokens: 40}}}}

	issues, _, fellBack := c.Classify(context.Background(), facts.CaseFacts{DisputeType: "CONTRACT", Jurisdiction: "US-CA"}, "")
	if fellBack {
		t.Fatal("should not fall back")
	}
	if len(issues) != 1 || len(issues[0].Elements) != 5 {
		t.Fatalf("expected the canonical 5 fraud elements, got %+v", issues)
	}
}
