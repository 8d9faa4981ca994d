package facts

import "time"

// Party identifiers used throughout the pipeline.
const (
	PartyClaimant   = "claimant"
	PartyRespondent = "respondent"
)

// Fact is one extracted statement attributed to a party.
type Fact struct {
	ID         string     `json:"id"`
	Statement  string     `json:"statement"`
	Category   string     `json:"category"`
	Date       *time.Time `json:"date,omitempty"`
	Amount     *float64   `json:"amount,omitempty"`
	Confidence float64    `json:"confidence"`
}

// DisputedFact captures a topic the parties disagree on.
type DisputedFact struct {
	Topic              string  `json:"topic"`
	ClaimantPosition   string  `json:"claimantPosition"`
	RespondentPosition string  `json:"respondentPosition"`
	Materiality        float64 `json:"materiality"`
}

// UndisputedFact is accepted by both parties.
type UndisputedFact struct {
	Statement   string  `json:"statement"`
	Materiality float64 `json:"materiality"`
}

// Contradiction flags inconsistent evidence or testimony.
type Contradiction struct {
	Topic    string `json:"topic"`
	Severity string `json:"severity"`
	Analysis string `json:"analysis"`
}

// EvidenceSummary describes one piece of submitted evidence.
type EvidenceSummary struct {
	ID              string   `json:"id"`
	FileName        string   `json:"fileName"`
	DocumentType    string   `json:"documentType,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	KeyPoints       []string `json:"keyPoints,omitempty"`
	SubmittingParty string   `json:"submittingParty"`
}

// CaseFacts is the output contract of the upstream fact-extraction phase
// and the sole input to the legal analysis pipeline. The pipeline reads
// it and never mutates it; fact references elsewhere are by id.
type CaseFacts struct {
	CaseID          string             `json:"caseId"`
	Jurisdiction    string             `json:"jurisdiction"`
	DisputeType     string             `json:"disputeType"`
	ClaimedAmount   float64            `json:"claimedAmount"`
	Description     string             `json:"description"`
	ClaimantFacts   []Fact             `json:"claimantFacts"`
	RespondentFacts []Fact             `json:"respondentFacts"`
	DisputedFacts   []DisputedFact     `json:"disputedFacts"`
	UndisputedFacts []UndisputedFact   `json:"undisputedFacts"`
	Contradictions  []Contradiction    `json:"contradictions"`
	Credibility     map[string]float64 `json:"credibility"`
	Evidence        []EvidenceSummary  `json:"evidence"`
	ExtractedAt     time.Time          `json:"extractedAt"`
}

// AllFacts returns claimant then respondent facts.
func (cf CaseFacts) AllFacts() []Fact {
	out := make([]Fact, 0, len(cf.ClaimantFacts)+len(cf.RespondentFacts))
	out = append(out, cf.ClaimantFacts...)
	out = append(out, cf.RespondentFacts...)
	return out
}

// CredibilityDelta returns claimant credibility minus respondent credibility.
func (cf CaseFacts) CredibilityDelta() float64 {
	return cf.Credibility[PartyClaimant] - cf.Credibility[PartyRespondent]
}
