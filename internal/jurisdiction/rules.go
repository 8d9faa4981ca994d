package jurisdiction

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"
)

// ErrNotFound indicates the jurisdiction has no explicit rule set. Callers
// must treat this as "use defaults", never as a pipeline fault.
var ErrNotFound = errors.New("jurisdiction rules not found")

// Rules is the full rule set for one jurisdiction.
type Rules struct {
	Code string
	Name string

	// Prejudgment interest, simple interest over a 365-day year.
	ContractInterestRate    float64
	NonContractInterestRate float64
	InterestStatute         string

	// Statute of limitations in years by issue category.
	LimitationYears map[string]int

	// Burden standards by issue category; anything unlisted is preponderance.
	BurdenStandards map[string]string

	// Statutes by issue category plus per-dispute-type statutes.
	CategoryStatutes    map[string][]string
	DisputeTypeStatutes map[string][]string

	DamagesCaps        []DamagesCap
	PunitiveMultiplier float64
	SpecialRules       []SpecialRule

	// ClarityScore feeds the confidence heuristic: how settled this
	// jurisdiction's law is for routine dispute categories.
	ClarityScore float64
}

// DamagesCap is a jurisdiction-mandated ceiling on a damages category.
type DamagesCap struct {
	DamagesType string
	DisputeType string // empty means any dispute type
	MaxAmount   float64
	Statute     string
}

// SpecialRule is a named jurisdiction-specific rule, e.g. a statutory
// minimum recovery for consumer-protection violations.
type SpecialRule struct {
	ID            string
	Category      string
	Kind          string // "minimum_recovery"
	MinimumAmount float64
	Statute       string
	Description   string
}

// InterestResult is the outcome of a prejudgment interest computation.
type InterestResult struct {
	Amount         float64
	Rate           float64
	Days           int
	StatutoryBasis string
}

// LimitationsResult reports whether a claim is within the limitation period.
type LimitationsResult struct {
	WithinLimit    bool
	LimitYears     int
	ExpirationDate time.Time
}

const (
	StandardPreponderance       = "preponderance"
	StandardClearAndConvincing  = "clear_and_convincing"
	StandardBeyondReasonable    = "beyond_reasonable_doubt"
	defaultLimitYears           = 4
	defaultInterestRate         = 0.05
	defaultClarityScore         = 0.5
	dayCountBasis               = 365
	defaultInterestBasisGeneral = "default prejudgment interest rate"
)

// GetRules returns the rule set for a jurisdiction code, or ErrNotFound.
func GetRules(code string) (Rules, error) {
	rules, ok := ruleSets[normalizeCode(code)]
	if !ok {
		return Rules{}, ErrNotFound
	}
	return rules, nil
}

// Supported reports whether the jurisdiction has an explicit rule set.
func Supported(code string) bool {
	_, ok := ruleSets[normalizeCode(code)]
	return ok
}

// CalculateInterest computes simple prejudgment interest from start to end.
// Unsupported jurisdictions use the default rate; a reversed or empty date
// range yields zero interest.
func CalculateInterest(code string, principal float64, start, end time.Time, isContractClaim bool) InterestResult {
	rate := defaultInterestRate
	basis := defaultInterestBasisGeneral
	if rules, err := GetRules(code); err == nil {
		if isContractClaim {
			rate = rules.ContractInterestRate
		} else {
			rate = rules.NonContractInterestRate
		}
		basis = rules.InterestStatute
	}

	days := 0
	if end.After(start) {
		days = int(end.Sub(start).Hours() / 24)
	}
	if principal < 0 {
		principal = 0
	}

	amount := roundCents(principal * rate * float64(days) / dayCountBasis)
	return InterestResult{
		Amount:         amount,
		Rate:           rate,
		Days:           days,
		StatutoryBasis: basis,
	}
}

// GetApplicableStatutes returns the deduplicated citations for a dispute
// type and set of issue categories. Unsupported jurisdictions yield nil.
func GetApplicableStatutes(code, disputeType string, categories []string) []string {
	rules, err := GetRules(code)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	add := func(citations []string) {
		for _, citation := range citations {
			if citation == "" || seen[citation] {
				continue
			}
			seen[citation] = true
			out = append(out, citation)
		}
	}

	add(rules.DisputeTypeStatutes[normalizeKey(disputeType)])
	for _, category := range categories {
		add(rules.CategoryStatutes[normalizeKey(category)])
	}
	return out
}

// GetBurdenStandard returns the burden-of-proof standard for an issue
// category, defaulting to preponderance of the evidence.
func GetBurdenStandard(code, issueCategory string) string {
	rules, err := GetRules(code)
	if err != nil {
		return StandardPreponderance
	}
	if standard, ok := rules.BurdenStandards[normalizeKey(issueCategory)]; ok {
		return standard
	}
	return StandardPreponderance
}

// CheckStatuteOfLimitations reports whether a claim accruing at breachDate
// is still within the limitation period as of now.
func CheckStatuteOfLimitations(code, issueCategory string, breachDate time.Time) LimitationsResult {
	years := defaultLimitYears
	if rules, err := GetRules(code); err == nil {
		if limit, ok := rules.LimitationYears[normalizeKey(issueCategory)]; ok {
			years = limit
		}
	}
	expiration := breachDate.AddDate(years, 0, 0)
	return LimitationsResult{
		WithinLimit:    time.Now().UTC().Before(expiration),
		LimitYears:     years,
		ExpirationDate: expiration,
	}
}

// GetDamagesCaps returns caps applicable to a dispute type, most specific
// first. Unsupported jurisdictions yield nil.
func GetDamagesCaps(code, disputeType string) []DamagesCap {
	rules, err := GetRules(code)
	if err != nil {
		return nil
	}
	key := normalizeKey(disputeType)
	var out []DamagesCap
	for _, cap := range rules.DamagesCaps {
		if cap.DisputeType == "" || cap.DisputeType == key {
			out = append(out, cap)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisputeType != "" && out[j].DisputeType == ""
	})
	return out
}

// GetSpecialRules returns special rules for an issue category.
func GetSpecialRules(code, category string) []SpecialRule {
	rules, err := GetRules(code)
	if err != nil {
		return nil
	}
	key := normalizeKey(category)
	var out []SpecialRule
	for _, rule := range rules.SpecialRules {
		if rule.Category == key {
			out = append(out, rule)
		}
	}
	return out
}

// PunitiveCapMultiplier returns the punitive-to-compensatory cap ratio,
// or 0 when the jurisdiction imposes none.
func PunitiveCapMultiplier(code string) float64 {
	rules, err := GetRules(code)
	if err != nil {
		return 0
	}
	return rules.PunitiveMultiplier
}

// ClarityScore returns the jurisdictional clarity factor for confidence
// scoring; unsupported jurisdictions score 0.5.
func ClarityScore(code string) float64 {
	rules, err := GetRules(code)
	if err != nil {
		return defaultClarityScore
	}
	return rules.ClarityScore
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizeKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func roundCents(value float64) float64 {
	return math.Round(value*100) / 100
}
