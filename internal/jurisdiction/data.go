package jurisdiction

// ruleSets holds the explicit rule content per supported jurisdiction.
// Everything here is static; the engine is pure lookup and arithmetic.
var ruleSets = map[string]Rules{
	"US-CA": {
		Code:                    "US-CA",
		Name:                    "California",
		ContractInterestRate:    0.10,
		NonContractInterestRate: 0.07,
		InterestStatute:         "Cal. Civ. Code § 3289",
		LimitationYears: map[string]int{
			"breach_of_contract":  4,
			"consumer_protection": 3,
			"warranty":            4,
			"fraud":               3,
			"negligence":          2,
			"unjust_enrichment":   3,
			"property_damage":     3,
		},
		BurdenStandards: map[string]string{
			"fraud": StandardClearAndConvincing,
		},
		CategoryStatutes: map[string][]string{
			"breach_of_contract":  {"Cal. Civ. Code § 1549", "Cal. Civ. Code § 3300"},
			"consumer_protection": {"Cal. Civ. Code § 1750 (CLRA)", "Cal. Bus. & Prof. Code § 17200 (UCL)"},
			"warranty":            {"Cal. Com. Code § 2314", "Cal. Civ. Code § 1790 (Song-Beverly)"},
			"fraud":               {"Cal. Civ. Code § 1572", "Cal. Civ. Code § 3294"},
			"negligence":          {"Cal. Civ. Code § 1714"},
			"unjust_enrichment":   {"Restatement (Third) of Restitution § 1"},
			"payment_dispute":     {"Cal. Civ. Code § 1479"},
			"property_damage":     {"Cal. Civ. Code § 3333"},
		},
		DisputeTypeStatutes: map[string][]string{
			"contract": {"Cal. Civ. Code § 1549"},
			"goods":    {"Cal. Com. Code § 2102"},
			"services": {"Cal. Bus. & Prof. Code § 17500"},
			"payment":  {"Cal. Civ. Code § 1479"},
		},
		DamagesCaps: []DamagesCap{
			{DamagesType: "statutory", DisputeType: "", MaxAmount: 10000, Statute: "Cal. Civ. Code § 1780"},
		},
		PunitiveMultiplier: 3,
		SpecialRules: []SpecialRule{
			{
				ID:            "ca-clra-minimum",
				Category:      "consumer_protection",
				Kind:          "minimum_recovery",
				MinimumAmount: 1000,
				Statute:       "Cal. Civ. Code § 1780(a)(1)",
				Description:   "CLRA minimum total recovery for a consumer-protection violation",
			},
		},
		ClarityScore: 0.85,
	},
	"US-NY": {
		Code:                    "US-NY",
		Name:                    "New York",
		ContractInterestRate:    0.09,
		NonContractInterestRate: 0.09,
		InterestStatute:         "N.Y. C.P.L.R. § 5004",
		LimitationYears: map[string]int{
			"breach_of_contract":  6,
			"consumer_protection": 3,
			"warranty":            4,
			"fraud":               6,
			"negligence":          3,
			"unjust_enrichment":   6,
			"property_damage":     3,
		},
		BurdenStandards: map[string]string{
			"fraud": StandardClearAndConvincing,
		},
		CategoryStatutes: map[string][]string{
			"breach_of_contract":  {"N.Y. Gen. Oblig. Law § 5-701"},
			"consumer_protection": {"N.Y. Gen. Bus. Law § 349", "N.Y. Gen. Bus. Law § 350"},
			"warranty":            {"N.Y. U.C.C. § 2-314"},
			"fraud":               {"N.Y. C.P.L.R. § 3016(b)"},
			"negligence":          {"N.Y. Pattern Jury Instr. 2:10"},
			"payment_dispute":     {"N.Y. Gen. Oblig. Law § 5-501"},
			"property_damage":     {"N.Y. Pattern Jury Instr. 2:311"},
		},
		DisputeTypeStatutes: map[string][]string{
			"contract": {"N.Y. Gen. Oblig. Law § 5-701"},
			"goods":    {"N.Y. U.C.C. § 2-102"},
			"services": {"N.Y. Gen. Bus. Law § 349"},
		},
		DamagesCaps: []DamagesCap{
			{DamagesType: "statutory", DisputeType: "", MaxAmount: 10000, Statute: "N.Y. Gen. Bus. Law § 349(h)"},
		},
		PunitiveMultiplier: 3,
		SpecialRules: []SpecialRule{
			{
				ID:            "ny-gbl-349-treble",
				Category:      "consumer_protection",
				Kind:          "minimum_recovery",
				MinimumAmount: 50,
				Statute:       "N.Y. Gen. Bus. Law § 349(h)",
				Description:   "GBL § 349 minimum recovery for a deceptive practice",
			},
		},
		ClarityScore: 0.85,
	},
	"US-TX": {
		Code:                    "US-TX",
		Name:                    "Texas",
		ContractInterestRate:    0.06,
		NonContractInterestRate: 0.05,
		InterestStatute:         "Tex. Fin. Code § 302.002",
		LimitationYears: map[string]int{
			"breach_of_contract":  4,
			"consumer_protection": 2,
			"warranty":            4,
			"fraud":               4,
			"negligence":          2,
			"unjust_enrichment":   2,
			"property_damage":     2,
		},
		BurdenStandards: map[string]string{
			"fraud": StandardClearAndConvincing,
		},
		CategoryStatutes: map[string][]string{
			"breach_of_contract":  {"Tex. Bus. & Com. Code § 26.01"},
			"consumer_protection": {"Tex. Bus. & Com. Code § 17.41 (DTPA)"},
			"warranty":            {"Tex. Bus. & Com. Code § 2.314"},
			"fraud":               {"Tex. Bus. & Com. Code § 27.01"},
			"negligence":          {"Tex. Civ. Prac. & Rem. Code § 33.001"},
			"payment_dispute":     {"Tex. Prop. Code § 28.001"},
			"property_damage":     {"Tex. Civ. Prac. & Rem. Code § 41.001"},
		},
		DisputeTypeStatutes: map[string][]string{
			"contract": {"Tex. Bus. & Com. Code § 26.01"},
			"goods":    {"Tex. Bus. & Com. Code § 2.102"},
			"services": {"Tex. Bus. & Com. Code § 17.41 (DTPA)"},
		},
		DamagesCaps: []DamagesCap{
			{DamagesType: "statutory", DisputeType: "", MaxAmount: 7500, Statute: "Tex. Bus. & Com. Code § 17.50"},
		},
		PunitiveMultiplier: 2,
		SpecialRules:       nil,
		ClarityScore:       0.80,
	},
	"US-FL": {
		Code:                    "US-FL",
		Name:                    "Florida",
		ContractInterestRate:    0.08,
		NonContractInterestRate: 0.08,
		InterestStatute:         "Fla. Stat. § 55.03",
		LimitationYears: map[string]int{
			"breach_of_contract":  5,
			"consumer_protection": 4,
			"warranty":            4,
			"fraud":               4,
			"negligence":          4,
			"unjust_enrichment":   4,
			"property_damage":     4,
		},
		BurdenStandards: map[string]string{
			"fraud": StandardClearAndConvincing,
		},
		CategoryStatutes: map[string][]string{
			"breach_of_contract":  {"Fla. Stat. § 725.01"},
			"consumer_protection": {"Fla. Stat. § 501.201 (FDUTPA)"},
			"warranty":            {"Fla. Stat. § 672.314"},
			"fraud":               {"Fla. Stat. § 817.41"},
			"negligence":          {"Fla. Stat. § 768.81"},
			"property_damage":     {"Fla. Stat. § 768.28"},
		},
		DisputeTypeStatutes: map[string][]string{
			"contract": {"Fla. Stat. § 725.01"},
			"services": {"Fla. Stat. § 501.201 (FDUTPA)"},
		},
		DamagesCaps: []DamagesCap{
			{DamagesType: "punitive", DisputeType: "", MaxAmount: 500000, Statute: "Fla. Stat. § 768.73"},
		},
		PunitiveMultiplier: 3,
		SpecialRules:       nil,
		ClarityScore:       0.75,
	},
	"UK": {
		Code:                    "UK",
		Name:                    "United Kingdom (England and Wales)",
		ContractInterestRate:    0.08,
		NonContractInterestRate: 0.08,
		InterestStatute:         "County Courts Act 1984, s.69",
		LimitationYears: map[string]int{
			"breach_of_contract":  6,
			"consumer_protection": 6,
			"warranty":            6,
			"fraud":               6,
			"negligence":          6,
			"unjust_enrichment":   6,
			"property_damage":     6,
		},
		BurdenStandards: map[string]string{},
		CategoryStatutes: map[string][]string{
			"breach_of_contract":  {"Sale of Goods Act 1979", "Supply of Goods and Services Act 1982"},
			"consumer_protection": {"Consumer Rights Act 2015"},
			"warranty":            {"Consumer Rights Act 2015, s.9"},
			"fraud":               {"Fraud Act 2006"},
			"negligence":          {"Occupiers' Liability Act 1957"},
			"payment_dispute":     {"Late Payment of Commercial Debts (Interest) Act 1998"},
		},
		DisputeTypeStatutes: map[string][]string{
			"contract": {"Consumer Rights Act 2015"},
			"goods":    {"Sale of Goods Act 1979"},
			"services": {"Supply of Goods and Services Act 1982"},
			"payment":  {"Late Payment of Commercial Debts (Interest) Act 1998"},
		},
		DamagesCaps:        nil,
		PunitiveMultiplier: 0, // exemplary damages are not available in ordinary contract claims
		SpecialRules:       nil,
		ClarityScore:       0.80,
	},
}
