package analysis

import "strings"

// MergeElementFindings folds burden-phase element determinations back
// into the issue set. This is the single sanctioned cross-phase mutation,
// modeled as a pure function: the input slice is not modified.
//
// Matching is by issue id and element name, never by index — issue and
// element ordering is not guaranteed stable across phases.
func MergeElementFindings(issues []LegalIssue, findings []ElementFinding) []LegalIssue {
	if len(findings) == 0 {
		return cloneIssues(issues)
	}

	type key struct{ issueID, element string }
	byKey := make(map[key]ElementFinding, len(findings))
	for _, finding := range findings {
		byKey[key{finding.IssueID, normalizeElementName(finding.Name)}] = finding
	}

	out := cloneIssues(issues)
	for i := range out {
		for j := range out[i].Elements {
			finding, ok := byKey[key{out[i].ID, normalizeElementName(out[i].Elements[j].Name)}]
			if !ok {
				continue
			}
			el := &out[i].Elements[j]
			if finding.Satisfied != nil {
				el.Satisfied = boolPtr(*finding.Satisfied)
			}
			if finding.Analysis != "" {
				el.Analysis = finding.Analysis
			}
			if finding.Confidence > 0 {
				el.Confidence = clamp01(finding.Confidence)
			}
		}
	}
	return out
}

func cloneIssues(issues []LegalIssue) []LegalIssue {
	out := make([]LegalIssue, len(issues))
	copy(out, issues)
	for i := range out {
		elements := make([]LegalElement, len(out[i].Elements))
		copy(elements, out[i].Elements)
		for j := range elements {
			if elements[j].Satisfied != nil {
				elements[j].Satisfied = boolPtr(*elements[j].Satisfied)
			}
		}
		out[i].Elements = elements
	}
	return out
}

func normalizeElementName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
