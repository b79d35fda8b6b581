package model

type FindingType string

const (
	FindingCoverageGap            FindingType = "coverage_gap_requirement"
	FindingOrphanComponent        FindingType = "orphan_component"
	FindingConstraintTiming       FindingType = "constraint_timing_contradiction"
	FindingParseUncertainViolated FindingType = "parse_uncertain_violation"
)

// Finding is a gap/orphan/contradiction result emitted by the coverage
// detector after aggregation. Findings are facts about the match set, not
// errors.
type Finding struct {
	FindingID   string                 `json:"finding_id"`
	Type        FindingType            `json:"finding_type"`
	ProjectID   string                 `json:"project_id,omitempty"`
	NodeID      string                 `json:"node_id,omitempty"`
	Severity    string                 `json:"severity"`
	Description string                 `json:"description"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// GapSeverity maps a requirement priority attribute to a finding severity.
// Absent or unknown priorities fall back to medium.
func GapSeverity(priority string) string {
	switch priority {
	case "critical", "high":
		return "high"
	case "low":
		return "low"
	default:
		return "medium"
	}
}
