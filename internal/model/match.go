package model

// Strategy names in fixed priority order. The order decides primacy
// tie-breaks and the concatenation order of match evidence.
const (
	StrategyIdentifier = "identifier_match"
	StrategyConstraint = "constraint_binding"
	StrategyEvidence   = "evidence_binding"
	StrategySemantic   = "semantic_match"
	StrategyClosure    = "structural_closure"
)

var strategyPriority = map[string]int{
	StrategyIdentifier: 0,
	StrategyConstraint: 1,
	StrategyEvidence:   2,
	StrategySemantic:   3,
	StrategyClosure:    4,
}

// StrategyPriority returns the rank of a strategy name, lower is stronger.
// Unknown names sort last.
func StrategyPriority(name string) int {
	if p, ok := strategyPriority[name]; ok {
		return p
	}
	return len(strategyPriority)
}

// Mismatch records a numeric disagreement between a requirement-side
// constraint value and a project constraint spec. It is surfaced as an
// unmatched aspect on the match and as a contradiction finding; the match
// itself is still created.
type Mismatch struct {
	Parameter        string
	RequirementValue string
	ProjectValue     string
	TargetNodeID     string
}

// CandidateMatch is one strategy's proposal that a requirement links to a
// target entity.
type CandidateMatch struct {
	TargetID         string
	EdgeType         EdgeType
	Confidence       Confidence
	Evidence         []string
	UnmatchedAspects []string
	Indirect         bool
	Mismatches       []Mismatch
	Strategy         string
}

type MatchSource struct {
	Type NodeType `json:"type"`
	ID   string   `json:"id"`
	Text string   `json:"text,omitempty"`
}

type MatchTarget struct {
	Type       NodeType `json:"type"`
	ID         string   `json:"id"`
	SourceFile string   `json:"source_file,omitempty"`
}

// MatchRecord is the durable justification for one requirement↔entity
// linkage. Exactly one record exists per (source, target) pair in a run.
type MatchRecord struct {
	MatchID          string      `json:"match_id"`
	Source           MatchSource `json:"source"`
	Target           MatchTarget `json:"target"`
	EdgeType         EdgeType    `json:"edge_type"`
	MatchStrategy    string      `json:"match_strategy"`
	Confidence       Confidence  `json:"confidence"`
	MatchEvidence    []string    `json:"match_evidence"`
	UnmatchedAspects []string    `json:"unmatched_aspects"`
	PrimaryEdgeID    string      `json:"primary_edge_id,omitempty"`

	// Mismatches carries the structured form of constraint disagreements
	// for the coverage detector; the persisted schema only keeps the
	// formatted unmatched_aspects strings.
	Mismatches []Mismatch `json:"-"`
}
