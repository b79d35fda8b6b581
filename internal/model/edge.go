package model

type EdgeType string

const (
	EdgeImplements    EdgeType = "IMPLEMENTS"
	EdgeVerifiedBy    EdgeType = "VERIFIED_BY"
	EdgeConstrainedBy EdgeType = "CONSTRAINED_BY"
	EdgeDependsOn     EdgeType = "DEPENDS_ON"
	EdgeSupersedes    EdgeType = "SUPERSEDES"
)

// Edge is a typed, confidence-scored relationship between two nodes.
// Edges produced by the matching engine always point from the
// requirement-side node to the matched entity and always carry a non-empty
// MatchID and MatchStrategy.
type Edge struct {
	ID            string                 `json:"id"`
	Type          EdgeType               `json:"edge_type"`
	SourceNodeID  string                 `json:"source"`
	TargetNodeID  string                 `json:"target"`
	Confidence    Confidence             `json:"confidence"`
	MatchID       string                 `json:"match_id,omitempty"`
	MatchStrategy string                 `json:"match_strategy,omitempty"`
	Attributes    map[string]interface{} `json:"attributes,omitempty"`
	Provenance    []SourceRef            `json:"provenance,omitempty"`
}
