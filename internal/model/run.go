package model

// Snapshot is the immutable input of one matching run: the requirement
// corpus, the entity corpus and the entity dependency edges, all fixed
// before matching starts.
type Snapshot struct {
	RunID        string `json:"run_id,omitempty"`
	Requirements []Node `json:"requirements"`
	Entities     []Node `json:"entities"`
	DependsOn    []Edge `json:"depends_on,omitempty"`
}

// RunResult is the complete output of one run. It is committed to the
// store atomically: either everything lands or nothing does.
type RunResult struct {
	RunID    string        `json:"run_id"`
	Matches  []MatchRecord `json:"matches"`
	Edges    []Edge        `json:"edges"`
	Findings []Finding     `json:"findings"`
	Warnings []string      `json:"warnings,omitempty"`
}
