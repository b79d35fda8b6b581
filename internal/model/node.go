package model

import "fmt"

type NodeType string

const (
	NodeRequirement NodeType = "REQUIREMENT"
	NodeDecision    NodeType = "DECISION"
	NodeConstraint  NodeType = "CONSTRAINT"
	NodeComponent   NodeType = "COMPONENT"
	NodeEvidence    NodeType = "EVIDENCE"
)

// SourceRef is one provenance entry pointing back at the file location a
// node or edge was derived from.
type SourceRef struct {
	SourceFile    string `json:"source_file"`
	SourceLine    int    `json:"source_line,omitempty"`
	SourceSection string `json:"source_section,omitempty"`
}

// Node is a typed fact in the knowledge graph. Requirement-side nodes
// (REQUIREMENT/DECISION/CONSTRAINT) come from the human-authored corpus;
// entity-side nodes (COMPONENT/CONSTRAINT/EVIDENCE) come from automated
// project extraction. The matching engine never mutates nodes.
type Node struct {
	ID             string                 `json:"id"`
	Type           NodeType               `json:"node_type"`
	ProjectID      string                 `json:"project_id"`
	Name           string                 `json:"name"`
	Text           string                 `json:"text,omitempty"`
	Confidence     Confidence             `json:"confidence"`
	Version        int                    `json:"version,omitempty"`
	LastUpdated    string                 `json:"last_updated,omitempty"`
	ParseUncertain bool                   `json:"parse_uncertain,omitempty"`
	Attributes     map[string]interface{} `json:"attributes,omitempty"`
	Provenance     []SourceRef            `json:"provenance,omitempty"`
}

// Validate reports the first missing required field. Malformed nodes are
// excluded from matching but never abort a run.
func (n *Node) Validate() error {
	switch {
	case n.ID == "":
		return fmt.Errorf("node missing id")
	case n.Type == "":
		return fmt.Errorf("node %s missing node_type", n.ID)
	case n.ProjectID == "":
		return fmt.Errorf("node %s missing project_id", n.ID)
	case n.Name == "":
		return fmt.Errorf("node %s missing name", n.ID)
	}
	return nil
}

// StringAttr returns a string attribute, empty when absent or non-string.
func (n *Node) StringAttr(key string) string {
	if n.Attributes == nil {
		return ""
	}
	if s, ok := n.Attributes[key].(string); ok {
		return s
	}
	return ""
}

// StringsAttr returns a list attribute, tolerating both []string and the
// []interface{} shape produced by JSON decoding.
func (n *Node) StringsAttr(key string) []string {
	if n.Attributes == nil {
		return nil
	}
	switch v := n.Attributes[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// FloatMapAttr returns a numeric map attribute such as an evidence node's
// metrics table.
func (n *Node) FloatMapAttr(key string) map[string]float64 {
	if n.Attributes == nil {
		return nil
	}
	raw, ok := n.Attributes[key].(map[string]interface{})
	if !ok {
		if m, ok := n.Attributes[key].(map[string]float64); ok {
			return m
		}
		return nil
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		switch num := v.(type) {
		case float64:
			out[k] = num
		case int:
			out[k] = float64(num)
		}
	}
	return out
}
