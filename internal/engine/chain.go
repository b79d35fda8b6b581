package engine

import "github.com/archtrace/lattice/internal/model"

// ChainConfidence computes the effective confidence of a derivation path
// as the minimum over every node and edge confidence on it. It is a pure
// function evaluated at query time; nothing is stored back on the graph.
// An empty path yields MEDIUM.
func ChainConfidence(nodes []model.Confidence, edges []model.Confidence) model.Confidence {
	all := make([]model.Confidence, 0, len(nodes)+len(edges))
	all = append(all, nodes...)
	all = append(all, edges...)
	return model.MinConfidence(all...)
}
