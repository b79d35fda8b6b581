// Package strategy implements the five matching strategies that propose
// requirement↔entity links. Every strategy is a stateless, re-orderable
// unit behind the same interface; the engine executes them per requirement
// and the aggregator merges their candidates.
package strategy

import (
	"context"
	"sort"

	"github.com/archtrace/lattice/internal/config"
	"github.com/archtrace/lattice/internal/embed"
	"github.com/archtrace/lattice/internal/lexicon"
	"github.com/archtrace/lattice/internal/model"
)

// Resources are the shared lookup/compute services consumed by strategies.
// They are read-only during a run.
type Resources struct {
	Aliases  *lexicon.AliasTable
	Embedder embed.Client
	Matching config.MatchingConfig
}

// Strategy evaluates one requirement-side node against the entity corpus.
// The anchors argument carries the direct candidates found so far for the
// same requirement; only structural closure reads it, which is why closure
// must run after the direct strategies. No strategy ever depends on
// another requirement's results.
type Strategy interface {
	Name() string
	Evaluate(ctx context.Context, req model.Node, corpus *Corpus, anchors []model.CandidateMatch) ([]model.CandidateMatch, error)
}

// New returns the strategies in execution order: direct strategies first,
// structural closure last so its anchors exist.
func New(res *Resources) []Strategy {
	return []Strategy{
		&Identifier{res: res},
		&Semantic{res: res},
		&Evidence{},
		&Constraint{res: res},
		&Closure{res: res},
	}
}

// Corpus is an immutable index over the entity-side node set for one run.
type Corpus struct {
	Entities []model.Node

	byID      map[string]model.Node
	neighbors map[string][]string
}

// NewCorpus indexes entities and their DEPENDS_ON edges. Neighbor lists
// are sorted so traversals are order-independent of the input edge order.
func NewCorpus(entities []model.Node, dependsOn []model.Edge) *Corpus {
	c := &Corpus{
		Entities:  entities,
		byID:      make(map[string]model.Node, len(entities)),
		neighbors: make(map[string][]string),
	}
	for _, e := range entities {
		c.byID[e.ID] = e
	}
	for _, edge := range dependsOn {
		if edge.Type != model.EdgeDependsOn {
			continue
		}
		if _, ok := c.byID[edge.SourceNodeID]; !ok {
			continue
		}
		if _, ok := c.byID[edge.TargetNodeID]; !ok {
			continue
		}
		c.neighbors[edge.SourceNodeID] = append(c.neighbors[edge.SourceNodeID], edge.TargetNodeID)
		c.neighbors[edge.TargetNodeID] = append(c.neighbors[edge.TargetNodeID], edge.SourceNodeID)
	}
	for id := range c.neighbors {
		sort.Strings(c.neighbors[id])
	}
	return c
}

// Entity returns an entity node by id.
func (c *Corpus) Entity(id string) (model.Node, bool) {
	n, ok := c.byID[id]
	return n, ok
}

// Neighbors returns the DEPENDS_ON neighbors of an entity, sorted.
func (c *Corpus) Neighbors(id string) []string {
	return c.neighbors[id]
}
