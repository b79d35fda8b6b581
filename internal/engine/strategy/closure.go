package strategy

import (
	"context"
	"fmt"
	"sort"

	"github.com/archtrace/lattice/internal/model"
)

// Closure expands direct IMPLEMENTS anchors through the entity dependency
// graph: everything reachable over DEPENDS_ON edges within the configured
// depth becomes an indirect candidate. The visited set guarantees
// termination on cyclic dependency graphs.
type Closure struct {
	res *Resources
}

func (s *Closure) Name() string { return model.StrategyClosure }

func (s *Closure) Evaluate(_ context.Context, _ model.Node, corpus *Corpus, anchors []model.CandidateMatch) ([]model.CandidateMatch, error) {
	maxDepth := s.res.Matching.ClosureDepth
	if maxDepth <= 0 || len(anchors) == 0 {
		return nil, nil
	}

	anchorIDs := map[string]bool{}
	var roots []string
	for _, a := range anchors {
		if a.EdgeType != model.EdgeImplements || a.Indirect {
			continue
		}
		if !anchorIDs[a.TargetID] {
			anchorIDs[a.TargetID] = true
			roots = append(roots, a.TargetID)
		}
	}
	sort.Strings(roots)

	type hop struct {
		id    string
		from  string
		depth int
	}

	visited := map[string]bool{}
	reached := map[string]hop{}
	queue := make([]hop, 0, len(roots))
	for _, r := range roots {
		visited[r] = true
		queue = append(queue, hop{id: r})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		for _, next := range corpus.Neighbors(cur.id) {
			if visited[next] {
				continue
			}
			visited[next] = true
			h := hop{id: next, from: cur.id, depth: cur.depth + 1}
			if !anchorIDs[next] {
				reached[next] = h
			}
			queue = append(queue, h)
		}
	}

	ids := make([]string, 0, len(reached))
	for id := range reached {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []model.CandidateMatch
	for _, id := range ids {
		entity, ok := corpus.Entity(id)
		if !ok || entity.Type != model.NodeComponent {
			continue
		}
		h := reached[id]
		out = append(out, model.CandidateMatch{
			TargetID:   id,
			EdgeType:   model.EdgeImplements,
			Confidence: model.ConfidenceMedium,
			Indirect:   true,
			Evidence: []string{fmt.Sprintf(
				"structural: %q reached over DEPENDS_ON from anchor via %q (depth %d)",
				entity.Name, h.from, h.depth)},
		})
	}
	return out, nil
}
