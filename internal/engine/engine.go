// Package engine runs the matching pipeline: strategy evaluation per
// requirement, deterministic aggregation into match records and edges,
// and coverage/orphan/contradiction detection over the aggregate.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/archtrace/lattice/internal/config"
	"github.com/archtrace/lattice/internal/engine/strategy"
	"github.com/archtrace/lattice/internal/model"
)

// Store persists a finished run. The engine only needs the write side;
// queries go through the store package directly.
type Store interface {
	PersistRun(ctx context.Context, snap *model.Snapshot, result *model.RunResult) error
}

type Engine struct {
	cfg        *config.Config
	store      Store
	strategies []strategy.Strategy
	workers    int
}

// New wires an engine from configuration. The store may be nil for
// dry runs; results are then returned without being committed.
func New(cfg *config.Config, store Store, res *strategy.Resources) *Engine {
	workers := cfg.Concurrency.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Engine{
		cfg:        cfg,
		store:      store,
		strategies: strategy.New(res),
		workers:    workers,
	}
}

// Run executes one matching run over a snapshot. Requirements are
// evaluated in parallel but every ordering decision is made over sorted
// data, so the same snapshot always produces the same result. The run is
// committed atomically at the end; a failed run leaves the store
// untouched.
func (e *Engine) Run(ctx context.Context, snap *model.Snapshot) (*model.RunResult, error) {
	runID := snap.RunID
	if runID == "" {
		runID = deriveRunID(snap)
	}

	requirements, warnings := sanitize(snap.Requirements)
	entities, entityWarnings := sanitize(snap.Entities)
	warnings = append(warnings, entityWarnings...)

	sort.Slice(requirements, func(i, j int) bool { return requirements[i].ID < requirements[j].ID })
	corpus := strategy.NewCorpus(entities, snap.DependsOn)

	candidates := make([][]model.CandidateMatch, len(requirements))
	reqWarnings := make([][]string, len(requirements))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range requirements {
		i := i
		g.Go(func() error {
			candidates[i], reqWarnings[i] = e.evaluate(gctx, requirements[i], corpus)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("matching run %s aborted: %w", runID, err)
	}

	result := &model.RunResult{RunID: runID}
	for i, req := range requirements {
		warnings = append(warnings, reqWarnings[i]...)
		records, edges, tieFindings := aggregate(runID, req, corpus, candidates[i], e.cfg.Matching.TieBreak)
		result.Matches = append(result.Matches, records...)
		result.Edges = append(result.Edges, edges...)
		result.Findings = append(result.Findings, tieFindings...)
	}
	result.Findings = append(result.Findings, detectFindings(runID, requirements, entities, result.Matches)...)
	result.Warnings = warnings

	if e.store != nil {
		persisted := &model.Snapshot{
			RunID:        runID,
			Requirements: requirements,
			Entities:     entities,
			DependsOn:    snap.DependsOn,
		}
		if err := e.store.PersistRun(ctx, persisted, result); err != nil {
			return nil, fmt.Errorf("persisting run %s: %w", runID, err)
		}
	}
	return result, nil
}

// evaluate runs every strategy against one requirement. A strategy error
// skips only that strategy for that requirement; the rest still run.
func (e *Engine) evaluate(ctx context.Context, req model.Node, corpus *strategy.Corpus) ([]model.CandidateMatch, []string) {
	var all []model.CandidateMatch
	var warnings []string
	for _, s := range e.strategies {
		found, err := s.Evaluate(ctx, req, corpus, all)
		if err != nil {
			log.Printf("WARN: strategy %s failed for requirement %s: %v", s.Name(), req.ID, err)
			warnings = append(warnings, fmt.Sprintf(
				"strategy %s skipped for requirement %s: %v", s.Name(), req.ID, err))
			continue
		}
		for i := range found {
			found[i].Strategy = s.Name()
		}
		all = append(all, found...)
	}
	return all, warnings
}

// sanitize drops malformed nodes and normalizes the rest: a node flagged
// parse_uncertain never keeps HIGH confidence.
func sanitize(nodes []model.Node) ([]model.Node, []string) {
	out := make([]model.Node, 0, len(nodes))
	var warnings []string
	for _, n := range nodes {
		if err := n.Validate(); err != nil {
			log.Printf("WARN: excluding malformed node %q: %v", n.ID, err)
			warnings = append(warnings, fmt.Sprintf("excluded malformed node %q: %v", n.ID, err))
			continue
		}
		if n.ParseUncertain && n.Confidence == model.ConfidenceHigh {
			n.Confidence = model.ConfidenceMedium
		}
		out = append(out, n)
	}
	return out, warnings
}

// deriveRunID derives a stable run id from the snapshot content so a
// replay of the same snapshot is an idempotent upsert, not a duplicate.
func deriveRunID(snap *model.Snapshot) string {
	data, err := json.Marshal(snap)
	if err != nil {
		// Node attributes are plain JSON values, marshaling cannot fail on
		// inputs that were decoded from JSON in the first place.
		return model.DeterministicID("run", fmt.Sprintf("%d/%d", len(snap.Requirements), len(snap.Entities)))
	}
	return model.DeterministicID("run", string(data))
}
