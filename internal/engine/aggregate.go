package engine

import (
	"fmt"
	"sort"

	"github.com/archtrace/lattice/internal/engine/strategy"
	"github.com/archtrace/lattice/internal/model"
)

// aggregate merges the candidate matches of one requirement across all
// strategies into match records and edges. Groups are keyed by target
// entity; a group touched by several strategies takes the maximum
// confidence and lists every contributor in priority order. The group with
// the numerically highest confidence becomes primary; ties fall back to
// strategy priority, then to the configured tie-break rule.
func aggregate(runID string, req model.Node, corpus *strategy.Corpus, candidates []model.CandidateMatch, tieBreak string) ([]model.MatchRecord, []model.Edge, []model.Finding) {
	if len(candidates) == 0 {
		return nil, nil, nil
	}

	byTarget := map[string][]model.CandidateMatch{}
	var targets []string
	for _, c := range candidates {
		if _, seen := byTarget[c.TargetID]; !seen {
			targets = append(targets, c.TargetID)
		}
		byTarget[c.TargetID] = append(byTarget[c.TargetID], c)
	}
	sort.Strings(targets)

	records := make([]model.MatchRecord, 0, len(targets))
	edges := make([]model.Edge, 0, len(targets))
	for _, targetID := range targets {
		group := byTarget[targetID]
		sort.SliceStable(group, func(i, j int) bool {
			return model.StrategyPriority(group[i].Strategy) < model.StrategyPriority(group[j].Strategy)
		})

		record := mergeGroup(runID, req, corpus, targetID, group)
		edge := model.Edge{
			ID:            model.DeterministicID("edge", runID, req.ID, targetID, string(record.EdgeType)),
			Type:          record.EdgeType,
			SourceNodeID:  req.ID,
			TargetNodeID:  targetID,
			Confidence:    record.Confidence,
			MatchID:       record.MatchID,
			MatchStrategy: record.MatchStrategy,
			Attributes:    map[string]interface{}{"run_id": runID},
		}
		records = append(records, record)
		edges = append(edges, edge)
	}

	findings := assignPrimary(runID, req, records, edges, tieBreak)
	return records, edges, findings
}

func mergeGroup(runID string, req model.Node, corpus *strategy.Corpus, targetID string, group []model.CandidateMatch) model.MatchRecord {
	confs := make([]model.Confidence, 0, len(group))
	var strategies, evidence, aspects []string
	var mismatches []model.Mismatch
	seenStrategy := map[string]bool{}
	seenAspect := map[string]bool{}

	for _, c := range group {
		confs = append(confs, c.Confidence)
		if !seenStrategy[c.Strategy] {
			seenStrategy[c.Strategy] = true
			strategies = append(strategies, c.Strategy)
		}
		evidence = append(evidence, c.Evidence...)
		for _, a := range c.UnmatchedAspects {
			if !seenAspect[a] {
				seenAspect[a] = true
				aspects = append(aspects, a)
			}
		}
		mismatches = append(mismatches, c.Mismatches...)
	}

	target := model.MatchTarget{ID: targetID}
	if entity, ok := corpus.Entity(targetID); ok {
		target.Type = entity.Type
		target.SourceFile = entity.StringAttr("source_file")
		if target.SourceFile == "" && len(entity.Provenance) > 0 {
			target.SourceFile = entity.Provenance[0].SourceFile
		}
	}

	return model.MatchRecord{
		MatchID:          model.DeterministicID("match", runID, req.ID, targetID),
		Source:           model.MatchSource{Type: req.Type, ID: req.ID, Text: req.Text},
		Target:           target,
		EdgeType:         group[0].EdgeType,
		MatchStrategy:    joinStrategies(strategies),
		Confidence:       model.MaxConfidence(confs...),
		MatchEvidence:    evidence,
		UnmatchedAspects: aspects,
		Mismatches:       mismatches,
	}
}

func joinStrategies(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += "+"
		}
		out += n
	}
	return out
}

// assignPrimary marks the winning match record of a requirement by
// populating its primary_edge_id. An unresolvable tie is never broken
// silently: under the default "flag" rule no primary is assigned and a
// parse_uncertain_violation finding is emitted instead.
func assignPrimary(runID string, req model.Node, records []model.MatchRecord, edges []model.Edge, tieBreak string) []model.Finding {
	if len(records) == 0 {
		return nil
	}

	bestConf := records[0].Confidence
	for _, r := range records[1:] {
		bestConf = model.MaxConfidence(bestConf, r.Confidence)
	}

	bestPriority := -1
	var tied []int
	for i, r := range records {
		if r.Confidence != bestConf {
			continue
		}
		p := leadPriority(r.MatchStrategy)
		switch {
		case bestPriority == -1 || p < bestPriority:
			bestPriority = p
			tied = []int{i}
		case p == bestPriority:
			tied = append(tied, i)
		}
	}

	if len(tied) == 1 {
		records[tied[0]].PrimaryEdgeID = edges[tied[0]].ID
		return nil
	}

	if tieBreak == "lexicographic" {
		// Records are already in target-id order, the first tied index wins.
		records[tied[0]].PrimaryEdgeID = edges[tied[0]].ID
		return nil
	}

	tiedTargets := make([]string, len(tied))
	for i, idx := range tied {
		tiedTargets[i] = records[idx].Target.ID
	}
	return []model.Finding{{
		FindingID: model.DeterministicID("finding", "tie", runID, req.ID),
		Type:      model.FindingParseUncertainViolated,
		ProjectID: req.ProjectID,
		NodeID:    req.ID,
		Severity:  "medium",
		Description: fmt.Sprintf(
			"Requirement %s has %d equally ranked match candidates; no primary assigned, manual review required.",
			req.ID, len(tied)),
		Details: map[string]interface{}{
			"requirement_id": req.ID,
			"tied_targets":   tiedTargets,
			"confidence":     bestConf.String(),
		},
	}}
}

// leadPriority is the priority of the strongest strategy that contributed
// to a merged record.
func leadPriority(matchStrategy string) int {
	best := -1
	start := 0
	for i := 0; i <= len(matchStrategy); i++ {
		if i == len(matchStrategy) || matchStrategy[i] == '+' {
			p := model.StrategyPriority(matchStrategy[start:i])
			if best == -1 || p < best {
				best = p
			}
			start = i + 1
		}
	}
	return best
}
