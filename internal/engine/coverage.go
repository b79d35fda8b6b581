package engine

import (
	"fmt"
	"sort"

	"github.com/archtrace/lattice/internal/model"
)

// detectFindings scans the aggregated match set for coverage gaps,
// orphaned components and constraint contradictions. Output order is
// fixed: gaps by requirement id, orphans by component id, contradictions
// in match-record order.
func detectFindings(runID string, requirements, entities []model.Node, records []model.MatchRecord) []model.Finding {
	matchedSources := map[string]bool{}
	matchedTargets := map[string]bool{}
	for _, r := range records {
		matchedSources[r.Source.ID] = true
		matchedTargets[r.Target.ID] = true
	}
	projectOf := map[string]string{}
	for _, req := range requirements {
		projectOf[req.ID] = req.ProjectID
	}

	var findings []model.Finding

	gaps := make([]model.Node, 0)
	for _, req := range requirements {
		if req.Type == model.NodeRequirement && !matchedSources[req.ID] {
			gaps = append(gaps, req)
		}
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i].ID < gaps[j].ID })
	for _, req := range gaps {
		findings = append(findings, model.Finding{
			FindingID: model.DeterministicID("finding", "gap", runID, req.ID),
			Type:      model.FindingCoverageGap,
			ProjectID: req.ProjectID,
			NodeID:    req.ID,
			Severity:  model.GapSeverity(req.StringAttr("priority")),
			Description: fmt.Sprintf(
				"Requirement %s (%s) has no matched project counterpart.", req.ID, req.Name),
			Details: map[string]interface{}{"requirement_id": req.ID},
		})
	}

	orphans := make([]model.Node, 0)
	for _, entity := range entities {
		if entity.Type == model.NodeComponent && !matchedTargets[entity.ID] {
			orphans = append(orphans, entity)
		}
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].ID < orphans[j].ID })
	for _, entity := range orphans {
		sourceFile := entity.StringAttr("source_file")
		if sourceFile == "" && len(entity.Provenance) > 0 {
			sourceFile = entity.Provenance[0].SourceFile
		}
		findings = append(findings, model.Finding{
			FindingID: model.DeterministicID("finding", "orphan", runID, entity.ID),
			Type:      model.FindingOrphanComponent,
			ProjectID: entity.ProjectID,
			NodeID:    entity.ID,
			Severity:  "low",
			Description: fmt.Sprintf(
				"Component %s (%s) is not linked to any requirement.", entity.ID, entity.Name),
			Details: map[string]interface{}{
				"component_id": entity.ID,
				"source_file":  sourceFile,
			},
		})
	}

	for _, record := range records {
		for i, m := range record.Mismatches {
			findings = append(findings, model.Finding{
				FindingID: model.DeterministicID("finding", "contradiction", runID, record.MatchID, fmt.Sprintf("%d", i)),
				Type:      model.FindingConstraintTiming,
				ProjectID: projectOf[record.Source.ID],
				NodeID:    m.TargetNodeID,
				Severity:  "high",
				Description: fmt.Sprintf(
					"Constraint %s disagrees on %s: requirement wants %s, project specifies %s.",
					m.TargetNodeID, m.Parameter, m.RequirementValue, m.ProjectValue),
				Details: map[string]interface{}{
					"parameter":         m.Parameter,
					"requirement_value": m.RequirementValue,
					"project_value":     m.ProjectValue,
					"requirement_id":    record.Source.ID,
					"match_id":          record.MatchID,
				},
			})
		}
	}

	return findings
}
