package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/archtrace/lattice/internal/config"
	"github.com/archtrace/lattice/internal/model"
)

// MemgraphStore keeps the graph in Memgraph over the bolt protocol.
// Structured fields that Cypher properties cannot hold natively
// (attributes, provenance, details, evidence lists) are stored as JSON
// strings.
type MemgraphStore struct {
	driver neo4j.DriverWithContext
}

func OpenMemgraph(ctx context.Context, cfg config.MemgraphConfig) (*MemgraphStore, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, err
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, err
	}
	log.Println("Connected to Memgraph")

	s := &MemgraphStore{driver: driver}
	if err := s.buildIndices(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MemgraphStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *MemgraphStore) buildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :Node(id);",
		"CREATE INDEX ON :Node(project_id);",
		"CREATE INDEX ON :MatchRecord(run_id);",
		"CREATE INDEX ON :Finding(run_id);",
		"CREATE INDEX ON :Run(run_id);",
	}
	for _, q := range queries {
		if _, err := s.execute(ctx, q, nil); err != nil {
			log.Printf("Warning: failed to create index '%s': %v", q, err)
			// Continue, as index might already exist
		}
	}
	return nil
}

func (s *MemgraphStore) execute(ctx context.Context, query string, params map[string]interface{}) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return result, nil
}

func (s *MemgraphStore) PersistRun(ctx context.Context, snap *model.Snapshot, result *model.RunResult) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	// Everything lands inside one write transaction so a half-written run
	// can never be observed.
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		for _, q := range []string{clearRunEdgesQuery, clearRunMatchesQuery, clearRunFindingsQuery} {
			if _, err := tx.Run(ctx, q, map[string]interface{}{"run_id": result.RunID}); err != nil {
				return nil, fmt.Errorf("clearing previous run %s: %w", result.RunID, err)
			}
		}

		warnings, _ := json.Marshal(result.Warnings)
		if _, err := tx.Run(ctx, saveRunQuery, map[string]interface{}{
			"run_id":     result.RunID,
			"created_at": time.Now().UTC().Format(time.RFC3339),
			"warnings":   string(warnings),
		}); err != nil {
			return nil, fmt.Errorf("saving run: %w", err)
		}

		nodes := make([]model.Node, 0, len(snap.Requirements)+len(snap.Entities))
		nodes = append(nodes, snap.Requirements...)
		nodes = append(nodes, snap.Entities...)
		for _, n := range nodes {
			attrs, _ := json.Marshal(n.Attributes)
			prov, _ := json.Marshal(n.Provenance)
			if _, err := tx.Run(ctx, saveNodeQuery, map[string]interface{}{
				"id":              n.ID,
				"node_type":       string(n.Type),
				"project_id":      n.ProjectID,
				"name":            n.Name,
				"text":            n.Text,
				"confidence":      n.Confidence.String(),
				"version":         n.Version,
				"last_updated":    n.LastUpdated,
				"parse_uncertain": n.ParseUncertain,
				"attributes":      string(attrs),
				"provenance":      string(prov),
			}); err != nil {
				return nil, fmt.Errorf("saving node %s: %w", n.ID, err)
			}
		}

		edges := make([]model.Edge, 0, len(result.Edges)+len(snap.DependsOn))
		edges = append(edges, result.Edges...)
		edges = append(edges, snap.DependsOn...)
		for _, e := range edges {
			if _, err := tx.Run(ctx, saveEdgeQuery, map[string]interface{}{
				"id":             e.ID,
				"run_id":         result.RunID,
				"edge_type":      string(e.Type),
				"source":         e.SourceNodeID,
				"target":         e.TargetNodeID,
				"confidence":     e.Confidence.String(),
				"match_id":       e.MatchID,
				"match_strategy": e.MatchStrategy,
			}); err != nil {
				return nil, fmt.Errorf("saving edge %s: %w", e.ID, err)
			}
		}

		for _, m := range result.Matches {
			evidence, _ := json.Marshal(m.MatchEvidence)
			aspects, _ := json.Marshal(m.UnmatchedAspects)
			if _, err := tx.Run(ctx, saveMatchQuery, map[string]interface{}{
				"match_id":           m.MatchID,
				"run_id":             result.RunID,
				"source_type":        string(m.Source.Type),
				"source_id":          m.Source.ID,
				"source_text":        m.Source.Text,
				"target_type":        string(m.Target.Type),
				"target_id":          m.Target.ID,
				"target_source_file": m.Target.SourceFile,
				"edge_type":          string(m.EdgeType),
				"match_strategy":     m.MatchStrategy,
				"confidence":         m.Confidence.String(),
				"match_evidence":     string(evidence),
				"unmatched_aspects":  string(aspects),
				"primary_edge_id":    m.PrimaryEdgeID,
			}); err != nil {
				return nil, fmt.Errorf("saving match record %s: %w", m.MatchID, err)
			}
		}

		for _, f := range result.Findings {
			details, _ := json.Marshal(f.Details)
			if _, err := tx.Run(ctx, saveFindingQuery, map[string]interface{}{
				"finding_id":   f.FindingID,
				"run_id":       result.RunID,
				"finding_type": string(f.Type),
				"project_id":   f.ProjectID,
				"node_id":      f.NodeID,
				"severity":     f.Severity,
				"description":  f.Description,
				"details":      string(details),
			}); err != nil {
				return nil, fmt.Errorf("saving finding %s: %w", f.FindingID, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("persisting run %s: %w", result.RunID, err)
	}
	return nil
}

func (s *MemgraphStore) NodeConfidences(ctx context.Context, ids []string) (map[string]model.Confidence, error) {
	return s.confidences(ctx, nodeConfidencesQuery, "node", ids)
}

func (s *MemgraphStore) EdgeConfidences(ctx context.Context, ids []string) (map[string]model.Confidence, error) {
	return s.confidences(ctx, edgeConfidencesQuery, "edge", ids)
}

func (s *MemgraphStore) confidences(ctx context.Context, query, kind string, ids []string) (map[string]model.Confidence, error) {
	out := make(map[string]model.Confidence, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	result, err := s.execute(ctx, query, map[string]interface{}{"ids": ids})
	if err != nil {
		return nil, err
	}
	for _, record := range result.Records {
		id, _ := record.Get("id")
		conf, _ := record.Get("confidence")
		idStr, ok := id.(string)
		if !ok {
			continue
		}
		confStr, _ := conf.(string)
		out[idStr] = model.ParseConfidence(confStr)
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, fmt.Errorf("unknown %s id: %s", kind, id)
		}
	}
	return out, nil
}

func (s *MemgraphStore) FindingsByRun(ctx context.Context, runID string) ([]model.Finding, error) {
	result, err := s.execute(ctx, findingsByRunQuery, map[string]interface{}{"run_id": runID})
	if err != nil {
		return nil, err
	}
	var out []model.Finding
	for _, record := range result.Records {
		f := model.Finding{
			FindingID:   recordString(record, "finding_id"),
			Type:        model.FindingType(recordString(record, "finding_type")),
			ProjectID:   recordString(record, "project_id"),
			NodeID:      recordString(record, "node_id"),
			Severity:    recordString(record, "severity"),
			Description: recordString(record, "description"),
		}
		if details := recordString(record, "details"); details != "" {
			if err := json.Unmarshal([]byte(details), &f.Details); err != nil {
				return nil, fmt.Errorf("decoding details of finding %s: %w", f.FindingID, err)
			}
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *MemgraphStore) MatchesByRun(ctx context.Context, runID string) ([]model.MatchRecord, error) {
	result, err := s.execute(ctx, matchesByRunQuery, map[string]interface{}{"run_id": runID})
	if err != nil {
		return nil, err
	}
	var out []model.MatchRecord
	for _, record := range result.Records {
		m := model.MatchRecord{
			MatchID: recordString(record, "match_id"),
			Source: model.MatchSource{
				Type: model.NodeType(recordString(record, "source_type")),
				ID:   recordString(record, "source_id"),
				Text: recordString(record, "source_text"),
			},
			Target: model.MatchTarget{
				Type:       model.NodeType(recordString(record, "target_type")),
				ID:         recordString(record, "target_id"),
				SourceFile: recordString(record, "target_source_file"),
			},
			EdgeType:      model.EdgeType(recordString(record, "edge_type")),
			MatchStrategy: recordString(record, "match_strategy"),
			Confidence:    model.ParseConfidence(recordString(record, "confidence")),
			PrimaryEdgeID: recordString(record, "primary_edge_id"),
		}
		if evidence := recordString(record, "match_evidence"); evidence != "" {
			if err := json.Unmarshal([]byte(evidence), &m.MatchEvidence); err != nil {
				return nil, fmt.Errorf("decoding evidence of match %s: %w", m.MatchID, err)
			}
		}
		if aspects := recordString(record, "unmatched_aspects"); aspects != "" {
			if err := json.Unmarshal([]byte(aspects), &m.UnmatchedAspects); err != nil {
				return nil, fmt.Errorf("decoding aspects of match %s: %w", m.MatchID, err)
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func recordString(record *neo4j.Record, key string) string {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
