package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/archtrace/lattice/internal/model"
)

// SQLiteStore keeps the graph in an embedded sqlite database. Nodes and
// edges live in relational tables with provenance broken out into child
// tables; match records and findings are stored with their list fields as
// JSON columns.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	warnings TEXT
);

CREATE TABLE IF NOT EXISTS nodes (
	id TEXT PRIMARY KEY,
	node_type TEXT NOT NULL,
	project_id TEXT NOT NULL,
	name TEXT NOT NULL,
	text TEXT,
	confidence TEXT NOT NULL,
	version INTEGER,
	last_updated TEXT,
	parse_uncertain INTEGER NOT NULL DEFAULT 0,
	attributes TEXT
);
CREATE INDEX IF NOT EXISTS idx_nodes_project ON nodes(project_id);
CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(node_type);

CREATE TABLE IF NOT EXISTS node_provenance_sources (
	node_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	source_file TEXT NOT NULL,
	source_line INTEGER,
	source_section TEXT
);
CREATE INDEX IF NOT EXISTS idx_node_prov ON node_provenance_sources(node_id);

CREATE TABLE IF NOT EXISTS edges (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	edge_type TEXT NOT NULL,
	source TEXT NOT NULL,
	target TEXT NOT NULL,
	confidence TEXT NOT NULL,
	match_id TEXT,
	match_strategy TEXT,
	attributes TEXT
);
CREATE INDEX IF NOT EXISTS idx_edges_run ON edges(run_id);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target);

CREATE TABLE IF NOT EXISTS match_records (
	match_id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	source_type TEXT NOT NULL,
	source_id TEXT NOT NULL,
	source_text TEXT,
	target_type TEXT NOT NULL,
	target_id TEXT NOT NULL,
	target_source_file TEXT,
	edge_type TEXT NOT NULL,
	match_strategy TEXT NOT NULL,
	confidence TEXT NOT NULL,
	match_evidence TEXT,
	unmatched_aspects TEXT,
	primary_edge_id TEXT
);
CREATE INDEX IF NOT EXISTS idx_matches_run ON match_records(run_id);
CREATE INDEX IF NOT EXISTS idx_matches_source ON match_records(source_id);

CREATE TABLE IF NOT EXISTS findings (
	finding_id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	finding_type TEXT NOT NULL,
	project_id TEXT,
	node_id TEXT,
	severity TEXT NOT NULL,
	description TEXT NOT NULL,
	details TEXT
);
CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
`

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %q: %w", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %s: %w", strings.TrimSuffix(pragma, ";"), err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	log.Printf("Opened sqlite store at %s", path)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close(context.Context) error {
	return s.db.Close()
}

func (s *SQLiteStore) PersistRun(ctx context.Context, snap *model.Snapshot, result *model.RunResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Replaying a run id wipes its previous output before re-inserting, so
	// the same snapshot never accumulates duplicates.
	for _, stmt := range []string{
		"DELETE FROM edges WHERE run_id = ?",
		"DELETE FROM match_records WHERE run_id = ?",
		"DELETE FROM findings WHERE run_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, result.RunID); err != nil {
			return fmt.Errorf("clearing previous run %s: %w", result.RunID, err)
		}
	}

	warnings, _ := json.Marshal(result.Warnings)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, warnings) VALUES (?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET created_at = excluded.created_at, warnings = excluded.warnings`,
		result.RunID, time.Now().UTC().Format(time.RFC3339), string(warnings)); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	nodes := make([]model.Node, 0, len(snap.Requirements)+len(snap.Entities))
	nodes = append(nodes, snap.Requirements...)
	nodes = append(nodes, snap.Entities...)
	for _, n := range nodes {
		if err := upsertNode(ctx, tx, n); err != nil {
			return err
		}
	}

	for _, e := range result.Edges {
		if err := insertEdge(ctx, tx, result.RunID, e); err != nil {
			return err
		}
	}
	for _, e := range snap.DependsOn {
		if err := insertEdge(ctx, tx, result.RunID, e); err != nil {
			return err
		}
	}

	for _, m := range result.Matches {
		evidence, _ := json.Marshal(m.MatchEvidence)
		aspects, _ := json.Marshal(m.UnmatchedAspects)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO match_records
			 (match_id, run_id, source_type, source_id, source_text,
			  target_type, target_id, target_source_file,
			  edge_type, match_strategy, confidence,
			  match_evidence, unmatched_aspects, primary_edge_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(match_id) DO UPDATE SET
			  match_strategy = excluded.match_strategy,
			  confidence = excluded.confidence,
			  match_evidence = excluded.match_evidence,
			  unmatched_aspects = excluded.unmatched_aspects,
			  primary_edge_id = excluded.primary_edge_id`,
			m.MatchID, result.RunID, string(m.Source.Type), m.Source.ID, m.Source.Text,
			string(m.Target.Type), m.Target.ID, m.Target.SourceFile,
			string(m.EdgeType), m.MatchStrategy, m.Confidence.String(),
			string(evidence), string(aspects), m.PrimaryEdgeID); err != nil {
			return fmt.Errorf("inserting match record %s: %w", m.MatchID, err)
		}
	}

	for _, f := range result.Findings {
		details, _ := json.Marshal(f.Details)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO findings
			 (finding_id, run_id, finding_type, project_id, node_id, severity, description, details)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(finding_id) DO UPDATE SET
			  severity = excluded.severity,
			  description = excluded.description,
			  details = excluded.details`,
			f.FindingID, result.RunID, string(f.Type), f.ProjectID, f.NodeID,
			f.Severity, f.Description, string(details)); err != nil {
			return fmt.Errorf("inserting finding %s: %w", f.FindingID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", result.RunID, err)
	}
	return nil
}

func upsertNode(ctx context.Context, tx *sql.Tx, n model.Node) error {
	attrs, _ := json.Marshal(n.Attributes)
	parseUncertain := 0
	if n.ParseUncertain {
		parseUncertain = 1
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO nodes
		 (id, node_type, project_id, name, text, confidence, version, last_updated, parse_uncertain, attributes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		  node_type = excluded.node_type,
		  project_id = excluded.project_id,
		  name = excluded.name,
		  text = excluded.text,
		  confidence = excluded.confidence,
		  version = excluded.version,
		  last_updated = excluded.last_updated,
		  parse_uncertain = excluded.parse_uncertain,
		  attributes = excluded.attributes`,
		n.ID, string(n.Type), n.ProjectID, n.Name, n.Text, n.Confidence.String(),
		n.Version, n.LastUpdated, parseUncertain, string(attrs)); err != nil {
		return fmt.Errorf("upserting node %s: %w", n.ID, err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM node_provenance_sources WHERE node_id = ?", n.ID); err != nil {
		return fmt.Errorf("clearing provenance of node %s: %w", n.ID, err)
	}
	for _, p := range n.Provenance {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO node_provenance_sources (node_id, source_file, source_line, source_section)
			 VALUES (?, ?, ?, ?)`,
			n.ID, p.SourceFile, p.SourceLine, p.SourceSection); err != nil {
			return fmt.Errorf("inserting provenance of node %s: %w", n.ID, err)
		}
	}
	return nil
}

func insertEdge(ctx context.Context, tx *sql.Tx, runID string, e model.Edge) error {
	attrs, _ := json.Marshal(e.Attributes)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO edges
		 (id, run_id, edge_type, source, target, confidence, match_id, match_strategy, attributes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		  confidence = excluded.confidence,
		  match_id = excluded.match_id,
		  match_strategy = excluded.match_strategy,
		  attributes = excluded.attributes`,
		e.ID, runID, string(e.Type), e.SourceNodeID, e.TargetNodeID,
		e.Confidence.String(), e.MatchID, e.MatchStrategy, string(attrs)); err != nil {
		return fmt.Errorf("inserting edge %s: %w", e.ID, err)
	}
	return nil
}

func (s *SQLiteStore) NodeConfidences(ctx context.Context, ids []string) (map[string]model.Confidence, error) {
	return s.confidences(ctx, "nodes", "id", ids)
}

func (s *SQLiteStore) EdgeConfidences(ctx context.Context, ids []string) (map[string]model.Confidence, error) {
	return s.confidences(ctx, "edges", "id", ids)
}

func (s *SQLiteStore) confidences(ctx context.Context, table, column string, ids []string) (map[string]model.Confidence, error) {
	out := make(map[string]model.Confidence, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	unique := make([]string, 0, len(ids))
	seen := map[string]bool{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Strings(unique)

	placeholders := strings.Repeat("?,", len(unique))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(unique))
	for i, id := range unique {
		args[i] = id
	}

	// The table and column names come from this package, never from input.
	query := fmt.Sprintf("SELECT %s, confidence FROM %s WHERE %s IN (%s)",
		column, table, column, placeholders)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s confidences: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, conf string
		if err := rows.Scan(&id, &conf); err != nil {
			return nil, err
		}
		out[id] = model.ParseConfidence(conf)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, id := range unique {
		if _, ok := out[id]; !ok {
			return nil, fmt.Errorf("unknown %s id: %s", strings.TrimSuffix(table, "s"), id)
		}
	}
	return out, nil
}

func (s *SQLiteStore) FindingsByRun(ctx context.Context, runID string) ([]model.Finding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT finding_id, finding_type, project_id, node_id, severity, description, details
		 FROM findings WHERE run_id = ? ORDER BY finding_type, node_id, finding_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying findings of run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []model.Finding
	for rows.Next() {
		var f model.Finding
		var ftype, details string
		if err := rows.Scan(&f.FindingID, &ftype, &f.ProjectID, &f.NodeID,
			&f.Severity, &f.Description, &details); err != nil {
			return nil, err
		}
		f.Type = model.FindingType(ftype)
		if details != "" {
			if err := json.Unmarshal([]byte(details), &f.Details); err != nil {
				return nil, fmt.Errorf("decoding details of finding %s: %w", f.FindingID, err)
			}
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) MatchesByRun(ctx context.Context, runID string) ([]model.MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT match_id, source_type, source_id, source_text,
		        target_type, target_id, target_source_file,
		        edge_type, match_strategy, confidence,
		        match_evidence, unmatched_aspects, primary_edge_id
		 FROM match_records WHERE run_id = ? ORDER BY source_id, target_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying matches of run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []model.MatchRecord
	for rows.Next() {
		var m model.MatchRecord
		var srcType, tgtType, edgeType, conf, evidence, aspects string
		if err := rows.Scan(&m.MatchID, &srcType, &m.Source.ID, &m.Source.Text,
			&tgtType, &m.Target.ID, &m.Target.SourceFile,
			&edgeType, &m.MatchStrategy, &conf,
			&evidence, &aspects, &m.PrimaryEdgeID); err != nil {
			return nil, err
		}
		m.Source.Type = model.NodeType(srcType)
		m.Target.Type = model.NodeType(tgtType)
		m.EdgeType = model.EdgeType(edgeType)
		m.Confidence = model.ParseConfidence(conf)
		if evidence != "" {
			if err := json.Unmarshal([]byte(evidence), &m.MatchEvidence); err != nil {
				return nil, fmt.Errorf("decoding evidence of match %s: %w", m.MatchID, err)
			}
		}
		if aspects != "" {
			if err := json.Unmarshal([]byte(aspects), &m.UnmatchedAspects); err != nil {
				return nil, fmt.Errorf("decoding aspects of match %s: %w", m.MatchID, err)
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
