package store

const (
	saveRunQuery = `
		MERGE (r:Run {run_id: $run_id})
		SET r.created_at = $created_at,
			r.warnings = $warnings
		RETURN r.run_id AS run_id
	`

	saveNodeQuery = `
		MERGE (n:Node {id: $id})
		SET n.node_type = $node_type,
			n.project_id = $project_id,
			n.name = $name,
			n.text = $text,
			n.confidence = $confidence,
			n.version = $version,
			n.last_updated = $last_updated,
			n.parse_uncertain = $parse_uncertain,
			n.attributes = $attributes,
			n.provenance = $provenance
		RETURN n.id AS id
	`

	saveEdgeQuery = `
		MATCH (source:Node {id: $source})
		MATCH (target:Node {id: $target})
		MERGE (source)-[e:LINKS {id: $id}]->(target)
		SET e.edge_type = $edge_type,
			e.run_id = $run_id,
			e.confidence = $confidence,
			e.match_id = $match_id,
			e.match_strategy = $match_strategy
		RETURN e.id AS id
	`

	saveMatchQuery = `
		MERGE (m:MatchRecord {match_id: $match_id})
		SET m.run_id = $run_id,
			m.source_type = $source_type,
			m.source_id = $source_id,
			m.source_text = $source_text,
			m.target_type = $target_type,
			m.target_id = $target_id,
			m.target_source_file = $target_source_file,
			m.edge_type = $edge_type,
			m.match_strategy = $match_strategy,
			m.confidence = $confidence,
			m.match_evidence = $match_evidence,
			m.unmatched_aspects = $unmatched_aspects,
			m.primary_edge_id = $primary_edge_id
		RETURN m.match_id AS match_id
	`

	saveFindingQuery = `
		MERGE (f:Finding {finding_id: $finding_id})
		SET f.run_id = $run_id,
			f.finding_type = $finding_type,
			f.project_id = $project_id,
			f.node_id = $node_id,
			f.severity = $severity,
			f.description = $description,
			f.details = $details
		RETURN f.finding_id AS finding_id
	`

	clearRunEdgesQuery = `
		MATCH ()-[e:LINKS {run_id: $run_id}]->()
		DELETE e
	`

	clearRunMatchesQuery = `
		MATCH (m:MatchRecord {run_id: $run_id})
		DETACH DELETE m
	`

	clearRunFindingsQuery = `
		MATCH (f:Finding {run_id: $run_id})
		DETACH DELETE f
	`

	nodeConfidencesQuery = `
		MATCH (n:Node)
		WHERE n.id IN $ids
		RETURN n.id AS id, n.confidence AS confidence
	`

	edgeConfidencesQuery = `
		MATCH ()-[e:LINKS]->()
		WHERE e.id IN $ids
		RETURN e.id AS id, e.confidence AS confidence
	`

	findingsByRunQuery = `
		MATCH (f:Finding {run_id: $run_id})
		RETURN f.finding_id AS finding_id, f.finding_type AS finding_type,
			f.project_id AS project_id, f.node_id AS node_id,
			f.severity AS severity, f.description AS description,
			f.details AS details
		ORDER BY f.finding_type, f.node_id, f.finding_id
	`

	matchesByRunQuery = `
		MATCH (m:MatchRecord {run_id: $run_id})
		RETURN m.match_id AS match_id, m.source_type AS source_type,
			m.source_id AS source_id, m.source_text AS source_text,
			m.target_type AS target_type, m.target_id AS target_id,
			m.target_source_file AS target_source_file,
			m.edge_type AS edge_type, m.match_strategy AS match_strategy,
			m.confidence AS confidence, m.match_evidence AS match_evidence,
			m.unmatched_aspects AS unmatched_aspects,
			m.primary_edge_id AS primary_edge_id
		ORDER BY m.source_id, m.target_id
	`
)
