// Package store persists matching runs. Two backends share one
// interface: an embedded sqlite database and a Memgraph graph reached
// over the bolt protocol.
package store

import (
	"context"
	"fmt"

	"github.com/archtrace/lattice/internal/config"
	"github.com/archtrace/lattice/internal/model"
)

type Store interface {
	// PersistRun commits a snapshot and its run result in one transaction.
	// Re-running the same snapshot upserts; nothing is duplicated.
	PersistRun(ctx context.Context, snap *model.Snapshot, result *model.RunResult) error

	// NodeConfidences resolves confidences for the given node ids. Every
	// id must exist; an unknown id is an error, never a default.
	NodeConfidences(ctx context.Context, ids []string) (map[string]model.Confidence, error)

	// EdgeConfidences resolves confidences for the given edge ids.
	EdgeConfidences(ctx context.Context, ids []string) (map[string]model.Confidence, error)

	FindingsByRun(ctx context.Context, runID string) ([]model.Finding, error)
	MatchesByRun(ctx context.Context, runID string) ([]model.MatchRecord, error)

	Close(ctx context.Context) error
}

// Open builds the configured backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath)
	case "memgraph":
		return OpenMemgraph(ctx, cfg.Memgraph)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}
}
