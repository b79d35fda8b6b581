package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archtrace/lattice/internal/config"
	"github.com/archtrace/lattice/internal/engine"
	"github.com/archtrace/lattice/internal/engine/strategy"
	"github.com/archtrace/lattice/internal/lexicon"
	"github.com/archtrace/lattice/internal/model"
	"github.com/archtrace/lattice/internal/store"
)

func snapshot() *model.Snapshot {
	return &model.Snapshot{
		Requirements: []model.Node{
			{
				ID: "REQ-001", Type: model.NodeRequirement, ProjectID: "proj-1",
				Name: "REQ-001", Text: "Sistem DMA ile veri aktarımı yapacak",
				Confidence: model.ConfidenceHigh,
				Provenance: []model.SourceRef{{SourceFile: "docs/requirements.md", SourceLine: 12}},
			},
			{
				ID: "REQ-002", Type: model.NodeRequirement, ProjectID: "proj-1",
				Name: "REQ-002", Text: "Gerçeklenmemiş özellik",
				Confidence: model.ConfidenceHigh,
				Attributes: map[string]interface{}{"priority": "critical"},
			},
		},
		Entities: []model.Node{
			{
				ID: "c-dma", Type: model.NodeComponent, ProjectID: "proj-1",
				Name: "axi_dma_0", Confidence: model.ConfidenceHigh,
				Attributes: map[string]interface{}{"source_file": "bd/design_1.tcl"},
			},
			{
				ID: "c-orphan", Type: model.NodeComponent, ProjectID: "proj-1",
				Name: "ila_debug_0", Confidence: model.ConfidenceHigh,
			},
		},
	}
}

func newEngine(st store.Store) *engine.Engine {
	cfg := config.Default()
	cfg.Matching.Aliases = map[string][]string{"dma": {"axi_dma"}}
	res := &strategy.Resources{
		Aliases:  lexicon.NewAliasTable(cfg.Matching.Aliases),
		Matching: cfg.Matching,
	}
	return engine.New(cfg, st, res)
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lattice.sqlite")

	st, err := store.OpenSQLite(path)
	require.NoError(t, err)
	defer st.Close(ctx)

	eng := newEngine(st)
	result, err := eng.Run(ctx, snapshot())
	require.NoError(t, err)
	require.NotEmpty(t, result.Matches)

	// Matches read back as written.
	matches, err := st.MatchesByRun(ctx, result.RunID)
	require.NoError(t, err)
	require.Len(t, matches, len(result.Matches))
	assert.Equal(t, "REQ-001", matches[0].Source.ID)
	assert.Equal(t, "c-dma", matches[0].Target.ID)
	assert.Equal(t, model.ConfidenceHigh, matches[0].Confidence)
	assert.NotEmpty(t, matches[0].MatchEvidence)

	// Findings: the unmatched requirement and the orphan component.
	findings, err := st.FindingsByRun(ctx, result.RunID)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	byType := map[model.FindingType]model.Finding{}
	for _, f := range findings {
		byType[f.Type] = f
	}
	assert.Equal(t, "REQ-002", byType[model.FindingCoverageGap].NodeID)
	assert.Equal(t, "c-orphan", byType[model.FindingOrphanComponent].NodeID)

	// Confidence lookups serve the path confidence endpoint.
	nodeConfs, err := st.NodeConfidences(ctx, []string{"REQ-001", "c-dma"})
	require.NoError(t, err)
	edgeConfs, err := st.EdgeConfidences(ctx, []string{result.Edges[0].ID})
	require.NoError(t, err)
	chain := engine.ChainConfidence(
		[]model.Confidence{nodeConfs["REQ-001"], nodeConfs["c-dma"]},
		[]model.Confidence{edgeConfs[result.Edges[0].ID]},
	)
	assert.Equal(t, model.ConfidenceHigh, chain)

	// Unknown ids are errors, never defaults.
	_, err = st.NodeConfidences(ctx, []string{"no-such-node"})
	assert.Error(t, err)
}

func TestSQLiteRerunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lattice.sqlite")

	st, err := store.OpenSQLite(path)
	require.NoError(t, err)
	defer st.Close(ctx)

	eng := newEngine(st)
	first, err := eng.Run(ctx, snapshot())
	require.NoError(t, err)
	second, err := eng.Run(ctx, snapshot())
	require.NoError(t, err)
	assert.Equal(t, first.RunID, second.RunID)

	matches, err := st.MatchesByRun(ctx, first.RunID)
	require.NoError(t, err)
	assert.Len(t, matches, len(first.Matches))

	findings, err := st.FindingsByRun(ctx, first.RunID)
	require.NoError(t, err)
	assert.Len(t, findings, len(first.Findings))
}
