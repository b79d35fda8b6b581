//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archtrace/lattice/internal/config"
	"github.com/archtrace/lattice/internal/model"
	"github.com/archtrace/lattice/internal/store"
)

func TestMemgraphRoundTrip(t *testing.T) {
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}

	ctx := context.Background()
	st, err := store.OpenMemgraph(ctx, config.MemgraphConfig{
		URI:      uri,
		User:     os.Getenv("MEMGRAPH_USER"),
		Password: os.Getenv("MEMGRAPH_PASSWORD"),
	})
	require.NoError(t, err)
	defer st.Close(ctx)

	eng := newEngine(st)
	result, err := eng.Run(ctx, snapshot())
	require.NoError(t, err)
	require.NotEmpty(t, result.Matches)

	matches, err := st.MatchesByRun(ctx, result.RunID)
	require.NoError(t, err)
	assert.Len(t, matches, len(result.Matches))

	findings, err := st.FindingsByRun(ctx, result.RunID)
	require.NoError(t, err)
	assert.Len(t, findings, len(result.Findings))

	nodeConfs, err := st.NodeConfidences(ctx, []string{"REQ-001"})
	require.NoError(t, err)
	assert.Equal(t, model.ConfidenceHigh, nodeConfs["REQ-001"])

	_, err = st.NodeConfidences(ctx, []string{"no-such-node"})
	assert.Error(t, err)
}
