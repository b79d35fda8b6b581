package strategy

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archtrace/lattice/internal/config"
	"github.com/archtrace/lattice/internal/lexicon"
	"github.com/archtrace/lattice/internal/model"
)

func testResources() *Resources {
	return &Resources{
		Aliases: lexicon.NewAliasTable(map[string][]string{
			"dma": {"axi_dma"},
		}),
		Matching: config.MatchingConfig{
			FuzzyMaxDistance:    2,
			SemanticThreshold:   0.72,
			ClosureDepth:        2,
			NumericTolerancePct: 0.5,
		},
	}
}

func component(id, name string, attrs map[string]interface{}) model.Node {
	return model.Node{
		ID: id, Type: model.NodeComponent, ProjectID: "proj-1",
		Name: name, Confidence: model.ConfidenceHigh, Attributes: attrs,
	}
}

func dependsOn(source, target string) model.Edge {
	return model.Edge{
		ID:           source + "->" + target,
		Type:         model.EdgeDependsOn,
		SourceNodeID: source,
		TargetNodeID: target,
		Confidence:   model.ConfidenceHigh,
	}
}

func TestIdentifierAliasMatch(t *testing.T) {
	req := model.Node{
		ID: "REQ-001", Type: model.NodeRequirement, ProjectID: "proj-1",
		Name: "REQ-001", Text: "Sistem DMA ile veri aktarımı yapacak",
	}
	corpus := NewCorpus([]model.Node{
		component("c-dma", "axi_dma_0", nil),
		component("c-uart", "axi_uartlite_0", nil),
	}, nil)

	ident := &Identifier{res: testResources()}
	got, err := ident.Evaluate(context.Background(), req, corpus, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "c-dma", got[0].TargetID)
	assert.Equal(t, model.EdgeImplements, got[0].EdgeType)
	assert.Equal(t, model.ConfidenceHigh, got[0].Confidence)
	assert.Contains(t, got[0].Evidence[0], "via alias")
}

func TestIdentifierExactAndVLNV(t *testing.T) {
	req := model.Node{
		ID: "REQ-002", Type: model.NodeRequirement, ProjectID: "proj-1",
		Name: "REQ-002", Text: "uartlite üzerinden debug çıkışı",
	}
	corpus := NewCorpus([]model.Node{
		component("c-uart", "axi_uartlite_0", map[string]interface{}{
			"vlnv": "xilinx.com:ip:uartlite:2.0",
		}),
	}, nil)

	ident := &Identifier{res: testResources()}
	got, err := ident.Evaluate(context.Background(), req, corpus, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c-uart", got[0].TargetID)
}

func TestClosureBoundedAndCycleSafe(t *testing.T) {
	// interconnect and clk_wiz depend on each other; the visited set must
	// keep the walk from looping, and far_block at depth 3 stays out.
	corpus := NewCorpus([]model.Node{
		component("c-dma", "axi_dma_0", nil),
		component("c-ic", "axi_interconnect_0", nil),
		component("c-clk", "clk_wiz_0", nil),
		component("c-far", "far_block_0", nil),
	}, []model.Edge{
		dependsOn("c-dma", "c-ic"),
		dependsOn("c-ic", "c-clk"),
		dependsOn("c-clk", "c-ic"),
		dependsOn("c-clk", "c-far"),
	})

	anchors := []model.CandidateMatch{{
		TargetID: "c-dma", EdgeType: model.EdgeImplements,
		Confidence: model.ConfidenceHigh, Strategy: model.StrategyIdentifier,
	}}

	closure := &Closure{res: testResources()}
	got, err := closure.Evaluate(context.Background(), model.Node{ID: "REQ-001"}, corpus, anchors)
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, c := range got {
		ids[i] = c.TargetID
		assert.True(t, c.Indirect)
		assert.Equal(t, model.ConfidenceMedium, c.Confidence)
	}
	// c-ic at depth 1, c-clk at depth 2; c-far is at depth 3 and excluded.
	assert.Equal(t, []string{"c-clk", "c-ic"}, ids)
}

func TestClosureIgnoresIndirectAnchors(t *testing.T) {
	corpus := NewCorpus([]model.Node{
		component("c-a", "block_a", nil),
		component("c-b", "block_b", nil),
	}, []model.Edge{dependsOn("c-a", "c-b")})

	anchors := []model.CandidateMatch{{
		TargetID: "c-a", EdgeType: model.EdgeImplements,
		Confidence: model.ConfidenceMedium, Indirect: true,
	}}

	closure := &Closure{res: testResources()}
	got, err := closure.Evaluate(context.Background(), model.Node{ID: "REQ-001"}, corpus, anchors)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEvidenceBindingPassAndFail(t *testing.T) {
	req := model.Node{
		ID: "REQ-010", Type: model.NodeRequirement, ProjectID: "proj-1",
		Name: "REQ-010",
		Attributes: map[string]interface{}{
			"acceptance_criteria": []interface{}{"WNS ≥ 0 ns", "LUT_util <= 80 %"},
		},
	}
	corpus := NewCorpus([]model.Node{
		{
			ID: "e-timing", Type: model.NodeEvidence, ProjectID: "proj-1",
			Name: "timing_summary", Confidence: model.ConfidenceHigh,
			Attributes: map[string]interface{}{
				"evidence_type": "timing_report",
				"metrics":       map[string]interface{}{"WNS": -0.12},
			},
		},
		{
			ID: "e-util", Type: model.NodeEvidence, ProjectID: "proj-1",
			Name: "utilization", Confidence: model.ConfidenceHigh,
			Attributes: map[string]interface{}{
				"evidence_type": "utilization_report",
				"metrics":       map[string]interface{}{"LUT_util": 64.0},
			},
		},
	}, nil)

	ev := &Evidence{}
	got, err := ev.Evaluate(context.Background(), req, corpus, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byTarget := map[string]model.CandidateMatch{}
	for _, c := range got {
		byTarget[c.TargetID] = c
		assert.Equal(t, model.EdgeVerifiedBy, c.EdgeType)
		assert.Equal(t, model.ConfidenceHigh, c.Confidence)
	}

	timing := byTarget["e-timing"]
	assert.Contains(t, timing.Evidence[0], "FAIL")
	require.NotEmpty(t, timing.UnmatchedAspects)
	assert.Contains(t, timing.UnmatchedAspects[0], "criterion failed")

	util := byTarget["e-util"]
	assert.Contains(t, util.Evidence[0], "PASS")
}

func TestEvidenceUnmetCriteriaSurvive(t *testing.T) {
	req := model.Node{
		ID: "REQ-011", Type: model.NodeRequirement, ProjectID: "proj-1",
		Name: "REQ-011",
		Attributes: map[string]interface{}{
			"acceptance_criteria": []interface{}{"WNS ≥ 0 ns", "BRAM_util <= 50 %"},
		},
	}
	corpus := NewCorpus([]model.Node{{
		ID: "e-timing", Type: model.NodeEvidence, ProjectID: "proj-1",
		Name: "timing_summary", Confidence: model.ConfidenceHigh,
		Attributes: map[string]interface{}{
			"metrics": map[string]interface{}{"WNS": 0.05},
		},
	}}, nil)

	ev := &Evidence{}
	got, err := ev.Evaluate(context.Background(), req, corpus, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// No evidence node carries BRAM_util, so the unmet criterion rides on
	// the candidate instead of disappearing.
	found := false
	for _, a := range got[0].UnmatchedAspects {
		if a == "no metric found for criterion: BRAM_util <= 50 %" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestConstraintBindingAgreement(t *testing.T) {
	req := model.Node{
		ID: "REQ-020", Type: model.NodeRequirement, ProjectID: "proj-1",
		Name: "REQ-020",
		Attributes: map[string]interface{}{
			"constraints": []interface{}{"Sistem clock 200 MHz olacak"},
		},
	}
	corpus := NewCorpus([]model.Node{{
		ID: "k-clk", Type: model.NodeConstraint, ProjectID: "proj-1",
		Name: "sys_clk_constraint", Confidence: model.ConfidenceHigh,
		Attributes: map[string]interface{}{
			"spec": "create_clock -period 5.000 [get_ports sys_clk]",
		},
	}}, nil)

	con := &Constraint{res: testResources()}
	got, err := con.Evaluate(context.Background(), req, corpus, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, model.EdgeConstrainedBy, got[0].EdgeType)
	assert.Equal(t, model.ConfidenceHigh, got[0].Confidence)
	assert.Empty(t, got[0].Mismatches)
	assert.Contains(t, got[0].Evidence[0], "agrees")
}

func TestConstraintBindingMismatchIsFlaggedNotDropped(t *testing.T) {
	req := model.Node{
		ID: "REQ-021", Type: model.NodeRequirement, ProjectID: "proj-1",
		Name: "REQ-021",
		Attributes: map[string]interface{}{
			"constraints": []interface{}{"Sistem clock 200 MHz olacak"},
		},
	}
	corpus := NewCorpus([]model.Node{{
		ID: "k-clk", Type: model.NodeConstraint, ProjectID: "proj-1",
		Name: "sys_clk_constraint", Confidence: model.ConfidenceHigh,
		Attributes: map[string]interface{}{
			"spec": "create_clock -period 6.000 [get_ports sys_clk]",
		},
	}}, nil)

	con := &Constraint{res: testResources()}
	got, err := con.Evaluate(context.Background(), req, corpus, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.Len(t, got[0].Mismatches, 1)
	m := got[0].Mismatches[0]
	assert.Equal(t, "clock_frequency", m.Parameter)
	assert.Equal(t, "k-clk", m.TargetNodeID)
	assert.Contains(t, got[0].UnmatchedAspects[0], "constraint mismatch")
}

// stubEmbedder returns canned vectors per text so semantic matching runs
// without a network.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func TestSemanticMatchThreshold(t *testing.T) {
	res := testResources()
	near := component("c-near", "video_pipeline_0", nil)
	far := component("c-far", "clk_wiz_0", nil)

	res.Embedder = &stubEmbedder{vectors: map[string][]float32{
		"Görüntü işleme hattı gerçek zamanlı çalışacak": {1, 0, 0},
		ContextText(near): {0.95, 0.3, 0},
		ContextText(far):  {0, 1, 0},
	}}

	req := model.Node{
		ID: "REQ-030", Type: model.NodeRequirement, ProjectID: "proj-1",
		Name: "REQ-030", Text: "Görüntü işleme hattı gerçek zamanlı çalışacak",
	}
	corpus := NewCorpus([]model.Node{near, far}, nil)

	sem := &Semantic{res: res}
	got, err := sem.Evaluate(context.Background(), req, corpus, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c-near", got[0].TargetID)
	assert.Equal(t, model.ConfidenceMedium, got[0].Confidence)
}

func TestSemanticEmbedderFailurePropagates(t *testing.T) {
	res := testResources()
	res.Embedder = &stubEmbedder{err: fmt.Errorf("connection refused")}

	req := model.Node{ID: "REQ-031", Type: model.NodeRequirement, Name: "REQ-031", Text: "herhangi bir metin"}
	corpus := NewCorpus([]model.Node{component("c-x", "block_x", nil)}, nil)

	sem := &Semantic{res: res}
	_, err := sem.Evaluate(context.Background(), req, corpus, nil)
	assert.Error(t, err)
}

func TestSemanticNilEmbedderIsNoop(t *testing.T) {
	sem := &Semantic{res: testResources()}
	got, err := sem.Evaluate(context.Background(), model.Node{ID: "r", Text: "x"}, NewCorpus(nil, nil), nil)
	assert.NoError(t, err)
	assert.Empty(t, got)
}
