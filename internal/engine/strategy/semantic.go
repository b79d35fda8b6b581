package strategy

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/archtrace/lattice/internal/embed"
	"github.com/archtrace/lattice/internal/model"
)

// Semantic links requirements to components by embedding similarity
// between the requirement text and an entity context string. It is the
// only strategy that calls the external embedding service; any failure
// skips the whole strategy for the affected requirement.
type Semantic struct {
	res *Resources
}

func (s *Semantic) Name() string { return model.StrategySemantic }

func (s *Semantic) Evaluate(ctx context.Context, req model.Node, corpus *Corpus, _ []model.CandidateMatch) ([]model.CandidateMatch, error) {
	if s.res.Embedder == nil {
		return nil, nil
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		text = req.Name
	}

	reqVec, err := s.res.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding requirement %s: %w", req.ID, err)
	}

	threshold := s.res.Matching.SemanticThreshold
	var out []model.CandidateMatch
	for _, entity := range corpus.Entities {
		if entity.Type != model.NodeComponent {
			continue
		}
		entVec, err := s.res.Embedder.Embed(ctx, ContextText(entity))
		if err != nil {
			return nil, fmt.Errorf("embedding entity %s: %w", entity.ID, err)
		}
		sim := embed.CosineSimilarity(reqVec, entVec)
		if sim < threshold {
			continue
		}
		out = append(out, model.CandidateMatch{
			TargetID:   entity.ID,
			EdgeType:   model.EdgeImplements,
			Confidence: model.ConfidenceMedium,
			Evidence: []string{fmt.Sprintf(
				"semantic: cosine similarity %.3f >= %.3f between requirement text and context of %q",
				sim, threshold, entity.Name)},
		})
	}
	return out, nil
}

// ContextText assembles the entity description that gets embedded: name,
// vlnv, parameters, interfaces and extracted comments in a stable field
// order.
func ContextText(entity model.Node) string {
	parts := []string{"NAME: " + entity.Name}
	if vlnv := entity.StringAttr("vlnv"); vlnv != "" {
		parts = append(parts, "VLNV: "+vlnv)
	}
	if params, ok := entity.Attributes["params"].(map[string]interface{}); ok {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("PARAM %s=%v", k, params[k]))
		}
	}
	if ifaces := entity.StringsAttr("interfaces"); len(ifaces) > 0 {
		parts = append(parts, "INTERFACES: "+strings.Join(ifaces, ", "))
	}
	if comments := entity.StringAttr("comments"); comments != "" {
		parts = append(parts, "COMMENTS: "+comments)
	}
	return strings.Join(parts, "\n")
}
