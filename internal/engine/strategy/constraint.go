package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/archtrace/lattice/internal/lexicon"
	"github.com/archtrace/lattice/internal/model"
)

// Constraint binds requirement-side constraint text (frequency, voltage,
// latency, bandwidth, bit width) to project constraint nodes. A numeric
// disagreement is flagged as an unmatched aspect and a structured
// mismatch; the match itself is still created so the contradiction stays
// visible in the graph.
type Constraint struct {
	res *Resources
}

func (s *Constraint) Name() string { return model.StrategyConstraint }

func (s *Constraint) Evaluate(_ context.Context, req model.Node, corpus *Corpus, _ []model.CandidateMatch) ([]model.CandidateMatch, error) {
	reqQuantities := requirementQuantities(req)
	if len(reqQuantities) == 0 {
		return nil, nil
	}

	tolerance := s.res.Matching.NumericTolerancePct
	var out []model.CandidateMatch

	for _, entity := range corpus.Entities {
		if entity.Type != model.NodeConstraint {
			continue
		}
		spec := entity.StringAttr("spec")
		if spec == "" {
			spec = entity.Text
		}
		entQuantities := lexicon.ParseQuantities(spec)
		if len(entQuantities) == 0 {
			continue
		}

		var evidence, aspects []string
		var mismatches []model.Mismatch
		for _, rq := range reqQuantities {
			for _, eq := range entQuantities {
				if rq.Kind != eq.Kind {
					continue
				}
				if lexicon.WithinTolerance(rq.Value, eq.Value, tolerance) {
					evidence = append(evidence, fmt.Sprintf(
						"constraint: %s %q agrees with project spec %q (%s)",
						rq.Kind, rq.Raw, eq.Raw, eq.String()))
				} else {
					evidence = append(evidence, fmt.Sprintf(
						"constraint: %s bound to project spec %q with disagreement",
						rq.Kind, eq.Raw))
					aspects = append(aspects, fmt.Sprintf(
						"constraint mismatch: %s requirement=%s project=%s",
						rq.Kind, rq.String(), eq.String()))
					mismatches = append(mismatches, model.Mismatch{
						Parameter:        string(rq.Kind),
						RequirementValue: rq.String(),
						ProjectValue:     eq.String(),
						TargetNodeID:     entity.ID,
					})
				}
			}
		}
		if len(evidence) == 0 {
			continue
		}
		out = append(out, model.CandidateMatch{
			TargetID:         entity.ID,
			EdgeType:         model.EdgeConstrainedBy,
			Confidence:       model.ConfidenceHigh,
			Evidence:         evidence,
			UnmatchedAspects: aspects,
			Mismatches:       mismatches,
		})
	}
	return out, nil
}

// requirementQuantities parses the requirement's constraint strings, and
// its own text when the node itself is a constraint.
func requirementQuantities(req model.Node) []lexicon.Quantity {
	texts := req.StringsAttr("constraints")
	if req.Type == model.NodeConstraint {
		if t := strings.TrimSpace(req.Text); t != "" {
			texts = append(texts, t)
		}
	}

	var out []lexicon.Quantity
	for _, t := range texts {
		out = append(out, lexicon.ParseQuantities(t)...)
	}
	return out
}
