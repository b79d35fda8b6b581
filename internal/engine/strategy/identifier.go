package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/archtrace/lattice/internal/lexicon"
	"github.com/archtrace/lattice/internal/model"
)

// Identifier links requirements to components by technical-term identity:
// exact name equality, alias lookup (e.g. "DMA" ↔ "axi_dma_0"), VLNV and
// interface-name hits, then bounded edit distance.
type Identifier struct {
	res *Resources
}

func (s *Identifier) Name() string { return model.StrategyIdentifier }

func (s *Identifier) Evaluate(_ context.Context, req model.Node, corpus *Corpus, _ []model.CandidateMatch) ([]model.CandidateMatch, error) {
	terms := requirementTerms(req)
	if len(terms) == 0 {
		return nil, nil
	}

	var out []model.CandidateMatch
	for _, entity := range corpus.Entities {
		if entity.Type != model.NodeComponent {
			continue
		}
		evidence := s.matchEntity(terms, entity)
		if len(evidence) == 0 {
			continue
		}
		out = append(out, model.CandidateMatch{
			TargetID:   entity.ID,
			EdgeType:   model.EdgeImplements,
			Confidence: model.ConfidenceHigh,
			Evidence:   evidence,
		})
	}
	return out, nil
}

// requirementTerms extracts the candidate technical terms of a
// requirement: tokens from its name, title and text with filler removed.
func requirementTerms(req model.Node) []string {
	parts := []string{req.Name, req.Text, req.StringAttr("title")}
	return lexicon.Terms(strings.Join(parts, " "))
}

func (s *Identifier) matchEntity(terms []string, entity model.Node) []string {
	name := strings.ToLower(entity.Name)
	base := lexicon.BaseName(entity.Name)
	vlnvParts := splitVLNV(entity.StringAttr("vlnv"))
	interfaces := lowerAll(entity.StringsAttr("interfaces"))
	maxDist := s.res.Matching.FuzzyMaxDistance

	var evidence []string
	for _, term := range terms {
		switch {
		case term == name || term == base:
			evidence = append(evidence, fmt.Sprintf(
				"identifier: term %q equals entity name %q", term, entity.Name))

		case containsString(vlnvParts, term):
			evidence = append(evidence, fmt.Sprintf(
				"identifier: term %q matches vlnv %q", term, entity.StringAttr("vlnv")))

		case containsString(interfaces, term):
			evidence = append(evidence, fmt.Sprintf(
				"identifier: term %q matches interface of %q", term, entity.Name))

		case s.aliasHit(term, name, base):
			evidence = append(evidence, fmt.Sprintf(
				"identifier: term %q matches entity %q via alias", term, entity.Name))

		case len([]rune(term)) >= 4 && lexicon.EditDistance(term, base) <= maxDist:
			evidence = append(evidence, fmt.Sprintf(
				"identifier: term %q within edit distance %d of %q",
				term, lexicon.EditDistance(term, base), entity.Name))
		}
	}
	return evidence
}

func (s *Identifier) aliasHit(term, name, base string) bool {
	for _, canonical := range s.res.Aliases.Lookup(term) {
		if strings.Contains(name, canonical) || strings.Contains(base, canonical) {
			return true
		}
	}
	return false
}

func splitVLNV(vlnv string) []string {
	if vlnv == "" {
		return nil
	}
	return lowerAll(strings.Split(vlnv, ":"))
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
