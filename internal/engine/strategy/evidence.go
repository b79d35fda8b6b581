package strategy

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/archtrace/lattice/internal/lexicon"
	"github.com/archtrace/lattice/internal/model"
)

// Evidence binds requirement acceptance criteria to measured metrics in
// evidence nodes (timing reports, utilization reports) and evaluates
// pass/fail numerically. Criteria with no matching metric anywhere are
// recorded as unmatched aspects, never silently dropped.
type Evidence struct{}

func (s *Evidence) Name() string { return model.StrategyEvidence }

func (s *Evidence) Evaluate(_ context.Context, req model.Node, corpus *Corpus, _ []model.CandidateMatch) ([]model.CandidateMatch, error) {
	criteria := req.StringsAttr("acceptance_criteria")
	if len(criteria) == 0 {
		return nil, nil
	}

	var parsed []lexicon.Criterion
	var unparsed []string
	for _, raw := range criteria {
		c, ok := lexicon.ParseCriterion(raw)
		if !ok {
			unparsed = append(unparsed, fmt.Sprintf("criterion not parseable: %q", raw))
			continue
		}
		parsed = append(parsed, c)
	}
	if len(parsed) == 0 {
		return nil, nil
	}

	matched := make([]bool, len(parsed))
	var out []model.CandidateMatch

	for _, entity := range corpus.Entities {
		if entity.Type != model.NodeEvidence {
			continue
		}
		metrics := entity.FloatMapAttr("metrics")
		if len(metrics) == 0 {
			continue
		}

		var evidence []string
		var aspects []string
		for i, c := range parsed {
			value, ok := lookupMetric(metrics, c.Metric)
			if !ok {
				continue
			}
			matched[i] = true
			if c.Evaluate(value) {
				evidence = append(evidence, fmt.Sprintf(
					"evidence: %s evaluated against %s metric %s=%g -> PASS",
					c.String(), entity.StringAttr("evidence_type"), c.Metric, value))
			} else {
				evidence = append(evidence, fmt.Sprintf(
					"evidence: %s evaluated against %s metric %s=%g -> FAIL",
					c.String(), entity.StringAttr("evidence_type"), c.Metric, value))
				aspects = append(aspects, fmt.Sprintf(
					"criterion failed: %s (measured %g)", c.String(), value))
			}
		}
		if len(evidence) == 0 {
			continue
		}
		out = append(out, model.CandidateMatch{
			TargetID:         entity.ID,
			EdgeType:         model.EdgeVerifiedBy,
			Confidence:       model.ConfidenceHigh,
			Evidence:         evidence,
			UnmatchedAspects: aspects,
		})
	}

	// Criteria no evidence node could answer ride along on every candidate
	// so they survive aggregation into the match record.
	var unmet []string
	for i, c := range parsed {
		if !matched[i] {
			unmet = append(unmet, fmt.Sprintf("no metric found for criterion: %s", c.String()))
		}
	}
	unmet = append(unmet, unparsed...)
	if len(unmet) > 0 {
		for i := range out {
			out[i].UnmatchedAspects = append(out[i].UnmatchedAspects, unmet...)
		}
	}

	return out, nil
}

func lookupMetric(metrics map[string]float64, name string) (float64, bool) {
	if v, ok := metrics[name]; ok {
		return v, true
	}
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		if strings.EqualFold(k, name) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return 0, false
	}
	sort.Strings(keys)
	return metrics[keys[0]], true
}
