package lexicon

import (
	"fmt"
	"regexp"
	"strings"
)

// Criterion is one parsed acceptance criterion: a metric name, a
// comparison operator and a threshold, e.g. "WNS ≥ 0 ns".
type Criterion struct {
	Metric    string
	Operator  string
	Threshold float64
	Unit      string
	Raw       string
}

var criterionPattern = regexp.MustCompile(
	`([A-Za-z][A-Za-z0-9_]*)\s*(>=|<=|==|=|>|<|≥|≤)\s*(-?\d+(?:\.\d+)?)\s*([A-Za-z%/]+)?`)

// ParseCriterion extracts the first metric comparison from an acceptance
// criterion string. It returns false when the text contains no comparison.
func ParseCriterion(text string) (Criterion, bool) {
	m := criterionPattern.FindStringSubmatch(text)
	if m == nil {
		return Criterion{}, false
	}
	op := m[2]
	switch op {
	case "≥":
		op = ">="
	case "≤":
		op = "<="
	case "=":
		op = "=="
	}
	return Criterion{
		Metric:    m[1],
		Operator:  op,
		Threshold: parseNumber(m[3]),
		Unit:      m[4],
		Raw:       strings.TrimSpace(text),
	}, true
}

// Evaluate applies the criterion's comparison to a measured value.
func (c Criterion) Evaluate(actual float64) bool {
	switch c.Operator {
	case ">=":
		return actual >= c.Threshold
	case "<=":
		return actual <= c.Threshold
	case ">":
		return actual > c.Threshold
	case "<":
		return actual < c.Threshold
	case "==":
		return actual == c.Threshold
	}
	return false
}

func (c Criterion) String() string {
	if c.Unit != "" {
		return fmt.Sprintf("%s %s %g %s", c.Metric, c.Operator, c.Threshold, c.Unit)
	}
	return fmt.Sprintf("%s %s %g", c.Metric, c.Operator, c.Threshold)
}
