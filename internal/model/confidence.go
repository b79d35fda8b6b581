package model

import (
	"encoding/json"
	"strings"
)

// Confidence is the ordinal trust label attached to nodes, edges and
// match records. The order is total: LOW < MEDIUM < HIGH.
type Confidence int

const (
	ConfidenceLow Confidence = iota + 1
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "LOW"
	case ConfidenceHigh:
		return "HIGH"
	default:
		return "MEDIUM"
	}
}

// ParseConfidence normalizes a free-form label. Unknown or empty values
// collapse to MEDIUM, matching the upstream pipeline's behavior.
func ParseConfidence(s string) Confidence {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return ConfidenceLow
	case "HIGH":
		return ConfidenceHigh
	default:
		return ConfidenceMedium
	}
}

func (c Confidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Confidence) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = ParseConfidence(s)
	return nil
}

// MinConfidence returns the weakest label among values. An empty input
// returns MEDIUM so that callers never promote absent data to HIGH.
func MinConfidence(values ...Confidence) Confidence {
	if len(values) == 0 {
		return ConfidenceMedium
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// MaxConfidence returns the strongest label among values, MEDIUM when empty.
func MaxConfidence(values ...Confidence) Confidence {
	if len(values) == 0 {
		return ConfidenceMedium
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
