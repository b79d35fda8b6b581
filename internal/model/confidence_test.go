package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidenceOrdering(t *testing.T) {
	assert.True(t, ConfidenceLow < ConfidenceMedium)
	assert.True(t, ConfidenceMedium < ConfidenceHigh)
}

func TestParseConfidence(t *testing.T) {
	assert.Equal(t, ConfidenceLow, ParseConfidence("low"))
	assert.Equal(t, ConfidenceHigh, ParseConfidence(" HIGH "))
	// Unknown and empty labels collapse to MEDIUM, never to HIGH.
	assert.Equal(t, ConfidenceMedium, ParseConfidence(""))
	assert.Equal(t, ConfidenceMedium, ParseConfidence("certain"))
}

func TestMinMaxConfidence(t *testing.T) {
	assert.Equal(t, ConfidenceLow, MinConfidence(ConfidenceHigh, ConfidenceLow, ConfidenceMedium))
	assert.Equal(t, ConfidenceHigh, MaxConfidence(ConfidenceLow, ConfidenceHigh))

	// Empty chains are MEDIUM in both directions.
	assert.Equal(t, ConfidenceMedium, MinConfidence())
	assert.Equal(t, ConfidenceMedium, MaxConfidence())
}

func TestConfidenceJSON(t *testing.T) {
	data, err := json.Marshal(ConfidenceHigh)
	assert.NoError(t, err)
	assert.Equal(t, `"HIGH"`, string(data))

	var c Confidence
	assert.NoError(t, json.Unmarshal([]byte(`"LOW"`), &c))
	assert.Equal(t, ConfidenceLow, c)
}

func TestDeterministicID(t *testing.T) {
	a := DeterministicID("match", "run-1", "REQ-001", "comp-1")
	b := DeterministicID("match", "run-1", "REQ-001", "comp-1")
	assert.Equal(t, a, b)

	// Different kind or parts must not collide.
	assert.NotEqual(t, a, DeterministicID("edge", "run-1", "REQ-001", "comp-1"))
	assert.NotEqual(t, a, DeterministicID("match", "run-2", "REQ-001", "comp-1"))
}

func TestNodeValidate(t *testing.T) {
	n := Node{ID: "n1", Type: NodeRequirement, ProjectID: "p1", Name: "REQ-001"}
	assert.NoError(t, n.Validate())

	n.ProjectID = ""
	assert.Error(t, n.Validate())

	assert.Error(t, (&Node{}).Validate())
}

func TestGapSeverity(t *testing.T) {
	assert.Equal(t, "high", GapSeverity("critical"))
	assert.Equal(t, "high", GapSeverity("high"))
	assert.Equal(t, "low", GapSeverity("low"))
	assert.Equal(t, "medium", GapSeverity(""))
	assert.Equal(t, "medium", GapSeverity("normal"))
}
