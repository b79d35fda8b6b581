package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findKind(qs []Quantity, kind QuantityKind) (Quantity, bool) {
	for _, q := range qs {
		if q.Kind == kind {
			return q, true
		}
	}
	return Quantity{}, false
}

func TestParseQuantitiesFrequency(t *testing.T) {
	qs := ParseQuantities("Sistem clock 200 MHz olacak")
	q, ok := findKind(qs, KindClockFrequency)
	require.True(t, ok)
	assert.InDelta(t, 200, q.Value, 1e-9)

	qs = ParseQuantities("1.5 GHz PLL output")
	q, _ = findKind(qs, KindClockFrequency)
	assert.InDelta(t, 1500, q.Value, 1e-9)
}

func TestParseQuantitiesPeriodFoldsToFrequency(t *testing.T) {
	// An XDC timing constraint expresses the same clock as a period.
	qs := ParseQuantities("create_clock -period 5.000 [get_ports sys_clk]")
	q, ok := findKind(qs, KindClockFrequency)
	require.True(t, ok)
	assert.InDelta(t, 200, q.Value, 1e-6)

	// 200 MHz and period 5.0 ns agree within tolerance.
	assert.True(t, WithinTolerance(200, q.Value, 0.5))

	// Period 6.0 ns is 166.67 MHz, a genuine disagreement.
	qs = ParseQuantities("create_clock -period 6.000 [get_ports sys_clk]")
	q, _ = findKind(qs, KindClockFrequency)
	assert.InDelta(t, 166.666, q.Value, 1e-2)
	assert.False(t, WithinTolerance(200, q.Value, 0.5))
}

func TestParseQuantitiesOtherKinds(t *testing.T) {
	qs := ParseQuantities("Core voltage 0.85 V, bus 32-bit, throughput 400 MB/s, latency en fazla 100 ns, 16 cycles")

	q, ok := findKind(qs, KindVoltage)
	require.True(t, ok)
	assert.InDelta(t, 0.85, q.Value, 1e-9)

	q, ok = findKind(qs, KindBitWidth)
	require.True(t, ok)
	assert.InDelta(t, 32, q.Value, 1e-9)

	q, ok = findKind(qs, KindBandwidth)
	require.True(t, ok)
	assert.InDelta(t, 400, q.Value, 1e-9)

	q, ok = findKind(qs, KindLatencyNanos)
	require.True(t, ok)
	assert.InDelta(t, 100, q.Value, 1e-9)

	q, ok = findKind(qs, KindLatencyCycles)
	require.True(t, ok)
	assert.InDelta(t, 16, q.Value, 1e-9)
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, WithinTolerance(200, 200, 0))
	assert.True(t, WithinTolerance(200, 199.5, 0.5))
	assert.False(t, WithinTolerance(200, 166.67, 0.5))
	assert.True(t, WithinTolerance(0, 0, 0.5))
}

func TestParseCriterion(t *testing.T) {
	c, ok := ParseCriterion("WNS ≥ 0 ns")
	require.True(t, ok)
	assert.Equal(t, "WNS", c.Metric)
	assert.Equal(t, ">=", c.Operator)
	assert.Equal(t, 0.0, c.Threshold)
	assert.Equal(t, "ns", c.Unit)

	assert.True(t, c.Evaluate(0.05))
	assert.True(t, c.Evaluate(0))
	assert.False(t, c.Evaluate(-0.12))

	c, ok = ParseCriterion("LUT_util <= 80 %")
	require.True(t, ok)
	assert.Equal(t, "LUT_util", c.Metric)
	assert.True(t, c.Evaluate(72))
	assert.False(t, c.Evaluate(91))

	_, ok = ParseCriterion("timing kapanmalı")
	assert.False(t, ok)
}
