package lexicon

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// QuantityKind identifies a comparable technical parameter.
type QuantityKind string

const (
	KindClockFrequency QuantityKind = "clock_frequency" // canonical unit MHz
	KindVoltage        QuantityKind = "voltage"         // canonical unit V
	KindLatencyCycles  QuantityKind = "latency_cycles"  // canonical unit cycles
	KindLatencyNanos   QuantityKind = "latency_ns"      // canonical unit ns
	KindBandwidth      QuantityKind = "bandwidth"       // canonical unit MB/s
	KindBitWidth       QuantityKind = "bit_width"       // canonical unit bits
)

// Quantity is a parsed technical parameter normalized to its canonical
// unit. Raw keeps the text fragment it was parsed from for evidence
// strings.
type Quantity struct {
	Kind  QuantityKind
	Value float64
	Raw   string
}

func (q Quantity) String() string {
	switch q.Kind {
	case KindClockFrequency:
		return fmt.Sprintf("%g MHz", q.Value)
	case KindVoltage:
		return fmt.Sprintf("%g V", q.Value)
	case KindLatencyCycles:
		return fmt.Sprintf("%g cycles", q.Value)
	case KindLatencyNanos:
		return fmt.Sprintf("%g ns", q.Value)
	case KindBandwidth:
		return fmt.Sprintf("%g MB/s", q.Value)
	case KindBitWidth:
		return fmt.Sprintf("%g bit", q.Value)
	}
	return fmt.Sprintf("%g", q.Value)
}

var (
	freqPattern      = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(ghz|mhz|khz)\b`)
	periodPattern    = regexp.MustCompile(`(?i)(?:-period\s+|period[^0-9]{0,12})(\d+(?:\.\d+)?)(?:\s*ns)?`)
	voltagePattern   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(mv|v)\b`)
	cyclesPattern    = regexp.MustCompile(`(?i)(\d+)\s*(?:clock\s+)?(?:cycles?|çevrim)\b`)
	latencyNsPattern = regexp.MustCompile(`(?i)(?:latency|gecikme)[^0-9]{0,12}(\d+(?:\.\d+)?)\s*ns\b`)
	bandwidthPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(gb/s|gbps|mb/s|mbps)\b`)
	bitWidthPattern  = regexp.MustCompile(`(?i)(\d+)\s*[- ]?bit\b`)
)

func parseNumber(s string) float64 {
	v, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return v
}

// ParseQuantities extracts every recognizable technical parameter from a
// constraint text, normalized to canonical units. Clock periods are folded
// into clock frequency (MHz = 1000 / ns) so that "200 MHz" and
// "period 5.0 ns" compare as equal.
func ParseQuantities(text string) []Quantity {
	var out []Quantity

	for _, m := range freqPattern.FindAllStringSubmatch(text, -1) {
		v := parseNumber(m[1])
		switch strings.ToLower(m[2]) {
		case "ghz":
			v *= 1000
		case "khz":
			v /= 1000
		}
		out = append(out, Quantity{Kind: KindClockFrequency, Value: v, Raw: strings.TrimSpace(m[0])})
	}
	for _, m := range periodPattern.FindAllStringSubmatch(text, -1) {
		ns := parseNumber(m[1])
		if ns <= 0 {
			continue
		}
		out = append(out, Quantity{Kind: KindClockFrequency, Value: 1000 / ns, Raw: strings.TrimSpace(m[0])})
	}
	for _, m := range voltagePattern.FindAllStringSubmatch(text, -1) {
		v := parseNumber(m[1])
		if strings.EqualFold(m[2], "mv") {
			v /= 1000
		}
		out = append(out, Quantity{Kind: KindVoltage, Value: v, Raw: strings.TrimSpace(m[0])})
	}
	for _, m := range cyclesPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, Quantity{Kind: KindLatencyCycles, Value: parseNumber(m[1]), Raw: strings.TrimSpace(m[0])})
	}
	for _, m := range latencyNsPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, Quantity{Kind: KindLatencyNanos, Value: parseNumber(m[1]), Raw: strings.TrimSpace(m[0])})
	}
	for _, m := range bandwidthPattern.FindAllStringSubmatch(text, -1) {
		v := parseNumber(m[1])
		switch strings.ToLower(m[2]) {
		case "gb/s":
			v *= 1000
		case "gbps":
			v *= 125
		case "mbps":
			v /= 8
		}
		out = append(out, Quantity{Kind: KindBandwidth, Value: v, Raw: strings.TrimSpace(m[0])})
	}
	for _, m := range bitWidthPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, Quantity{Kind: KindBitWidth, Value: parseNumber(m[1]), Raw: strings.TrimSpace(m[0])})
	}

	return out
}

// WithinTolerance reports whether two canonical values agree within
// tolerancePct percent of the larger magnitude. This absorbs the rounding
// of MHz↔ns conversions without accepting genuinely different specs.
func WithinTolerance(a, b, tolerancePct float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale == 0 {
		return true
	}
	return math.Abs(a-b)/scale*100 <= tolerancePct
}
