package answer

import "math/rand"

// Confidence bands by context quality. These are display heuristics derived
// from context size and match provenance, not calibrated probabilities, and
// downstream code must not treat them as such.
const (
	highBandMin = 85
	highBandMax = 95
	midBandMin  = 70
	midBandMax  = 85
	lowBandMin  = 50
	lowBandMax  = 70
)

// Confidence derives a reported confidence score from context length and
// match provenance. Long, directly-matched context lands in the high band;
// short or neighbor-borrowed context lands in the low band. The random
// source adds small jitter within the band and is injectable for tests; a
// nil source yields the band minimum.
func Confidence(contextLen int, inferred bool, rng *rand.Rand) int {
	var min, max int
	switch {
	case inferred || contextLen < 100:
		min, max = lowBandMin, lowBandMax
	case contextLen > 500:
		min, max = highBandMin, highBandMax
	default:
		min, max = midBandMin, midBandMax
	}

	if rng == nil {
		return min
	}
	return min + rng.Intn(max-min+1)
}
