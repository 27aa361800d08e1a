package answer

import (
	"math/rand"
	"testing"
)

func TestConfidence_Banding(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	cases := []struct {
		name     string
		len      int
		inferred bool
		min, max int
	}{
		{"long direct context", 600, false, 85, 95},
		{"medium context", 300, false, 70, 85},
		{"short context", 50, false, 50, 70},
		{"empty context", 0, false, 50, 70},
		{"inferred overrides length", 600, true, 50, 70},
	}

	for _, tc := range cases {
		for i := 0; i < 200; i++ {
			got := Confidence(tc.len, tc.inferred, rng)
			if got < tc.min || got > tc.max {
				t.Fatalf("%s: confidence %d outside [%d,%d]", tc.name, got, tc.min, tc.max)
			}
		}
	}
}

func TestConfidence_NilRandIsBandMinimum(t *testing.T) {
	if got := Confidence(600, false, nil); got != 85 {
		t.Fatalf("expected band minimum 85, got %d", got)
	}
	if got := Confidence(600, true, nil); got != 50 {
		t.Fatalf("expected low band minimum 50, got %d", got)
	}
}
