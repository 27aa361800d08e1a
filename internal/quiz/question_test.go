package quiz

import (
	"errors"
	"testing"
)

func TestValidate_TwoOptionsAccepted(t *testing.T) {
	q := Question{
		Number:  1,
		Text:    "Vero o falso?",
		Options: map[string]string{"A": "Vero", "B": "Falso"},
	}

	if err := q.Validate(); err != nil {
		t.Fatalf("two-option question must be valid: %v", err)
	}
}

func TestValidate_TooFewOptions(t *testing.T) {
	cases := []map[string]string{
		nil,
		{},
		{"A": "Solo una"},
		{"A": "Una", "B": "  "},
	}

	for _, options := range cases {
		q := Question{Number: 1, Text: "Domanda?", Options: options}
		if err := q.Validate(); !errors.Is(err, ErrInvalidQuestion) {
			t.Fatalf("options %v: expected ErrInvalidQuestion, got %v", options, err)
		}
	}
}

func TestValidate_MissingText(t *testing.T) {
	q := Question{Number: 1, Text: "  ", Options: map[string]string{"A": "x", "B": "y"}}

	if err := q.Validate(); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("expected ErrInvalidQuestion, got %v", err)
	}
}

func TestValidate_UnknownOptionKey(t *testing.T) {
	q := Question{Number: 1, Text: "Domanda?", Options: map[string]string{"A": "x", "B": "y", "E": "z"}}

	if err := q.Validate(); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("expected ErrInvalidQuestion for key E, got %v", err)
	}
}

func TestOptionTexts_DisplayOrder(t *testing.T) {
	q := Question{
		Number:  1,
		Text:    "Domanda?",
		Options: map[string]string{"D": "quarta", "B": "seconda", "A": "prima"},
	}

	got := q.OptionTexts()
	want := []string{"prima", "seconda", "quarta"}

	if len(got) != len(want) {
		t.Fatalf("expected %d options, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("option order mismatch at %d: %q", i, got[i])
		}
	}
}
