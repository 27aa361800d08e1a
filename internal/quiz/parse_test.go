package quiz

import (
	"errors"
	"testing"
)

const validJSON = `[
  {"number": 1, "text": "Cos'è una pila?", "options": {"A": "LIFO", "B": "FIFO"}},
  {"number": 2, "text": "Cos'è una coda?", "options": {"A": "LIFO", "B": "FIFO"}}
]`

func TestParseQuestions_DirectJSON(t *testing.T) {
	questions, err := ParseQuestions([]byte(validJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
}

func TestParseQuestions_MarkdownFence(t *testing.T) {
	raw := "Ecco le domande estratte:\n```json\n" + validJSON + "\n```\nSpero sia utile!"

	questions, err := ParseQuestions([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
}

func TestParseQuestions_LeadingProse(t *testing.T) {
	raw := "Le domande sono le seguenti: " + validJSON

	questions, err := ParseQuestions([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
}

func TestParseQuestions_WrapperObject(t *testing.T) {
	raw := `{"questions": ` + validJSON + `}`

	questions, err := ParseQuestions([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
}

func TestParseQuestions_DropsInvalidEntries(t *testing.T) {
	raw := `[
	  {"number": 1, "text": "Valida?", "options": {"A": "sì", "B": "no"}},
	  {"number": 2, "text": "", "options": {"A": "sì", "B": "no"}},
	  {"number": 3, "text": "Una sola opzione", "options": {"A": "sì"}}
	]`

	questions, err := ParseQuestions([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 1 || questions[0].Number != 1 {
		t.Fatalf("expected only the valid question, got %v", questions)
	}
}

func TestParseQuestions_Garbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "non è JSON", "{broken"} {
		if _, err := ParseQuestions([]byte(raw)); !errors.Is(err, ErrUnparseable) {
			t.Fatalf("input %q: expected ErrUnparseable, got %v", raw, err)
		}
	}
}
