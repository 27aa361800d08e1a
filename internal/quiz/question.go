// Package quiz defines the question and answer shapes exchanged with the
// extraction and display layers, plus a best-effort parser for raw extraction
// output. Questions are consumed once per request and never persisted.
package quiz

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidQuestion = errors.New("invalid question")
)

// OptionKeys is the fixed set of answer letters, in display order.
var OptionKeys = []string{"A", "B", "C", "D"}

// Question is a single quiz item to answer.
// Options maps an answer letter (A-D) to its text; at least two populated
// options are required for the question to be answerable.
type Question struct {
	Number  int               `json:"number"`
	Text    string            `json:"text"`
	Options map[string]string `json:"options"`
}

// Validate rejects malformed questions at the ingestion boundary, before
// they reach retrieval.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question %d has no text", ErrInvalidQuestion, q.Number)
	}
	if q.populatedOptions() < 2 {
		return fmt.Errorf("%w: question %d has fewer than 2 options", ErrInvalidQuestion, q.Number)
	}
	for key := range q.Options {
		if !isOptionKey(key) {
			return fmt.Errorf("%w: question %d has unknown option key %q", ErrInvalidQuestion, q.Number, key)
		}
	}
	return nil
}

// OptionTexts returns the populated option texts keyed in display order.
func (q *Question) OptionTexts() []string {
	texts := make([]string, 0, len(q.Options))
	for _, key := range OptionKeys {
		if text := strings.TrimSpace(q.Options[key]); text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

func (q *Question) populatedOptions() int {
	n := 0
	for _, key := range OptionKeys {
		if strings.TrimSpace(q.Options[key]) != "" {
			n++
		}
	}
	return n
}

func isOptionKey(key string) bool {
	for _, k := range OptionKeys {
		if k == key {
			return true
		}
	}
	return false
}

// AnswerResult is the final output per question. Answer is always one of
// A-D; Confidence is a display heuristic in [0,100], not a calibrated
// probability.
type AnswerResult struct {
	Number     int    `json:"number"`
	Answer     string `json:"answer"`
	Confidence int    `json:"confidence"`
}
