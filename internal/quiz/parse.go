package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnparseable = errors.New("no questions could be parsed from extraction output")
)

// ParseQuestions parses raw language-model extraction output into questions.
// Vision models routinely wrap their JSON in markdown fences or prepend
// commentary, so parsing is multi-tier: direct unmarshal, then fence
// stripping, then slicing out the outermost JSON array. Questions that fail
// validation are dropped; the parse only fails when nothing valid remains.
func ParseQuestions(raw []byte) ([]Question, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, ErrUnparseable
	}

	candidates := []string{
		text,
		stripFences(text),
		sliceArray(text),
	}

	var lastErr error
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		questions, err := unmarshalQuestions(candidate)
		if err != nil {
			lastErr = err
			continue
		}
		if len(questions) > 0 {
			return questions, nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, lastErr)
	}
	return nil, ErrUnparseable
}

func unmarshalQuestions(text string) ([]Question, error) {
	var parsed []Question
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		// Some extractions wrap the array in an object.
		var wrapper struct {
			Questions []Question `json:"questions"`
		}
		if err2 := json.Unmarshal([]byte(text), &wrapper); err2 != nil {
			return nil, err
		}
		parsed = wrapper.Questions
	}

	valid := make([]Question, 0, len(parsed))
	for _, q := range parsed {
		if q.Validate() == nil {
			valid = append(valid, q)
		}
	}
	return valid, nil
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(text string) string {
	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
	} else if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
	} else {
		return ""
	}
	if end := strings.Index(text, "```"); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}

// sliceArray extracts the outermost [...] span from free-form text.
func sliceArray(text string) string {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
