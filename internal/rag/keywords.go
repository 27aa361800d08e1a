// Package rag implements the retrieval side of the quiz-answering pipeline:
// keyword extraction, a local lexical index with TF-IDF weights, a dense
// vector retriever, and context assembly. Both retrieval strategies share
// the same fallback discipline: weak or failed retrieval degrades to an
// empty context, never to an error that reaches answer selection.
package rag

import (
	"os"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// KeywordConfig controls keyword extraction from question and option text.
type KeywordConfig struct {
	// MinLength is the minimum token length to keep
	MinLength int `yaml:"min_length"`

	// MaxKeywords caps the extracted set after synonym expansion
	MaxKeywords int `yaml:"max_keywords"`

	// PerOption is the number of tokens taken from each option text
	PerOption int `yaml:"per_option"`

	// StopWords are function words dropped during extraction
	StopWords []string `yaml:"stop_words"`

	// Synonyms maps a keyword to additional search terms. Expansion is
	// one level only, never transitive.
	Synonyms map[string][]string `yaml:"synonyms"`
}

// DefaultKeywordConfig returns extraction defaults tuned for Italian course
// material.
func DefaultKeywordConfig() KeywordConfig {
	return KeywordConfig{
		MinLength:   4,
		MaxKeywords: 10,
		PerOption:   3,
		StopWords: []string{
			"come", "cosa", "quale", "quali", "quando", "dove", "perché",
			"sono", "essere", "viene", "vengono", "questo", "questa", "questi",
			"queste", "quello", "quella", "della", "delle", "degli", "dello",
			"nella", "nelle", "negli", "dalla", "dalle", "sulla", "sulle",
			"alla", "alle", "agli", "allo", "con", "per", "tra", "fra",
			"anche", "ogni", "tutti", "tutte", "loro", "suo", "sua", "suoi",
			"più", "meno", "molto", "poco", "cioè", "ovvero", "oppure",
			"seguenti", "seguente", "affermazioni", "affermazione", "riguardo",
			"rispetto", "corretta", "corretto", "vero", "falso",
		},
		Synonyms: map[string][]string{
			"comportamentismo": {"comportamentista", "condizionamento"},
			"cognitivismo":     {"cognitivista", "cognitivo"},
			"apprendimento":    {"apprendere", "imparare"},
			"algoritmo":        {"algoritmi", "procedura"},
			"memoria":          {"memorizzazione", "ricordo"},
			"linguaggio":       {"linguaggi", "lingua"},
		},
	}
}

// LoadKeywordConfig reads a keyword tuning file, filling missing fields with
// defaults.
func LoadKeywordConfig(path string) (KeywordConfig, error) {
	cfg := DefaultKeywordConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultKeywordConfig(), err
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = 4
	}
	if cfg.MaxKeywords <= 0 {
		cfg.MaxKeywords = 10
	}
	return cfg, nil
}

// Keywords extracts a bounded, ordered set of salient lowercase terms from
// the question text and option texts. The function is pure and deterministic
// for a given configuration.
func Keywords(questionText string, optionTexts []string, cfg KeywordConfig) []string {
	stop := make(map[string]struct{}, len(cfg.StopWords))
	for _, w := range cfg.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}

	seen := make(map[string]struct{})
	var keywords []string

	add := func(token string) {
		if len([]rune(token)) < cfg.MinLength {
			return
		}
		if _, isStop := stop[token]; isStop {
			return
		}
		if _, dup := seen[token]; dup {
			return
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}

	for _, token := range Tokenize(questionText) {
		add(token)
	}

	for _, option := range optionTexts {
		taken := 0
		for _, token := range Tokenize(option) {
			if taken >= cfg.PerOption {
				break
			}
			before := len(keywords)
			add(token)
			if len(keywords) > before {
				taken++
			}
		}
	}

	// One-level synonym expansion over the directly extracted set.
	for _, kw := range append([]string(nil), keywords...) {
		for _, syn := range cfg.Synonyms[kw] {
			syn = strings.ToLower(syn)
			if _, dup := seen[syn]; !dup {
				seen[syn] = struct{}{}
				keywords = append(keywords, syn)
			}
		}
	}

	if len(keywords) > cfg.MaxKeywords {
		keywords = keywords[:cfg.MaxKeywords]
	}
	return keywords
}

// Tokenize lowercases text, strips punctuation while preserving accented
// letters, and splits on whitespace.
func Tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	return strings.Fields(cleaned)
}

// SplitSentences breaks chunk text into sentences for sentence-level
// relevance trimming.
func SplitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// sortedTerms returns map keys in deterministic order, used when iteration
// order must not leak into scores.
func sortedTerms(m map[string]struct{}) []string {
	terms := make([]string, 0, len(m))
	for t := range m {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}
