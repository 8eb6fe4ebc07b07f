package components

import (
	"regexp"
	"strings"

	"ingestgraph/internal/domain/keywordmodel"
)

// Extractor produces RawKeywords from cleaned content. The specific
// keyword-extraction algorithms (RAKE, TF-IDF, NER) are explicitly out of
// scope (spec.md §1); this is the contract they would implement, grounded
// on original_source's BaseExtractor/RakeExtractor/TfidfExtractor trio
// (core/domain/content/processor.go). The KeywordComponent runs every
// registered extractor in turn, one after another, not concurrently.
type Extractor interface {
	Name() string
	Extract(content string) []keywordmodel.RawKeyword
}

var (
	tokenRe    = regexp.MustCompile(`[A-Za-z][A-Za-z0-9'-]*`)
	stopwords  = map[string]bool{}
	stopwordList = []string{
		"the", "a", "an", "and", "or", "but", "of", "to", "in", "on", "for",
		"with", "is", "are", "was", "were", "be", "been", "it", "this",
		"that", "as", "at", "by", "from", "not", "has", "have", "had",
	}
)

func init() {
	for _, w := range stopwordList {
		stopwords[w] = true
	}
}

// FrequencyExtractor is the built-in stand-in extractor: it scores terms by
// normalized in-document frequency. It is intentionally simple — a
// placeholder for whatever real RAKE/TF-IDF/NER extractor a deployment
// wires in — but satisfies the RawKeyword contract on its own so the
// pipeline has a working default without one.
type FrequencyExtractor struct {
	MinLength      int
	MinFrequency   int
	ScoreThreshold float64
}

// NewFrequencyExtractor constructs a FrequencyExtractor from the
// keyword-engine's extractor config (spec.md §6 extractor sub-config:
// min_chars, min_frequency, score_threshold). Zero values fall back to the
// extractor's historical defaults.
func NewFrequencyExtractor(minChars, minFrequency int, scoreThreshold float64) *FrequencyExtractor {
	if minChars <= 0 {
		minChars = 3
	}
	return &FrequencyExtractor{MinLength: minChars, MinFrequency: minFrequency, ScoreThreshold: scoreThreshold}
}

func (e *FrequencyExtractor) Name() string { return "frequency" }

// Extract tokenizes content, drops stopwords, short tokens and terms below
// MinFrequency, and scores each surviving term by its frequency relative to
// the most frequent term, dropping anything below ScoreThreshold.
func (e *FrequencyExtractor) Extract(content string) []keywordmodel.RawKeyword {
	counts := make(map[string]int)
	var order []string
	minLen := e.MinLength
	if minLen <= 0 {
		minLen = 3
	}

	for _, tok := range tokenRe.FindAllString(content, -1) {
		lower := strings.ToLower(tok)
		if len(lower) < minLen || stopwords[lower] {
			continue
		}
		if _, ok := counts[lower]; !ok {
			order = append(order, lower)
		}
		counts[lower]++
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount == 0 {
		return nil
	}

	out := make([]keywordmodel.RawKeyword, 0, len(order))
	for _, term := range order {
		count := counts[term]
		if count < e.MinFrequency {
			continue
		}
		score := float64(count) / float64(maxCount)
		if score < e.ScoreThreshold {
			continue
		}
		out = append(out, keywordmodel.RawKeyword{
			Text:      term,
			Score:     score,
			Source:    e.Name(),
			Frequency: count,
		})
	}
	return out
}
