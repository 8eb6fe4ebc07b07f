package keywordengine

import (
	"fmt"
	"regexp"
	"strings"
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+\s+`)

// SimpleSentenceSegmenter splits on sentence-terminal punctuation. It is the
// default SentenceSegmenter wired when no more sophisticated collaborator
// (e.g. a language-aware splitter) is registered.
type SimpleSentenceSegmenter struct{}

// NewSimpleSentenceSegmenter constructs a SimpleSentenceSegmenter.
func NewSimpleSentenceSegmenter() *SimpleSentenceSegmenter {
	return &SimpleSentenceSegmenter{}
}

// Segment splits content on '.', '!' and '?' followed by whitespace,
// dropping empty fragments.
func (SimpleSentenceSegmenter) Segment(content string) []Sentence {
	parts := sentenceBoundary.Split(content, -1)
	sentences := make([]Sentence, 0, len(parts))
	position := 0
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		sentences = append(sentences, Sentence{
			ID:       fmt.Sprintf("s%d", position),
			Text:     trimmed,
			Position: position,
		})
		position++
	}
	return sentences
}
