// Package keywordengine implements the keyword/relationship analysis engine
// (spec.md §4.3): Normalizer, VariantManager, KeywordProcessor,
// RelationshipManager and Validator collaborating over a cleaned text.
//
// Grounded on the teacher's Content.ExtractKeywords (a normalization+dedup
// value object in miniature, internal/domain/shared/value_objects.go) scaled
// up into a standalone multi-extractor pipeline, and on the service-layer
// validate-then-delegate style of internal/service/category/service.go.
package keywordengine

import (
	"strings"

	"ingestgraph/internal/domain/keywordmodel"
)

var stemSuffixes = []string{"ian", "ish", "ese", "ic", "al"}

// Normalizer implements the pure text-normalization functions of spec.md
// §4.3: Normalize lowercases and collapses whitespace; Canonicalize strips a
// small suffix set for basic stem folding.
type Normalizer struct{}

// NewNormalizer constructs a Normalizer. It carries no state; the type
// exists so callers can depend on an interface-shaped collaborator the way
// the rest of the engine's components do.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize lowercases and whitespace-collapses text.
func (Normalizer) Normalize(text string) string {
	return keywordmodel.NormalizedText(text)
}

// Canonicalize strips a small suffix set (-ian, -ish, -ese, -ic, -al) for
// basic stem folding; other inputs are trimmed only. kwType is accepted for
// forward compatibility with type-aware canonicalization but is not
// currently consulted (suffix folding applies uniformly).
func (n Normalizer) Canonicalize(text string, kwType keywordmodel.KeywordType) string {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	for _, suffix := range stemSuffixes {
		if strings.HasSuffix(lower, suffix) && len(lower) > len(suffix)+2 {
			return trimmed[:len(trimmed)-len(suffix)]
		}
	}
	return trimmed
}
