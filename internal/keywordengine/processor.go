package keywordengine

import (
	"sort"
	"strings"
	"time"

	"ingestgraph/internal/domain/keywordmodel"
)

const (
	// rawScoreFloor discards raw keywords below this confidence before
	// aggregation (spec.md §4.3 step 3).
	rawScoreFloor = 0.4
	// defaultEmitThreshold is the minimum final score a keyword must reach
	// to be emitted when no config override is supplied (spec.md §4.3 step 3).
	defaultEmitThreshold = 0.3
	// maxSources bounds how many per-extractor scores are blended together.
	maxSources = 5
	// sourceDecay is the per-source weight decay base (0.7^k).
	sourceDecay = 0.7
)

// KeywordProcessor implements spec.md §4.3's process_keywords: flatten,
// dedupe by variant, score-aggregate, type-infer, validate.
type KeywordProcessor struct {
	variants  *VariantManager
	validator *Validator
	minScore  float64
	now       func() time.Time
}

// NewKeywordProcessor constructs a KeywordProcessor. now is injected (rather
// than time.Now directly) so callers can produce deterministic
// KeywordIdentifier timestamps in tests. minScore is the minimum aggregated
// score a keyword must reach to be emitted (spec.md §6's min_keyword_score);
// 0 falls back to defaultEmitThreshold.
func NewKeywordProcessor(variants *VariantManager, validator *Validator, minScore float64, now func() time.Time) *KeywordProcessor {
	if minScore <= 0 {
		minScore = defaultEmitThreshold
	}
	return &KeywordProcessor{variants: variants, validator: validator, minScore: minScore, now: now}
}

// ProcessKeywords flattens raw_groups across extractors, deduplicates
// variants, aggregates per-source scores and emits validated
// KeywordIdentifiers. batch, if non-nil, is attributed with each emitted
// keyword's id.
func (p *KeywordProcessor) ProcessKeywords(rawGroups [][]keywordmodel.RawKeyword, batch *keywordmodel.BatchContext) ([]*keywordmodel.KeywordIdentifier, error) {
	byNormalized := make(map[string][]keywordmodel.RawKeyword)
	var order []string
	for _, group := range rawGroups {
		for _, raw := range group {
			norm := keywordmodel.NormalizedText(raw.Text)
			if _, ok := byNormalized[norm]; !ok {
				order = append(order, norm)
			}
			byNormalized[norm] = append(byNormalized[norm], raw)
		}
	}

	variantGroups := p.variants.GroupVariants(order)

	seenCanonical := make(map[string]bool)
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	nowVal := now()

	var out []*keywordmodel.KeywordIdentifier
	for _, group := range variantGroups {
		var candidates []keywordmodel.RawKeyword
		var originalTexts []string
		for _, norm := range group {
			candidates = append(candidates, byNormalized[norm]...)
			if len(byNormalized[norm]) > 0 {
				originalTexts = append(originalTexts, byNormalized[norm][0].Text)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		canonical := p.variants.GetCanonicalForm(originalTexts)

		// Dedup on canonical text alone, independent of inferred type,
		// matching original_source's seen_canonical_forms set (spec.md §4.3
		// step 2).
		if seenCanonical[canonical] {
			continue
		}

		kwType := inferType(candidates, canonical)

		score, ok := aggregateScore(candidates, p.minScore)
		if !ok {
			continue
		}

		kw, err := keywordmodel.NewKeywordIdentifier(originalTexts[0], canonical, originalTexts, kwType, score, nowVal)
		if err != nil {
			continue
		}
		if err := p.validator.Validate(kw); err != nil {
			continue
		}

		seenCanonical[canonical] = true
		out = append(out, kw)
		if batch != nil {
			batch.RecordKeyword(kw.ID)
		}
	}

	return out, nil
}

// aggregateScore implements spec.md §4.3 step 3's score-combination formula.
// The frequency term is preserved exactly as specified (the source always
// divides frequency by max(1, frequency), which is always 1 for any
// positive frequency) per spec.md §9's explicit instruction not to invent a
// replacement denominator.
func aggregateScore(candidates []keywordmodel.RawKeyword, minScore float64) (float64, bool) {
	var filtered []keywordmodel.RawKeyword
	for _, c := range candidates {
		if c.Score >= rawScoreFloor {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return 0, false
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Score > filtered[j].Score })
	if len(filtered) > maxSources {
		filtered = filtered[:maxSources]
	}

	var weightedSum, weightTotal float64
	weight := 1.0
	for _, raw := range filtered {
		denom := float64(raw.Frequency)
		if denom < 1 {
			denom = 1
		}
		combined := 0.6*raw.Score + 0.4*(float64(raw.Frequency)/denom)
		weightedSum += combined * weight
		weightTotal += weight
		weight *= sourceDecay
	}

	final := weightedSum / weightTotal
	if final < minScore {
		return 0, false
	}
	return final, true
}

// inferType implements spec.md §4.3 step 4: an explicit type in any
// candidate's metadata wins; otherwise CONCEPT for canonicals of more than
// two words, TERM otherwise.
func inferType(candidates []keywordmodel.RawKeyword, canonical string) keywordmodel.KeywordType {
	for _, c := range candidates {
		if c.Metadata == nil {
			continue
		}
		if t, ok := c.Metadata["type"].(string); ok && t != "" {
			return keywordmodel.KeywordType(t)
		}
	}
	if len(strings.Fields(canonical)) > 2 {
		return keywordmodel.KeywordConcept
	}
	return keywordmodel.KeywordTerm
}
