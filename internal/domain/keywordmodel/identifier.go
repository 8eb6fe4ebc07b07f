// Package keywordmodel holds the keyword/relationship data model the
// keyword engine produces (spec.md §3): KeywordIdentifier, RawKeyword,
// Relationship/RelationshipEvidence and BatchContext.
package keywordmodel

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"ingestgraph/internal/domain/shared"
	"ingestgraph/internal/ingesterrors"
)

// KeywordType classifies a KeywordIdentifier.
type KeywordType string

const (
	KeywordEntity  KeywordType = "entity"
	KeywordConcept KeywordType = "concept"
	KeywordTerm    KeywordType = "term"
	KeywordCustom  KeywordType = "custom"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizedText lowercases and collapses whitespace, matching the
// Normalizer.normalize contract (spec.md §4.3).
func NormalizedText(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	return whitespaceRegex.ReplaceAllString(text, " ")
}

// DeriveKeywordID computes the stable identity of a keyword from its
// canonical text and type (spec.md §3: "stable hash of (canonical_text,
// type)"). Two extractions of the same (canonical, type) pair always
// collapse to the same id, in the same process or a different one.
func DeriveKeywordID(canonicalText string, kwType KeywordType) shared.KeywordID {
	sum := sha256.Sum256([]byte(NormalizedText(canonicalText) + "\x00" + string(kwType)))
	id, _ := shared.NewKeywordID(hex.EncodeToString(sum[:16]))
	return id
}

// KeywordIdentifier is the canonical representation of a term the keyword
// engine has processed and deduplicated across extractors.
type KeywordIdentifier struct {
	ID             shared.KeywordID
	OriginalText   string
	CanonicalText  string
	NormalizedText string
	Variants       []string
	Type           KeywordType
	Score          float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewKeywordIdentifier constructs and validates a KeywordIdentifier,
// enforcing the invariants from spec.md §3: canonical_text ∈ variants,
// normalized_text is lowercase/whitespace-collapsed, id is deterministic.
func NewKeywordIdentifier(original, canonical string, variants []string, kwType KeywordType, score float64, now time.Time) (*KeywordIdentifier, error) {
	canonical = strings.TrimSpace(canonical)
	if canonical == "" {
		return nil, ingesterrors.Validation(string(ingesterrors.CodeMissingField), "keyword canonical text is required").Build()
	}

	normalized := NormalizedText(canonical)
	if !containsVariant(variants, canonical) {
		variants = append(variants, canonical)
	}

	return &KeywordIdentifier{
		ID:             DeriveKeywordID(canonical, kwType),
		OriginalText:   original,
		CanonicalText:  canonical,
		NormalizedText: normalized,
		Variants:       variants,
		Type:           kwType,
		Score:          score,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Validate checks the KeywordIdentifier invariants hold (used by the
// keyword engine's Validator before emitting the keyword).
func (k *KeywordIdentifier) Validate() error {
	if k.CanonicalText == "" {
		return ingesterrors.Validation(string(ingesterrors.CodeMissingField), "canonical text is required").Build()
	}
	if !containsVariant(k.Variants, k.CanonicalText) {
		return ingesterrors.Validation(string(ingesterrors.CodeValidationFailed), "canonical_text must be in variants").Build()
	}
	if k.NormalizedText != NormalizedText(k.CanonicalText) {
		return ingesterrors.Validation(string(ingesterrors.CodeValidationFailed), "normalized_text must match normalize(canonical_text)").Build()
	}
	if k.Score < 0 || k.Score > 1 {
		return ingesterrors.Validation(string(ingesterrors.CodeValidationFailed), "score must be in [0,1]").Build()
	}
	return nil
}

func containsVariant(variants []string, v string) bool {
	for _, existing := range variants {
		if existing == v {
			return true
		}
	}
	return false
}
