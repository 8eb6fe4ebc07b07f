package keywordengine

import "ingestgraph/internal/domain/keywordmodel"

// Validator is the final gate in KeywordProcessor.process_keywords (spec.md
// §4.3 step 5): constructed KeywordIdentifiers that fail validation are
// dropped rather than emitted.
type Validator struct{}

// NewValidator constructs a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate delegates to the KeywordIdentifier's own invariant checks.
func (Validator) Validate(kw *keywordmodel.KeywordIdentifier) error {
	return kw.Validate()
}
