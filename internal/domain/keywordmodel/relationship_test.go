package keywordmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKeywordID_Deterministic(t *testing.T) {
	a := DeriveKeywordID("Machine Learning", KeywordConcept)
	b := DeriveKeywordID("machine   learning", KeywordConcept)
	assert.Equal(t, a.String(), b.String())

	c := DeriveKeywordID("Machine Learning", KeywordTerm)
	assert.NotEqual(t, a.String(), c.String())
}

func TestNewKeywordIdentifier_VariantsIncludeCanonical(t *testing.T) {
	now := time.Now()
	kw, err := NewKeywordIdentifier("ML", "Machine Learning", nil, KeywordConcept, 0.8, now)
	require.NoError(t, err)
	require.NoError(t, kw.Validate())
	assert.Contains(t, kw.Variants, "Machine Learning")
	assert.Equal(t, "machine learning", kw.NormalizedText)
}

func TestNewRelationship_CanonicalizesSymmetricEndpoints(t *testing.T) {
	a := DeriveKeywordID("zebra", KeywordTerm)
	b := DeriveKeywordID("apple", KeywordTerm)
	evidence := []RelationshipEvidence{{Confidence: 0.9, SourceStart: 1, TargetStart: 10}}

	rel, err := NewRelationship(a, b, RelationshipRelated, evidence, time.Now())
	require.NoError(t, err)

	assert.Less(t, rel.SourceID.String(), rel.TargetID.String())
}

func TestNewRelationship_RejectsSelfLoop(t *testing.T) {
	a := DeriveKeywordID("zebra", KeywordTerm)
	_, err := NewRelationship(a, a, RelationshipRelated, []RelationshipEvidence{{Confidence: 0.9}}, time.Now())
	require.Error(t, err)
}

func TestAggregateConfidence_MonotonicAndCapped(t *testing.T) {
	a := DeriveKeywordID("a", KeywordTerm)
	b := DeriveKeywordID("b", KeywordTerm)
	rel, err := NewRelationship(a, b, RelationshipHierarchical, []RelationshipEvidence{{Confidence: 0.6}}, time.Now())
	require.NoError(t, err)

	first := rel.Confidence
	for i := 0; i < 10; i++ {
		rel.AddEvidence(RelationshipEvidence{Confidence: 0.2})
		assert.GreaterOrEqual(t, rel.Confidence, first)
		assert.LessOrEqual(t, rel.Confidence, 1.0)
		first = rel.Confidence
	}
	assert.Equal(t, 1.0, rel.Confidence)
}

func TestHierarchical_NotSymmetric(t *testing.T) {
	assert.False(t, RelationshipHierarchical.IsSymmetric())
	assert.True(t, RelationshipRelated.IsSymmetric())
	assert.True(t, RelationshipSynonym.IsSymmetric())
}
