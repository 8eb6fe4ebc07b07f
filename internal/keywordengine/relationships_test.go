package keywordengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingestgraph/internal/domain/keywordmodel"
)

func mustIdentifier(t *testing.T, canonical string, kwType keywordmodel.KeywordType, score float64) *keywordmodel.KeywordIdentifier {
	t.Helper()
	kw, err := keywordmodel.NewKeywordIdentifier(canonical, canonical, []string{canonical}, kwType, score, time.Unix(0, 0))
	require.NoError(t, err)
	return kw
}

func TestRelationshipManager_ContextualProximity(t *testing.T) {
	segmenter := NewSimpleSentenceSegmenter()
	manager := NewRelationshipManager(segmenter, nil)

	machine := mustIdentifier(t, "machine learning", keywordmodel.KeywordConcept, 0.9)
	python := mustIdentifier(t, "python", keywordmodel.KeywordTerm, 0.8)

	content := "Machine learning models are often written in python for rapid iteration."
	rels := manager.Produce([]*keywordmodel.KeywordIdentifier{machine, python}, content, time.Unix(0, 0))

	require.Len(t, rels, 1)
	assert.Equal(t, keywordmodel.RelationshipRelated, rels[0].Type)
	assert.Greater(t, rels[0].Confidence, 0.0)
	assert.Len(t, rels[0].Evidence, 1)
	assert.Equal(t, "contextual", rels[0].Evidence[0].Method)
}

func TestRelationshipManager_Hierarchical(t *testing.T) {
	manager := NewRelationshipManager(nil, nil)

	learning := mustIdentifier(t, "learning", keywordmodel.KeywordTerm, 0.7)
	machineLearning := mustIdentifier(t, "machine learning", keywordmodel.KeywordConcept, 0.9)

	rels := manager.Produce([]*keywordmodel.KeywordIdentifier{learning, machineLearning}, "", time.Unix(0, 0))

	require.Len(t, rels, 1)
	assert.Equal(t, keywordmodel.RelationshipHierarchical, rels[0].Type)
	assert.True(t, rels[0].SourceID.Equals(machineLearning.ID))
	assert.True(t, rels[0].TargetID.Equals(learning.ID))
}

func TestRelationshipManager_HierarchicalFallsBackToRelated(t *testing.T) {
	manager := NewRelationshipManager(nil, nil)

	learning := mustIdentifier(t, "learning", keywordmodel.KeywordTerm, 0.7)
	deepLearning := mustIdentifier(t, "deep learning", keywordmodel.KeywordTerm, 0.9)

	rels := manager.Produce([]*keywordmodel.KeywordIdentifier{learning, deepLearning}, "", time.Unix(0, 0))

	require.Len(t, rels, 1)
	assert.Equal(t, keywordmodel.RelationshipRelated, rels[0].Type)
}

type fakeSimilarity struct {
	score float64
}

func (f fakeSimilarity) Similarity(string, string) float64 { return f.score }

func TestRelationshipManager_SemanticThresholds(t *testing.T) {
	a := mustIdentifier(t, "alpha", keywordmodel.KeywordTerm, 0.7)
	b := mustIdentifier(t, "beta", keywordmodel.KeywordTerm, 0.7)

	synonym := NewRelationshipManager(nil, fakeSimilarity{score: 0.97})
	rels := synonym.Produce([]*keywordmodel.KeywordIdentifier{a, b}, "", time.Unix(0, 0))
	require.Len(t, rels, 1)
	assert.Equal(t, keywordmodel.RelationshipSynonym, rels[0].Type)

	related := NewRelationshipManager(nil, fakeSimilarity{score: 0.85})
	rels = related.Produce([]*keywordmodel.KeywordIdentifier{a, b}, "", time.Unix(0, 0))
	require.Len(t, rels, 1)
	assert.Equal(t, keywordmodel.RelationshipRelated, rels[0].Type)

	none := NewRelationshipManager(nil, fakeSimilarity{score: 0.5})
	rels = none.Produce([]*keywordmodel.KeywordIdentifier{a, b}, "", time.Unix(0, 0))
	assert.Empty(t, rels)
}

func TestRelationshipManager_MergesDuplicateEdges(t *testing.T) {
	segmenter := NewSimpleSentenceSegmenter()
	manager := NewRelationshipManager(segmenter, fakeSimilarity{score: 0.85})

	a := mustIdentifier(t, "alpha", keywordmodel.KeywordTerm, 0.7)
	b := mustIdentifier(t, "beta", keywordmodel.KeywordTerm, 0.7)

	content := "Alpha and beta appear together right here."
	rels := manager.Produce([]*keywordmodel.KeywordIdentifier{a, b}, content, time.Unix(0, 0))

	require.Len(t, rels, 1, "semantic and contextual passes should merge into a single edge")
	assert.Len(t, rels[0].Evidence, 2)
}

func TestPrepareForStorage_FiltersByConfidence(t *testing.T) {
	low, err := keywordmodel.NewRelationship(
		mustIdentifier(t, "alpha", keywordmodel.KeywordTerm, 0.7).ID,
		mustIdentifier(t, "gamma", keywordmodel.KeywordTerm, 0.7).ID,
		keywordmodel.RelationshipRelated,
		[]keywordmodel.RelationshipEvidence{{Confidence: 0.2, Method: "contextual"}},
		time.Unix(0, 0),
	)
	require.NoError(t, err)

	high, err := keywordmodel.NewRelationship(
		mustIdentifier(t, "alpha", keywordmodel.KeywordTerm, 0.7).ID,
		mustIdentifier(t, "delta", keywordmodel.KeywordTerm, 0.7).ID,
		keywordmodel.RelationshipRelated,
		[]keywordmodel.RelationshipEvidence{{Confidence: 0.9, Method: "contextual"}},
		time.Unix(0, 0),
	)
	require.NoError(t, err)

	out := PrepareForStorage([]*keywordmodel.Relationship{low, high}, 0.5)
	require.Len(t, out, 1)
	assert.Equal(t, high.ID, out[0].ID)
}
