package keywordengine

import (
	"sort"
	"strings"
	"time"

	"ingestgraph/internal/domain/keywordmodel"
	"ingestgraph/internal/domain/shared"
)

const (
	semanticSynonymThreshold       = 0.95
	semanticRelatedThreshold       = 0.80
	maxSemanticEdgesPerKeyword     = 5
	hierarchicalEvidenceConfidence = 0.6
	defaultMinConfidence           = 0.5
)

// Sentence is one unit produced by a SentenceSegmenter.
type Sentence struct {
	ID       string
	Text     string
	Position int
}

// SentenceSegmenter splits content into sentences for the contextual pass
// (spec.md §4.3). Like the keyword extractors, the concrete segmenter is an
// external collaborator injected at registration (spec.md §9).
type SentenceSegmenter interface {
	Segment(content string) []Sentence
}

// SimilarityModel computes semantic similarity between two keyword texts.
// It is optional: when nil, the semantic pass is skipped entirely (spec.md
// §4.3: "requires an NLP model that can compute text similarity").
type SimilarityModel interface {
	Similarity(a, b string) float64
}

// RelationshipManager produces inter-keyword edges from a processed keyword
// list plus the cleaned content (spec.md §4.3).
type RelationshipManager struct {
	segmenter  SentenceSegmenter
	similarity SimilarityModel
}

// NewRelationshipManager constructs a RelationshipManager. similarity may
// be nil to skip the optional semantic pass.
func NewRelationshipManager(segmenter SentenceSegmenter, similarity SimilarityModel) *RelationshipManager {
	return &RelationshipManager{segmenter: segmenter, similarity: similarity}
}

// Produce runs the semantic (optional), contextual and hierarchical passes
// over the keyword list and returns the merged, deduplicated relationship
// set (spec.md §4.3). Use PrepareForStorage to filter by confidence before
// persisting.
func (m *RelationshipManager) Produce(keywords []*keywordmodel.KeywordIdentifier, content string, now time.Time) []*keywordmodel.Relationship {
	rels := make(map[string]*keywordmodel.Relationship)

	if m.similarity != nil {
		m.produceSemantic(keywords, rels, now)
	}
	if m.segmenter != nil {
		m.produceContextual(keywords, content, rels, now)
	}
	m.produceHierarchical(keywords, rels, now)

	out := make([]*keywordmodel.Relationship, 0, len(rels))
	for _, r := range rels {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PrepareForStorage emits edges whose aggregated confidence meets
// minConfidence (spec.md §4.3; default 0.5).
func PrepareForStorage(rels []*keywordmodel.Relationship, minConfidence float64) []*keywordmodel.Relationship {
	if minConfidence <= 0 {
		minConfidence = defaultMinConfidence
	}
	out := make([]*keywordmodel.Relationship, 0, len(rels))
	for _, r := range rels {
		if r.Confidence >= minConfidence {
			out = append(out, r)
		}
	}
	return out
}

func (m *RelationshipManager) produceSemantic(keywords []*keywordmodel.KeywordIdentifier, rels map[string]*keywordmodel.Relationship, now time.Time) {
	edgeCount := make(map[string]int)
	for i := 0; i < len(keywords); i++ {
		for j := i + 1; j < len(keywords); j++ {
			a, b := keywords[i], keywords[j]
			if edgeCount[a.ID.String()] >= maxSemanticEdgesPerKeyword || edgeCount[b.ID.String()] >= maxSemanticEdgesPerKeyword {
				continue
			}
			sim := m.similarity.Similarity(a.CanonicalText, b.CanonicalText)
			var relType keywordmodel.RelationshipType
			switch {
			case sim > semanticSynonymThreshold:
				relType = keywordmodel.RelationshipSynonym
			case sim > semanticRelatedThreshold:
				relType = keywordmodel.RelationshipRelated
			default:
				continue
			}
			evidence := keywordmodel.RelationshipEvidence{Confidence: clamp01(sim), Method: "semantic"}
			if _, _, err := mergeRelationship(rels, a.ID, b.ID, relType, evidence, now); err == nil {
				edgeCount[a.ID.String()]++
				edgeCount[b.ID.String()]++
			}
		}
	}
}

func (m *RelationshipManager) produceContextual(keywords []*keywordmodel.KeywordIdentifier, content string, rels map[string]*keywordmodel.Relationship, now time.Time) {
	sentences := m.segmenter.Segment(content)

	for i := 0; i < len(keywords); i++ {
		for j := i + 1; j < len(keywords); j++ {
			a, b := keywords[i], keywords[j]
			bestProximity := -1.0
			var bestEvidence keywordmodel.RelationshipEvidence
			found := false

			for _, sentence := range sentences {
				lower := strings.ToLower(sentence.Text)
				posA := strings.Index(lower, strings.ToLower(a.CanonicalText))
				posB := strings.Index(lower, strings.ToLower(b.CanonicalText))
				if posA < 0 || posB < 0 {
					continue
				}
				diff := posA - posB
				if diff < 0 {
					diff = -diff
				}
				proximity := 1.0 / float64(diff+1)
				if proximity > bestProximity {
					bestProximity = proximity
					bestEvidence = keywordmodel.RelationshipEvidence{
						SentenceText: sentence.Text,
						SentenceID:   sentence.ID,
						SourceStart:  posA,
						SourceEnd:    posA + len(a.CanonicalText),
						TargetStart:  posB,
						TargetEnd:    posB + len(b.CanonicalText),
						Confidence:   proximity,
						Method:       "contextual",
					}
					found = true
				}
			}

			if found {
				_, _, _ = mergeRelationship(rels, a.ID, b.ID, keywordmodel.RelationshipRelated, bestEvidence, now)
			}
		}
	}
}

func (m *RelationshipManager) produceHierarchical(keywords []*keywordmodel.KeywordIdentifier, rels map[string]*keywordmodel.Relationship, now time.Time) {
	for i := 0; i < len(keywords); i++ {
		for j := i + 1; j < len(keywords); j++ {
			a, b := keywords[i], keywords[j]
			la, lb := strings.ToLower(a.CanonicalText), strings.ToLower(b.CanonicalText)
			if la == lb {
				continue
			}

			var container, contained *keywordmodel.KeywordIdentifier
			switch {
			case strings.Contains(lb, la):
				container, contained = b, a
			case strings.Contains(la, lb):
				container, contained = a, b
			default:
				continue
			}

			relType := keywordmodel.RelationshipRelated
			if container.Type == keywordmodel.KeywordConcept && contained.Type == keywordmodel.KeywordTerm {
				relType = keywordmodel.RelationshipHierarchical
			}

			evidence := keywordmodel.RelationshipEvidence{Confidence: hierarchicalEvidenceConfidence, Method: "hierarchical"}
			_, _, _ = mergeRelationship(rels, container.ID, contained.ID, relType, evidence, now)
		}
	}
}

// mergeRelationship builds (or merges into) a relationship keyed by its
// post-canonicalization id, so duplicate (source,target,type) edges produced
// across passes are combined rather than duplicated (spec.md §4.3). It
// returns the relationship's id and whether a new entry was created (as
// opposed to merged into an existing one).
func mergeRelationship(rels map[string]*keywordmodel.Relationship, sourceID, targetID shared.KeywordID, relType keywordmodel.RelationshipType, evidence keywordmodel.RelationshipEvidence, now time.Time) (string, bool, error) {
	candidate, err := keywordmodel.NewRelationship(sourceID, targetID, relType, []keywordmodel.RelationshipEvidence{evidence}, now)
	if err != nil {
		return "", false, err
	}

	if existing, ok := rels[candidate.ID]; ok {
		existing.AddEvidence(candidate.Evidence[0])
		return existing.ID, false, nil
	}

	rels[candidate.ID] = candidate
	return candidate.ID, true, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
