package components

import (
	"context"
	"strings"
	"time"

	"ingestgraph/internal/domain/keywordmodel"
	"ingestgraph/internal/domain/page"
	"ingestgraph/internal/domain/stage"
	"ingestgraph/internal/keywordengine"
)

// relationshipsCustomKey is where KeywordComponent stashes the full
// keywordmodel.Relationship set for StorageComponent to persist; page.Custom
// only needs the lightweight page.Relationship refs for its own JSON shape.
const relationshipsCustomKey = "relationships"

// KeywordComponent runs every registered Extractor, consolidates their
// output through KeywordProcessor, derives inter-keyword edges via
// RelationshipManager, and records both on the page (spec.md §4.4 analysis
// stage, §4.3 keyword engine).
type KeywordComponent struct {
	extractors    []Extractor
	processor     *keywordengine.KeywordProcessor
	relationships *keywordengine.RelationshipManager
	minConfidence float64
	clock         func() time.Time
}

// NewKeywordComponent wires the keyword engine's collaborators into one
// pipeline component.
func NewKeywordComponent(extractors []Extractor, processor *keywordengine.KeywordProcessor, relationships *keywordengine.RelationshipManager, minConfidence float64, clock func() time.Time) *KeywordComponent {
	if clock == nil {
		clock = time.Now
	}
	return &KeywordComponent{
		extractors:    extractors,
		processor:     processor,
		relationships: relationships,
		minConfidence: minConfidence,
		clock:         clock,
	}
}

func (c *KeywordComponent) Kind() stage.ComponentKind { return stage.KindKeyword }
func (c *KeywordComponent) Name() string              { return "keyword_analyzer" }

func (c *KeywordComponent) Validate(ctx context.Context, p *page.Page) (bool, error) {
	return strings.TrimSpace(p.RawContent()) != "", nil
}

func (c *KeywordComponent) Process(ctx context.Context, p *page.Page) error {
	content := p.RawContent()

	rawGroups := make([][]keywordmodel.RawKeyword, 0, len(c.extractors))
	for _, extractor := range c.extractors {
		rawGroups = append(rawGroups, extractor.Extract(content))
	}

	batch := keywordmodel.NewBatchContext(p.ID.String(), c.clock())
	keywords, err := c.processor.ProcessKeywords(rawGroups, batch)
	if err != nil {
		batch.Fail(c.clock(), err.Error())
		return err
	}
	batch.Complete(c.clock())

	scores := make(map[string]float64, len(keywords))
	for _, kw := range keywords {
		scores[kw.CanonicalText] = kw.Score
	}
	p.SetKeywords(scores)

	rels := c.relationships.Produce(keywords, content, c.clock())
	rels = keywordengine.PrepareForStorage(rels, c.minConfidence)

	for _, rel := range rels {
		p.AddRelationship(page.Relationship{
			ID:     rel.ID,
			Type:   string(rel.Type),
			Target: rel.TargetID.String(),
		})
	}
	p.SetCustom(relationshipsCustomKey, rels)

	return nil
}
