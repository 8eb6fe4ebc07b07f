package components

import (
	"context"
	"regexp"
	"strings"
	"time"

	"ingestgraph/internal/domain/page"
	"ingestgraph/internal/domain/stage"
)

var (
	titleTagRe   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaTagRe    = regexp.MustCompile(`(?is)<meta\s+([^>]+)>`)
	metaAttrRe   = regexp.MustCompile(`(?i)(name|property)\s*=\s*["']([^"']+)["']`)
	metaValueRe  = regexp.MustCompile(`(?i)content\s*=\s*["']([^"']*)["']`)
	langAttrRe   = regexp.MustCompile(`(?is)<html[^>]*\blang\s*=\s*["']([^"']+)["']`)
	authorNames  = []string{"author", "article:author", "og:author", "twitter:creator"}
	publishNames = []string{"article:published_time", "og:article:published_time", "publication_date", "date"}
	modifiedNames = []string{"article:modified_time", "og:article:modified_time", "last_modified"}
)

// MetadataComponent extracts title, author, language and publication dates
// from a page's raw HTML (spec.md §4.4 metadata stage), walking meta tags
// in a fixed source-priority order (grounded on MetadataExtractor's
// og:title/meta/title-tag fallback chain in original_source). HTML parsing
// uses stdlib regexp rather than a dedicated parser library: no example
// repo in the corpus imports one, and introducing an unwired dependency to
// parse loosely-structured tag soup isn't worth it for a handful of
// well-known tag shapes.
type MetadataComponent struct {
	clock func() time.Time
}

// NewMetadataComponent constructs a MetadataComponent.
func NewMetadataComponent(clock func() time.Time) *MetadataComponent {
	if clock == nil {
		clock = time.Now
	}
	return &MetadataComponent{clock: clock}
}

func (c *MetadataComponent) Kind() stage.ComponentKind { return stage.KindMetadata }
func (c *MetadataComponent) Name() string              { return "metadata_extractor" }

// Validate requires non-empty raw content; metadata extraction is a no-op
// otherwise.
func (c *MetadataComponent) Validate(ctx context.Context, p *page.Page) (bool, error) {
	return strings.TrimSpace(p.RawContent()) != "", nil
}

func (c *MetadataComponent) Process(ctx context.Context, p *page.Page) error {
	raw := p.RawContent()
	metaTags := parseMetaTags(raw)

	title, titleSource := extractTitle(raw, metaTags)
	author, authorSource := firstMetaValue(metaTags, authorNames)
	language := extractLanguage(raw, metaTags)
	published := firstMetaDate(metaTags, publishNames)
	modified := firstMetaDate(metaTags, modifiedNames)

	p.SetTitle(title)

	wordCount := len(strings.Fields(stripTags(raw)))
	readingMinutes := float64(wordCount) / 200.0

	p.SetMetadata(language, author, wordCount, readingMinutes, published, modified)
	p.SetQualityScores(metadataQualityScore(titleSource, authorSource, published), p.Metrics().QualityScore, p.Metrics().RelevanceScore)
	return nil
}

// metadataQualityScore mirrors MetadataExtractor._evaluate_quality's
// source-weighted scoring: a higher-confidence source for title/author
// nudges the score up, and a present publication date counts toward the
// required-fields baseline.
func metadataQualityScore(titleSource, authorSource string, published *time.Time) float64 {
	score := 0.5
	switch titleSource {
	case "og_tag":
		score += 0.2
	case "title_tag":
		score += 0.1
	}
	if authorSource != "" {
		score += 0.15
	}
	if published != nil {
		score += 0.15
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

type metaTag struct {
	key   string
	value string
}

func parseMetaTags(raw string) []metaTag {
	var tags []metaTag
	for _, m := range metaTagRe.FindAllStringSubmatch(raw, -1) {
		attrs := m[1]
		keyMatch := metaAttrRe.FindStringSubmatch(attrs)
		valueMatch := metaValueRe.FindStringSubmatch(attrs)
		if keyMatch == nil || valueMatch == nil {
			continue
		}
		tags = append(tags, metaTag{key: strings.ToLower(keyMatch[2]), value: strings.TrimSpace(valueMatch[1])})
	}
	return tags
}

func firstMetaValue(tags []metaTag, names []string) (string, string) {
	for _, name := range names {
		for _, t := range tags {
			if t.key == name && t.value != "" {
				return t.value, "meta_tag"
			}
		}
	}
	return "", ""
}

func firstMetaDate(tags []metaTag, names []string) *time.Time {
	value, _ := firstMetaValue(tags, names)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func extractTitle(raw string, tags []metaTag) (string, string) {
	if value, _ := firstMetaValue(tags, []string{"og:title"}); value != "" {
		return value, "og_tag"
	}
	if m := titleTagRe.FindStringSubmatch(raw); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			return title, "title_tag"
		}
	}
	return "Untitled", "default"
}

func extractLanguage(raw string, tags []metaTag) string {
	if m := langAttrRe.FindStringSubmatch(raw); m != nil {
		return strings.ToLower(m[1])
	}
	if value, _ := firstMetaValue(tags, []string{"language", "og:locale"}); value != "" {
		return strings.ToLower(value)
	}
	return ""
}
