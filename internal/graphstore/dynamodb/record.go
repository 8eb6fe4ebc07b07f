package dynamodb

import (
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"ingestgraph/internal/domain/page"
	"ingestgraph/internal/domain/shared"
	"ingestgraph/internal/domain/site"
)

const customFieldPrefix = "custom_"

// pageRecord is the flat, primitives-only shape spec.md §6 persists a Page
// as. Arbitrary custom metadata is flattened to custom_<key> at marshal time
// and reassembled at unmarshal time (spec.md §9 supplement note on
// arbitrary-shape nested metadata).
type pageRecord struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`

	ID     string `dynamodbav:"id"`
	SiteID string `dynamodbav:"site_id,omitempty"`
	URL    string `dynamodbav:"url"`
	Domain string `dynamodbav:"domain"`
	Status string `dynamodbav:"status"`
	Title  string `dynamodbav:"title"`

	Keywords        map[string]float64 `dynamodbav:"keywords"`
	BrowserContexts []string           `dynamodbav:"browser_contexts"`
	Errors          []string           `dynamodbav:"errors"`

	DiscoveredAt time.Time `dynamodbav:"discovered_at"`
	LastAccessed time.Time `dynamodbav:"last_accessed"`

	MetadataQualityScore float64 `dynamodbav:"metadata_quality_score"`
	TabID                string  `dynamodbav:"tab_id"`
	WindowID             string  `dynamodbav:"window_id"`
	BookmarkID           string  `dynamodbav:"bookmark_id"`
	WordCount            int     `dynamodbav:"word_count"`
	ReadingTimeMinutes   float64 `dynamodbav:"reading_time_minutes"`
	Language             string  `dynamodbav:"language"`
	SourceType           string  `dynamodbav:"source_type"`
	Author               string  `dynamodbav:"author"`
	PublishedDate        *string `dynamodbav:"published_date,omitempty"`
	ModifiedDate         *string `dynamodbav:"modified_date,omitempty"`
	EmbeddingStatus      string  `dynamodbav:"embedding_status"`

	MetricQualityScore   float64       `dynamodbav:"metric_quality_score"`
	MetricRelevanceScore float64       `dynamodbav:"metric_relevance_score"`
	MetricVisitCount     int           `dynamodbav:"metric_visit_count"`
	MetricKeywordCount   int           `dynamodbav:"metric_keyword_count"`
	MetricProcessingTime time.Duration `dynamodbav:"metric_processing_time"`

	Version int `dynamodbav:"version"`
}

func toPageRecord(p *page.Page) (map[string]types.AttributeValue, error) {
	contexts := p.BrowserContexts()
	contextStrs := make([]string, 0, len(contexts))
	for _, c := range contexts {
		contextStrs = append(contextStrs, string(c))
	}

	rec := pageRecord{
		PK:                   BuildPagePK(p.ID.String()),
		SK:                   BuildMetaSK,
		EntityType:           entityTypePage,
		ID:                   p.ID.String(),
		SiteID:               p.SiteID.String(),
		URL:                  p.URL,
		Domain:               p.Domain,
		Status:               string(p.Status),
		Title:                p.Title,
		Keywords:             p.Keywords,
		BrowserContexts:      contextStrs,
		Errors:               p.Errors,
		DiscoveredAt:         p.DiscoveredAt,
		LastAccessed:         p.LastAccessed,
		MetadataQualityScore: p.MetaQuality(),
		TabID:                p.TabID(),
		WindowID:             p.WindowID(),
		BookmarkID:           p.BookmarkID(),
		WordCount:            p.WordCount(),
		ReadingTimeMinutes:   p.ReadingMinutes(),
		Language:             p.Language(),
		Author:               p.Author(),
		PublishedDate:        formatOptionalTime(p.PublishedDate()),
		ModifiedDate:         formatOptionalTime(p.ModifiedDate()),
		SourceType:           string(p.SourceType()),
		EmbeddingStatus:      string(p.EmbeddingStatus()),
		MetricKeywordCount:   p.KeywordCount(),
		Version:              p.Version,
	}

	metrics := p.Metrics()
	rec.MetricQualityScore = metrics.QualityScore
	rec.MetricRelevanceScore = metrics.RelevanceScore
	rec.MetricVisitCount = metrics.VisitCount
	rec.MetricProcessingTime = metrics.ProcessingTime

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, err
	}

	for key, value := range flattenCustom(p.Custom) {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			continue
		}
		item[customFieldPrefix+key] = av
	}

	return item, nil
}

func flattenCustom(custom map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(custom))
	for k, v := range custom {
		out[k] = v
	}
	return out
}

func fromPageRecord(item map[string]types.AttributeValue) (*page.Page, error) {
	var rec pageRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, err
	}

	id, err := shared.ParsePageID(rec.ID)
	if err != nil {
		return nil, err
	}

	var siteID shared.SiteID
	if rec.SiteID != "" {
		siteID, err = shared.ParseSiteID(rec.SiteID)
		if err != nil {
			return nil, err
		}
	}

	keywords := rec.Keywords
	if keywords == nil {
		keywords = make(map[string]float64)
	}

	contexts := make(map[page.BrowserContext]bool, len(rec.BrowserContexts))
	for _, c := range rec.BrowserContexts {
		contexts[page.BrowserContext(c)] = true
	}

	custom := make(map[string]interface{})
	for key, av := range item {
		if !strings.HasPrefix(key, customFieldPrefix) {
			continue
		}
		var value interface{}
		if err := attributevalue.Unmarshal(av, &value); err == nil {
			custom[strings.TrimPrefix(key, customFieldPrefix)] = value
		}
	}

	metrics := page.Metrics{
		QualityScore:   rec.MetricQualityScore,
		RelevanceScore: rec.MetricRelevanceScore,
		VisitCount:     rec.MetricVisitCount,
		ProcessingTime: rec.MetricProcessingTime,
		KeywordCount:   rec.MetricKeywordCount,
	}

	return page.ReconstructPage(
		id, siteID, rec.URL, rec.Domain, page.Status(rec.Status),
		rec.Title, keywords, nil, rec.Errors,
		rec.DiscoveredAt, rec.LastAccessed, rec.MetadataQualityScore,
		contexts, rec.TabID, rec.WindowID, rec.BookmarkID,
		rec.Language, rec.Author, rec.WordCount, rec.ReadingTimeMinutes,
		parseOptionalTime(rec.PublishedDate), parseOptionalTime(rec.ModifiedDate),
		page.SourceType(rec.SourceType), page.EmbeddingStatus(rec.EmbeddingStatus),
		custom, metrics, shared.ParseVersion(rec.Version),
	), nil
}

type siteRecord struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`

	ID          string    `dynamodbav:"id"`
	URL         string    `dynamodbav:"url"`
	Title       string    `dynamodbav:"title"`
	Favicon     string    `dynamodbav:"favicon"`
	PageCount   int       `dynamodbav:"page_count"`
	ActivePages int       `dynamodbav:"active_pages"`
	TotalVisits int       `dynamodbav:"total_visits"`
	LastUpdated time.Time `dynamodbav:"last_updated"`
	Version     int       `dynamodbav:"version"`
}

func toSiteRecord(s *site.Site) (map[string]types.AttributeValue, error) {
	rec := siteRecord{
		PK:          BuildSitePK(s.ID.String()),
		SK:          BuildMetaSK,
		EntityType:  entityTypeSite,
		ID:          s.ID.String(),
		URL:         s.URL,
		Title:       s.Title,
		Favicon:     s.Favicon,
		PageCount:   s.PageCount,
		ActivePages: s.ActivePages,
		TotalVisits: s.TotalVisits,
		LastUpdated: s.LastUpdated,
		Version:     s.Version,
	}
	return attributevalue.MarshalMap(rec)
}

func fromSiteRecord(item map[string]types.AttributeValue) (*site.Site, error) {
	var rec siteRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, err
	}
	id, err := shared.ParseSiteID(rec.ID)
	if err != nil {
		return nil, err
	}
	return site.ReconstructSite(id, rec.URL, rec.Title, rec.Favicon,
		rec.PageCount, rec.ActivePages, rec.TotalVisits, rec.LastUpdated,
		shared.ParseVersion(rec.Version)), nil
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func parseOptionalTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	return &t
}
