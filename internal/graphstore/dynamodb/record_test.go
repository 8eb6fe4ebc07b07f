package dynamodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingestgraph/internal/domain/keywordmodel"
	"ingestgraph/internal/domain/page"
	"ingestgraph/internal/domain/shared"
	"ingestgraph/internal/domain/site"
	"ingestgraph/internal/domain/task"
)

func TestBuildKeys(t *testing.T) {
	assert.Equal(t, "SITE#abc", BuildSitePK("abc"))
	assert.Equal(t, "PAGE#abc", BuildPageSK("abc"))
	assert.Equal(t, "PAGE#abc", BuildPagePK("abc"))
	assert.Equal(t, "KEYWORD#abc", BuildKeywordPK("abc"))
	assert.Equal(t, "REL#related#xyz", BuildRelationshipSK("related", "xyz"))
	assert.Equal(t, "META", BuildMetaSK)
}

func TestPageRecord_RoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p, err := page.NewPage("https://example.com/a", "example.com", now)
	require.NoError(t, err)
	p.SetTitle("Example Article")
	p.SetKeywords(map[string]float64{"graph": 0.9, "database": 0.6})
	p.SetCustom("tab_group", "research")
	p.SetCustom("priority", 3)
	require.NoError(t, p.ApplyBrowserContext(page.ContextActiveTab, "tab1", "win1", ""))
	p.SetSiteID(shared.NewSiteID())
	published := now.Add(-24 * time.Hour)
	p.SetMetadata("en", "Jane Doe", 1200, 6.5, &published, nil)
	p.SetQualityScores(0.8, 0.7, 0.5)

	item, err := toPageRecord(p)
	require.NoError(t, err)

	got, err := fromPageRecord(item)
	require.NoError(t, err)

	assert.True(t, got.ID.Equals(p.ID))
	assert.True(t, got.SiteID.Equals(p.SiteID))
	assert.Equal(t, p.URL, got.URL)
	assert.Equal(t, p.Domain, got.Domain)
	assert.Equal(t, p.Title, got.Title)
	assert.Equal(t, p.Keywords, got.Keywords)
	assert.Equal(t, "en", got.Language())
	assert.Equal(t, "Jane Doe", got.Author())
	assert.Equal(t, 1200, got.WordCount())
	assert.InDelta(t, 6.5, got.ReadingMinutes(), 0.001)
	assert.InDelta(t, 0.8, got.MetaQuality(), 0.001)
	assert.Equal(t, "research", got.Custom["tab_group"])
	assert.EqualValues(t, 3, got.Custom["priority"])
	require.NotNil(t, got.PublishedDate())
	assert.WithinDuration(t, published, *got.PublishedDate(), time.Second)
	assert.Nil(t, got.ModifiedDate())
}

func TestSiteRecord_RoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s, err := site.NewSite("https://example.com", now)
	require.NoError(t, err)
	s.SetMetadata("Example", "https://example.com/favicon.ico")
	s.RegisterPage(true, now)
	s.RecordVisit(now)

	item, err := toSiteRecord(s)
	require.NoError(t, err)

	got, err := fromSiteRecord(item)
	require.NoError(t, err)

	assert.True(t, got.ID.Equals(s.ID))
	assert.Equal(t, s.URL, got.URL)
	assert.Equal(t, s.Title, got.Title)
	assert.Equal(t, s.Favicon, got.Favicon)
	assert.Equal(t, s.PageCount, got.PageCount)
	assert.Equal(t, s.ActivePages, got.ActivePages)
	assert.Equal(t, s.TotalVisits, got.TotalVisits)
}

func TestRelationshipRecord_RoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sourceID, err := shared.NewKeywordID("kw-source")
	require.NoError(t, err)
	targetID, err := shared.NewKeywordID("kw-target")
	require.NoError(t, err)

	rel, err := keywordmodel.NewRelationship(sourceID, targetID, keywordmodel.RelationshipRelated,
		[]keywordmodel.RelationshipEvidence{{Confidence: 0.7, Method: "contextual"}}, now)
	require.NoError(t, err)

	item, err := toRelationshipRecord(rel)
	require.NoError(t, err)

	got, err := fromRelationshipRecord(item)
	require.NoError(t, err)

	assert.Equal(t, rel.ID, got.ID)
	assert.True(t, got.SourceID.Equals(rel.SourceID))
	assert.True(t, got.TargetID.Equals(rel.TargetID))
	assert.Equal(t, rel.Type, got.Type)
	assert.InDelta(t, rel.Confidence, got.Confidence, 0.001)
}

func TestTaskRecord_RoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tsk, err := task.NewTask([]string{"https://example.com/a", "https://example.com/b"}, now)
	require.NoError(t, err)
	tsk.Start(now)
	tsk.SetURLStatus("https://example.com/a", task.StatusCompleted, 1.0, "", &task.Result{Keywords: []string{"graph"}})

	item, err := toTaskRecord(tsk)
	require.NoError(t, err)

	got, err := fromTaskRecord(item)
	require.NoError(t, err)

	assert.True(t, got.ID.Equals(tsk.ID))
	assert.Equal(t, tsk.Status, got.Status)
	require.Len(t, got.URLs, 2)
	assert.Equal(t, "https://example.com/a", got.URLs[0].URL)
	assert.Equal(t, task.StatusCompleted, got.URLs[0].Status)
	assert.Equal(t, []string{"graph"}, got.URLs[0].Result.Keywords)
}
