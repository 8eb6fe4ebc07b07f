package components

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingestgraph/internal/domain/page"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestPage(t *testing.T, raw string) *page.Page {
	t.Helper()
	p, err := page.NewPage("https://example.com/a", "example.com", time.Now())
	require.NoError(t, err)
	p.AttachContent(raw, page.SourceHTML)
	return p
}

func TestMetadataComponent_PrefersOpenGraphTitle(t *testing.T) {
	raw := `<html><head>
		<title>Fallback Title</title>
		<meta property="og:title" content="OG Title">
		<meta name="author" content="Jane Doe">
		<meta property="article:published_time" content="2024-01-02T00:00:00Z">
	</head><body>hello world</body></html>`
	p := newTestPage(t, raw)

	c := NewMetadataComponent(fixedClock(time.Now()))
	ok, err := c.Validate(context.Background(), p)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.Process(context.Background(), p))
	assert.Equal(t, "OG Title", p.Title)
	assert.Equal(t, "Jane Doe", p.Author())
	require.NotNil(t, p.PublishedDate())
	assert.Equal(t, 2024, p.PublishedDate().Year())
}

func TestMetadataComponent_FallsBackToTitleTag(t *testing.T) {
	raw := `<html><head><title>Plain Title</title></head><body>content</body></html>`
	p := newTestPage(t, raw)

	c := NewMetadataComponent(fixedClock(time.Now()))
	require.NoError(t, c.Process(context.Background(), p))
	assert.Equal(t, "Plain Title", p.Title)
	assert.Empty(t, p.Author())
}

func TestMetadataComponent_DefaultsWhenNoTitleFound(t *testing.T) {
	p := newTestPage(t, `<html><body>no title here</body></html>`)

	c := NewMetadataComponent(fixedClock(time.Now()))
	require.NoError(t, c.Process(context.Background(), p))
	assert.Equal(t, "Untitled", p.Title)
}

func TestMetadataComponent_Validate_RejectsEmptyContent(t *testing.T) {
	p := newTestPage(t, "   ")
	c := NewMetadataComponent(fixedClock(time.Now()))
	ok, err := c.Validate(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, ok)
}
