package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencyExtractor_ScoresByRelativeFrequency(t *testing.T) {
	e := NewFrequencyExtractor(0, 0, 0)
	content := "graph graph graph database database pipeline"

	raw := e.Extract(content)
	require.NotEmpty(t, raw)

	scores := map[string]float64{}
	for _, kw := range raw {
		scores[kw.Text] = kw.Score
	}

	assert.Equal(t, 1.0, scores["graph"])
	assert.InDelta(t, 2.0/3.0, scores["database"], 0.001)
	assert.InDelta(t, 1.0/3.0, scores["pipeline"], 0.001)
}

func TestFrequencyExtractor_DropsStopwordsAndShortTokens(t *testing.T) {
	e := NewFrequencyExtractor(0, 0, 0)
	raw := e.Extract("the of it is a an to be")
	assert.Empty(t, raw)
}

func TestFrequencyExtractor_EmptyContentYieldsNoKeywords(t *testing.T) {
	e := NewFrequencyExtractor(0, 0, 0)
	assert.Empty(t, e.Extract(""))
}

func TestFrequencyExtractor_DropsTermsBelowMinFrequency(t *testing.T) {
	e := NewFrequencyExtractor(0, 2, 0)
	raw := e.Extract("graph graph graph database pipeline")

	var texts []string
	for _, kw := range raw {
		texts = append(texts, kw.Text)
	}
	assert.Contains(t, texts, "graph")
	assert.NotContains(t, texts, "database")
	assert.NotContains(t, texts, "pipeline")
}

func TestFrequencyExtractor_DropsTermsBelowScoreThreshold(t *testing.T) {
	e := NewFrequencyExtractor(0, 0, 0.5)
	raw := e.Extract("graph graph graph database database pipeline")

	var texts []string
	for _, kw := range raw {
		texts = append(texts, kw.Text)
	}
	assert.Contains(t, texts, "graph")
	assert.Contains(t, texts, "database")
	assert.NotContains(t, texts, "pipeline")
}
