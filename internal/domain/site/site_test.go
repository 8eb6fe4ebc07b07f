package site

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSite(t *testing.T) {
	now := time.Now()
	s, err := NewSite("https://example.com", now)
	require.NoError(t, err)
	assert.Equal(t, 0, s.PageCount)
	require.Len(t, s.GetUncommittedEvents(), 1)
}

func TestSite_RegisterAndActivatePage(t *testing.T) {
	now := time.Now()
	s, err := NewSite("https://example.com", now)
	require.NoError(t, err)

	s.RegisterPage(false, now)
	assert.Equal(t, 1, s.PageCount)
	assert.Equal(t, 0, s.ActivePages)

	s.PageActivated(now)
	assert.Equal(t, 1, s.ActivePages)
	require.NoError(t, s.Validate())
}

func TestSite_ActivePagesCannotExceedPageCount(t *testing.T) {
	s, err := NewSite("https://example.com", time.Now())
	require.NoError(t, err)
	s.PageActivated(time.Now())

	err = s.Validate()
	require.Error(t, err)
}
