package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageID_RoundTrip(t *testing.T) {
	id := NewPageID()
	assert.False(t, id.IsEmpty())

	parsed, err := ParsePageID(id.String())
	require.NoError(t, err)
	assert.True(t, id.Equals(parsed))
}

func TestParsePageID_Invalid(t *testing.T) {
	_, err := ParsePageID("not-a-uuid")
	require.Error(t, err)
}

func TestKeywordID_Deterministic(t *testing.T) {
	a, err := NewKeywordID("noun:climate change")
	require.NoError(t, err)
	b, err := NewKeywordID("noun:climate change")
	require.NoError(t, err)

	assert.True(t, a.Equals(b))
}

func TestKeywordID_Empty(t *testing.T) {
	_, err := NewKeywordID("")
	require.Error(t, err)
}

func TestVersion_Next(t *testing.T) {
	v := NewVersion()
	assert.Equal(t, 0, v.Int())

	next := v.Next()
	assert.Equal(t, 1, next.Int())
	assert.False(t, v.Equals(next))
}

func TestParseVersion_ClampsNegative(t *testing.T) {
	v := ParseVersion(-5)
	assert.Equal(t, 0, v.Int())
}
