package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask_RequiresAtLeastOneURL(t *testing.T) {
	_, err := NewTask(nil, time.Now())
	assert.Error(t, err)
}

func TestNewTask_StartsEnqueued(t *testing.T) {
	tsk, err := NewTask([]string{"https://example.com/a"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusEnqueued, tsk.Status)
	assert.False(t, tsk.IsTerminal())
}

func TestTask_AggregateRule_AnyErrorWins(t *testing.T) {
	now := time.Now()
	tsk, err := NewTask([]string{"https://a", "https://b"}, now)
	require.NoError(t, err)

	tsk.Start(now)
	tsk.SetURLStatus("https://a", StatusCompleted, 1.0, "", nil)
	tsk.SetURLStatus("https://b", StatusError, 0.5, "fetch failed", nil)

	assert.Equal(t, StatusError, tsk.Status)
	assert.Equal(t, "fetch failed", tsk.Message)
	assert.True(t, tsk.IsTerminal())
}

func TestTask_AggregateRule_AllCompleted(t *testing.T) {
	now := time.Now()
	tsk, err := NewTask([]string{"https://a", "https://b"}, now)
	require.NoError(t, err)

	tsk.SetURLStatus("https://a", StatusCompleted, 1.0, "", &Result{Keywords: []string{"graph"}})
	tsk.SetURLStatus("https://b", StatusCompleted, 1.0, "", nil)

	assert.Equal(t, StatusCompleted, tsk.Status)
	assert.Equal(t, 1.0, tsk.Progress)
	assert.True(t, tsk.IsTerminal())
}

func TestTask_AggregateRule_AnyProcessing(t *testing.T) {
	now := time.Now()
	tsk, err := NewTask([]string{"https://a", "https://b"}, now)
	require.NoError(t, err)

	tsk.SetURLStatus("https://a", StatusProcessing, 0.5, "", nil)

	assert.Equal(t, StatusProcessing, tsk.Status)
	assert.Equal(t, 0.25, tsk.Progress)
	assert.False(t, tsk.IsTerminal())
}

func TestTask_Validate_ErrorRequiresMessage(t *testing.T) {
	now := time.Now()
	tsk, err := NewTask([]string{"https://a"}, now)
	require.NoError(t, err)

	tsk.SetURLStatus("https://a", StatusError, 0, "boom", nil)
	assert.NoError(t, tsk.Validate())
	assert.Equal(t, "boom", tsk.Message)
}
