package stage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSequence_Order(t *testing.T) {
	assert.Equal(t, []Name{Initialize, Metadata, Content, Analysis, Storage}, Sequence)
}

func TestDefaultConfigs_MatchesSpecTimeouts(t *testing.T) {
	configs := DefaultConfigs()
	assert.Equal(t, 5*time.Second, configs[Initialize].Timeout())
	assert.Equal(t, 30*time.Second, configs[Metadata].Timeout())
	assert.Equal(t, 60*time.Second, configs[Content].Timeout())
	assert.Equal(t, 120*time.Second, configs[Analysis].Timeout())
	assert.Equal(t, 30*time.Second, configs[Storage].Timeout())

	for _, cfg := range configs {
		assert.True(t, cfg.Required)
		assert.True(t, cfg.ConcurrentComponents)
		assert.True(t, cfg.ValidationRequired)
		assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	}
}

func TestStageEndEvent_CarriesDuration(t *testing.T) {
	evt := NewStageEndEvent(Content, 150*time.Millisecond, nil, time.Now())
	assert.Equal(t, "stage-end", evt.Type)
	assert.Equal(t, int64(150), evt.Metadata["duration_ms"])
}
