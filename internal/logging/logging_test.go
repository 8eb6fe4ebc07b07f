package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingestgraph/internal/config"
	"ingestgraph/internal/logging"
)

func TestNew_BuildsLoggerForEachEnvironment(t *testing.T) {
	for _, env := range []config.Environment{config.Development, config.Staging, config.Production} {
		logger, err := logging.New(env, config.Logging{Level: "info", Format: "json"})
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}

func TestNew_RejectsInvalidLevel(t *testing.T) {
	_, err := logging.New(config.Development, config.Logging{Level: "not-a-level"})
	assert.Error(t, err)
}
