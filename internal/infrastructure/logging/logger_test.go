package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewBuildsLogger(t *testing.T) {
	logger, err := New(Config{Level: "warn", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	require.NotNil(t, logger.Logger)
	assert.False(t, logger.Core().Enabled(-1))
}

func TestFromLevelFallsBack(t *testing.T) {
	logger := FromLevel("nonsense", false)
	require.NotNil(t, logger)
	require.NotNil(t, logger.Logger)
}

func TestForNilLogger(t *testing.T) {
	var l *Logger
	assert.NotNil(t, l.For(ContextBackground))
	assert.NotNil(t, OrNop(nil))
}
