package logger

import (
	"testing"

	"inkwell/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitReturnsSameInstance(t *testing.T) {
	cfg := config.Config{LogLevel: "debug", LogFormat: "text"}

	first, err := Init(cfg)
	require.NoError(t, err)
	require.NotNil(t, first)

	// A different config must not replace the singleton
	second, err := Init(config.Config{LogLevel: "error", LogFormat: "json"})
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Same(t, first, L())
}
