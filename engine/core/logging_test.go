package core

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggingWritesToDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	closer, err := SetupLogging(LogOptions{Level: LogLevelDebug, Directory: dir})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = SetupLogging(LogOptions{Level: LogLevelDebug})
	})

	LogInfo("window %dx%d", 800, 600)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "window 800x600")
}

func TestSetupLoggingWithoutDirectory(t *testing.T) {
	closer, err := SetupLogging(LogOptions{Level: LogLevelWarn})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
	assert.Equal(t, LogLevelWarn, getLogger().GetLevel())

	_, _ = SetupLogging(LogOptions{Level: LogLevelDebug})
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsConfigError(fmt.Errorf("%w: bad toml", ErrConfigParse)))
	assert.False(t, IsConfigError(ErrGraphicsAdapter))

	assert.True(t, IsGraphicsInitError(fmt.Errorf("%w: vkCreateDevice", ErrGraphicsDevice)))
	assert.False(t, IsGraphicsInitError(fmt.Errorf("%w: %w", ErrSurfaceAcquire, ErrSurfaceLost)))
}
