package observability

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewFileLoggerWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin.log")
	logger, err := NewFileLogger("debug", FileOptions{Path: path})
	require.NoError(t, err)

	logger.Info("document written")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"message":"document written"`)
	require.Contains(t, string(data), `"severity":"INFO"`)
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	require.NotNil(t, FromContext(context.Background()))
	logger, err := NewLoggerWithLevel("not-a-level")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	require.Same(t, logger, FromContext(WithLogger(context.Background(), logger)))
}
