package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerLogsCompletion(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	var fromCtx *zap.Logger
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = FromContext(r.Context())
		w.WriteHeader(http.StatusBadGateway)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))

	require.NotNil(t, fromCtx)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	require.EqualValues(t, http.StatusBadGateway, entries[0].ContextMap()["status"])
	require.Equal(t, "/admin", entries[0].ContextMap()["path"])
}

func TestFromContextDefaultsToNoop(t *testing.T) {
	require.NotNil(t, FromContext(nil))
	require.NotNil(t, FromContext(WithLogger(nil, nil)))
}

func TestNewLoggerWithLevelFallsBack(t *testing.T) {
	logger, err := NewLoggerWithLevel("not-a-level")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
