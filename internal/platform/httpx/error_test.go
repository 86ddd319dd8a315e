package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), rec, NewError("document_unavailable", "products.json\nis unavailable", http.StatusBadGateway))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	require.Equal(t, "document_unavailable", payload["error"])
	require.Equal(t, "products.json is unavailable", payload["message"])
	require.EqualValues(t, http.StatusBadGateway, payload["status"])
	_, hasRequestID := payload["request_id"]
	require.False(t, hasRequestID)
}

func TestNewErrorDefaultsStatusAndTruncates(t *testing.T) {
	err := NewError(strings.Repeat("c", 200), "msg", 0)
	require.Equal(t, http.StatusInternalServerError, err.Status)
	require.Len(t, err.Code, 80)
}
