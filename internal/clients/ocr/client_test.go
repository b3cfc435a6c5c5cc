package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/services/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecognizeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recognize", r.URL.Path)

		var req struct {
			Image string `json:"image"`
			Lang  string `json:"lang"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "data:image/png;base64,AAAA", req.Image)
		assert.Equal(t, "eng", req.Lang)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "scribbled words"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	out, err := client.Recognize(context.Background(), "data:image/png;base64,AAAA", "eng")

	require.NoError(t, err)
	assert.Equal(t, "scribbled words", out)
}

func TestRecognizeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"unsupported image format"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Recognize(context.Background(), "data:image/tiff;base64,AAAA", "eng")

	var upstream *ai.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusUnprocessableEntity, upstream.Status)
	assert.Contains(t, upstream.Body, "unsupported image format")
	assert.Equal(t, "ocr", upstream.Service)
}
