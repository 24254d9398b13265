package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2", req.Model)
		assert.False(t, req.Stream)
		require.NotNil(t, req.Options)
		assert.Equal(t, 64, req.Options.NumPredict)

		_ = json.NewEncoder(w).Encode(generateResponse{Response: "  Berlin.\n", Done: true})
	}))
	defer srv.Close()

	svc := NewLLMService(Config{BaseURL: srv.URL})

	out, err := svc.Generate(context.Background(), "q", driven.GenerateOptions{MaxTokens: 64})

	require.NoError(t, err)
	assert.Equal(t, "Berlin.", out)
}

func TestGenerate_NoOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Nil(t, req.Options)
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "ok"})
	}))
	defer srv.Close()

	_, err := NewLLMService(Config{BaseURL: srv.URL}).Generate(context.Background(), "q", driven.GenerateOptions{})
	assert.NoError(t, err)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	assert.NoError(t, NewLLMService(Config{BaseURL: srv.URL}).Ping(context.Background()))
}
