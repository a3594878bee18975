package llms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOllamaLLM(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		model    string
	}{
		{"Default endpoint", "", "test-model"},
		{"Custom endpoint", "http://custom:8080", "test-model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm, err := NewOllamaLLM(tt.endpoint, tt.model)
			assert.NoError(t, err)
			assert.NotNil(t, llm)
			if tt.endpoint == "" {
				assert.Equal(t, "http://localhost:11434", llm.GetEndpointConfig().BaseURL)
			} else {
				assert.Equal(t, tt.endpoint, llm.GetEndpointConfig().BaseURL)
			}
			assert.Equal(t, tt.model, llm.ModelID())
		})
	}
}

func TestNewOllamaLLM_MissingModel(t *testing.T) {
	llm, err := NewOllamaLLM("", "")
	assert.Error(t, err)
	assert.Nil(t, llm)
}

func TestOllamaLLM_Generate(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse *ollamaResponse
		serverStatus   int
		expectError    bool
	}{
		{
			name: "Successful generation",
			serverResponse: &ollamaResponse{
				Model:     "test-model",
				CreatedAt: "2023-01-01T00:00:00Z",
				Response:  "Generated text",
			},
			serverStatus: http.StatusOK,
			expectError:  false,
		},
		{
			name:           "Server error",
			serverResponse: nil,
			serverStatus:   http.StatusInternalServerError,
			expectError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/generate", r.URL.Path)
				assert.Equal(t, "POST", r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				w.WriteHeader(tt.serverStatus)
				if tt.serverResponse != nil {
					err := json.NewEncoder(w).Encode(tt.serverResponse)
					require.NoError(t, err)
				}
			}))
			defer server.Close()

			llm, err := NewOllamaLLM(server.URL, "test-model")
			require.NoError(t, err)

			resp, err := llm.Generate(context.Background(), "test prompt")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.serverResponse.Response, resp.Content)
		})
	}
}

func TestOllamaLLM_CreateEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req ollamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "some issue text", req.Prompt)

		resp := ollamaEmbeddingResponse{
			Embedding: []float32{0.1, 0.2, 0.3},
			Size:      3,
		}
		resp.Usage.Tokens = 4
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	llm, err := NewOllamaLLM(server.URL, "nomic-embed-text")
	require.NoError(t, err)

	result, err := llm.CreateEmbedding(context.Background(), "some issue text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, result.Vector)
	assert.Equal(t, 4, result.TokenCount)
}

func TestOllamaLLM_CreateEmbeddings(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		resp := ollamaEmbeddingResponse{
			Embedding: []float32{float32(calls), 0},
			Size:      2,
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	llm, err := NewOllamaLLM(server.URL, "nomic-embed-text")
	require.NoError(t, err)

	batch, err := llm.CreateEmbeddings(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, batch.Embeddings, 3)
	assert.Equal(t, 3, calls)
	assert.Equal(t, -1, batch.ErrorIndex)
}

func TestOllamaLLM_CreateEmbeddings_StopsOnError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		resp := ollamaEmbeddingResponse{Embedding: []float32{1}, Size: 1}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	llm, err := NewOllamaLLM(server.URL, "nomic-embed-text")
	require.NoError(t, err)

	batch, err := llm.CreateEmbeddings(context.Background(), []string{"a", "b", "c"})
	assert.Error(t, err)
	assert.Equal(t, 1, batch.ErrorIndex)
	assert.Len(t, batch.Embeddings, 1)
}

func TestOllamaEmbeddingCapability(t *testing.T) {
	assert.True(t, supportsOllamaEmbedding("nomic-embed-text"))
	assert.True(t, supportsOllamaEmbedding("custom-embedder"))
	assert.False(t, supportsOllamaEmbedding("llama3"))
}
