package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/llmstudio/studio-backend/internal/config"
	"github.com/llmstudio/studio-backend/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(baseURL string) *ModelGateway {
	reg := registry.NewRegistry()
	reg.Register(&registry.ModelConfig{
		Key:     "test",
		Name:    "Test Model",
		Model:   "test-model",
		BaseURL: baseURL,
	})
	return NewModelGateway(reg, &config.Config{AITimeout: 5 * time.Second})
}

func TestInvokeSuccess(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hello back"}}]}`))
	}))
	defer server.Close()

	gw := newTestGateway(server.URL + "/v1")

	history := []Turn{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	reply, err := gw.Invoke(context.Background(), "test", "You are terse.", history, "Hello", 0.5)
	require.NoError(t, err)
	assert.Equal(t, "Hello back", reply)

	body := string(gotBody)
	assert.Contains(t, body, "test-model")
	assert.Contains(t, body, "You are terse.")
	assert.Contains(t, body, "earlier question")
}

func TestInvokeUnknownModel(t *testing.T) {
	gw := newTestGateway("http://127.0.0.1:1/v1")

	_, err := gw.Invoke(context.Background(), "missing", "", nil, "hi", 0.7)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestInvokeClientErrorNotRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad request","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	gw := newTestGateway(server.URL + "/v1")

	_, err := gw.Invoke(context.Background(), "test", "", nil, "hi", 0.7)
	require.Error(t, err)

	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.False(t, gwErr.Retryable)
	assert.Equal(t, http.StatusBadRequest, gwErr.Status)
}

func TestInvokeServerErrorRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
	}))
	defer server.Close()

	gw := newTestGateway(server.URL + "/v1")

	_, err := gw.Invoke(context.Background(), "test", "", nil, "hi", 0.7)
	require.Error(t, err)

	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.True(t, gwErr.Retryable)
}

func TestInvokeEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	gw := newTestGateway(server.URL + "/v1")

	_, err := gw.Invoke(context.Background(), "test", "", nil, "hi", 0.7)
	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.False(t, gwErr.Retryable)
}

func TestEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.1,0.2]},{"index":1,"embedding":[0.3,0.4]}]}`))
	}))
	defer server.Close()

	gw := NewModelGateway(registry.NewRegistry(), &config.Config{
		AITimeout:        5 * time.Second,
		EmbeddingAPIBase: server.URL + "/v1",
		EmbeddingModel:   "text-embedding-3-small",
	})

	vectors, err := gw.Embed(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.1, 0.2}, vectors[0])
	assert.Equal(t, []float32{0.3, 0.4}, vectors[1])
}
