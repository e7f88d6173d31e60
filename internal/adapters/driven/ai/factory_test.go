package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	localembed "github.com/custodia-labs/docmerge/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/docmerge/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/docmerge/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/docmerge/internal/core/domain"
)

func fastRetries(t *testing.T) {
	t.Helper()
	old := retryDelay
	retryDelay = time.Millisecond
	t.Cleanup(func() { retryDelay = old })
}

// flakyOllama fails the first `failures` pings, then succeeds.
func flakyOllama(t *testing.T, failures int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var pings atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		if pings.Add(1) <= failures {
			http.Error(w, "loading model", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &pings
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantErr  bool
		wantDims int
	}{
		{
			name:    "nil settings returns error",
			wantErr: true,
		},
		{
			name:     "local provider",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderLocal, Dimensions: 64},
			wantDims: 64,
		},
		{
			name: "ollama known model",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				Model:    "mxbai-embed-large",
			},
			wantDims: 1024,
		},
		{
			name: "ollama unknown model uses default dimensions",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				Model:    "custom-model",
			},
			wantDims: ollamaembed.DefaultDimensions,
		},
		{
			name: "openai provider",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-large",
			},
			wantDims: 3072,
		},
		{
			name:     "openai without key",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantErr:  true,
		},
		{
			name:     "unknown provider",
			settings: &domain.EmbeddingSettings{Provider: "anthropic"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDims, svc.Dimensions())
		})
	}
}

func TestInitEmbedding_Local(t *testing.T) {
	settings := &domain.EmbeddingSettings{
		Provider:          domain.AIProviderLocal,
		Dimensions:        32,
		RequestsPerSecond: 5,
	}

	svc, err := InitEmbedding(context.Background(), settings)

	require.NoError(t, err)
	assert.IsType(t, &localembed.EmbeddingService{}, svc)
}

func TestInitEmbedding_RetriesUntilReady(t *testing.T) {
	fastRetries(t)
	srv, pings := flakyOllama(t, 2)

	svc, err := InitEmbedding(context.Background(), &domain.EmbeddingSettings{
		Provider:     domain.AIProviderOllama,
		BaseURL:      srv.URL,
		InitAttempts: 3,
	})

	require.NoError(t, err)
	assert.Equal(t, int32(3), pings.Load())
	assert.IsType(t, &ollamaembed.EmbeddingService{}, svc)
}

func TestInitEmbedding_ThrottlesRemote(t *testing.T) {
	srv, _ := flakyOllama(t, 0)

	svc, err := InitEmbedding(context.Background(), &domain.EmbeddingSettings{
		Provider:          domain.AIProviderOllama,
		BaseURL:           srv.URL,
		InitAttempts:      1,
		RequestsPerSecond: 2,
	})

	require.NoError(t, err)
	assert.IsType(t, &ratelimit.EmbeddingService{}, svc)
}

func TestInitEmbedding_GivesUp(t *testing.T) {
	fastRetries(t)
	srv, pings := flakyOllama(t, 10)

	_, err := InitEmbedding(context.Background(), &domain.EmbeddingSettings{
		Provider:     domain.AIProviderOllama,
		BaseURL:      srv.URL,
		InitAttempts: 2,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
	assert.Equal(t, int32(2), pings.Load())
}

func TestInitEmbedding_NotConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
	}{
		{"nil", nil},
		{"empty provider", &domain.EmbeddingSettings{}},
		{"openai without key", &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InitEmbedding(context.Background(), tt.settings)
			assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		})
	}
}

func TestValidateEmbeddingConfig(t *testing.T) {
	srv, _ := flakyOllama(t, 0)

	assert.NoError(t, ValidateEmbeddingConfig(nil))
	assert.NoError(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{}))
	assert.NoError(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{Provider: domain.AIProviderLocal}))
	assert.NoError(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  srv.URL,
	}))
}

func TestValidateEmbeddingConfig_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	err := ValidateEmbeddingConfig(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  srv.URL,
	})

	assert.Error(t, err)
}
