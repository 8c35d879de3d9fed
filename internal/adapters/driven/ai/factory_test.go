package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagegen/internal/core/domain"
)

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.LLMSettings
		wantErr     error
		wantModel   string
		rateLimited bool
	}{
		{
			name:     "nil settings",
			settings: nil,
			wantErr:  domain.ErrLLMUnavailable,
		},
		{
			name:     "missing api key",
			settings: &domain.LLMSettings{Provider: domain.AIProviderGemini},
			wantErr:  domain.ErrLLMUnavailable,
		},
		{
			name:      "gemini",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderGemini, APIKey: "k"},
			wantModel: "gemini-2.5-flash",
		},
		{
			name:      "openai with model",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "gpt-4o"},
			wantModel: "gpt-4o",
		},
		{
			name:      "anthropic",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"},
			wantModel: "claude-3-5-haiku-latest",
		},
		{
			name:        "ollama rate limited",
			settings:    &domain.LLMSettings{Provider: domain.AIProviderOllama, RequestsPerSecond: 2},
			wantModel:   "llama3.2",
			rateLimited: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(context.Background(), tt.settings)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			defer svc.Close()

			assert.Equal(t, tt.wantModel, svc.ModelName())
			_, isLimited := svc.(*RateLimitedLLM)
			assert.Equal(t, tt.rateLimited, isLimited)
		})
	}
}

func TestCreateConfiguredLLMService_NotConfigured(t *testing.T) {
	svc, err := CreateConfiguredLLMService(context.Background(), &domain.LLMSettings{})

	assert.NoError(t, err)
	assert.Nil(t, svc)
}

func TestCreateConfiguredLLMService_MakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc, err := CreateConfiguredLLMService(context.Background(), &domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  server.URL,
	})

	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.NoError(t, svc.Close())
	assert.Zero(t, hits.Load())
}

func TestCreateConfiguredLLMService_UnreachableStillCreated(t *testing.T) {
	settings := &domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1"}

	svc, err := CreateConfiguredLLMService(context.Background(), settings)

	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Error(t, svc.Ping(context.Background()))
}

func TestValidateLLMConfig(t *testing.T) {
	assert.NoError(t, ValidateLLMConfig(nil))
	assert.NoError(t, ValidateLLMConfig(&domain.LLMSettings{Provider: domain.AIProviderOpenAI}))
	assert.Error(t, ValidateLLMConfig(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1"}))
}
