package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagegen/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pagegen/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore(nil)
	service := NewSettingsService(store, nil)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	store := memory.NewConfigStore(nil)
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	require.NotNil(t, settings)

	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults, *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore(nil)
	_ = store.Set("llm.provider", "openai")
	_ = store.Set("llm.temperature", 0.7)
	_ = store.Set("llm.max_tokens", int64(2048))
	_ = store.Set("llm.timeout", "30s")
	_ = store.Set("pipeline.output_dir", "build")
	_ = store.Set("pipeline.concurrent_pages", true)
	_ = store.Set("pipeline.faq_count", int64(9))
	_ = store.Set("history.enabled", false)

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.LLM.Provider)
	assert.Equal(t, domain.AIProviderOpenAI.DefaultModel(), settings.LLM.Model)
	assert.InDelta(t, 0.7, settings.LLM.Temperature, 1e-9)
	assert.Equal(t, 2048, settings.LLM.MaxTokens)
	assert.Equal(t, 30*time.Second, settings.LLM.Timeout)
	assert.Equal(t, "build", settings.Pipeline.OutputDir)
	assert.True(t, settings.Pipeline.ConcurrentPages)
	assert.Equal(t, 9, settings.Pipeline.FAQCount)
	assert.False(t, settings.History.Enabled)
}

func TestSettingsService_Get_StringValues(t *testing.T) {
	// Environment overrides arrive as strings
	store := memory.NewConfigStore(nil)
	_ = store.Set("llm.temperature", "0.9")
	_ = store.Set("llm.max_tokens", "1024")
	_ = store.Set("pipeline.strict_json", "true")
	_ = store.Set("pipeline.timeout", "2m")

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.InDelta(t, 0.9, settings.LLM.Temperature, 1e-9)
	assert.Equal(t, 1024, settings.LLM.MaxTokens)
	assert.True(t, settings.Pipeline.StrictJSON)
	assert.Equal(t, 2*time.Minute, settings.Pipeline.Timeout)
}

func TestSettingsService_Get_IntegerDurationIsSeconds(t *testing.T) {
	store := memory.NewConfigStore(nil)
	_ = store.Set("llm.timeout", int64(45))

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, settings.LLM.Timeout)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore(nil)
	_ = store.Set("llm.provider", "invalid_provider")
	_ = store.Set("llm.temperature", "warm")
	_ = store.Set("pipeline.concurrent_pages", "sometimes")
	_ = store.Set("llm.timeout", "soon")

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.InDelta(t, defaults.LLM.Temperature, settings.LLM.Temperature, 1e-9)
	assert.Equal(t, defaults.Pipeline.ConcurrentPages, settings.Pipeline.ConcurrentPages)
	assert.Equal(t, defaults.LLM.Timeout, settings.LLM.Timeout)
}

func TestSettingsService_Save(t *testing.T) {
	store := memory.NewConfigStore(nil)
	service := NewSettingsService(store, nil)

	settings := domain.DefaultSettings()
	settings.LLM.Provider = domain.AIProviderAnthropic
	settings.LLM.Model = "claude-3-5-sonnet-latest"
	settings.LLM.APIKey = "sk-ant-test"
	settings.LLM.Timeout = 90 * time.Second
	settings.Pipeline.OutputDir = "pages"
	settings.Pipeline.FAQCount = 10

	err := service.Save(&settings)
	require.NoError(t, err)

	retrieved, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *retrieved)
}

func TestSettingsService_Save_KeepsStoredAPIKey(t *testing.T) {
	store := memory.NewConfigStore(nil)
	_ = store.Set("llm.api_key", "existing")
	service := NewSettingsService(store, nil)

	settings := domain.DefaultSettings()
	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "existing", store.GetString("llm.api_key"))
}

type failingConfigStore struct {
	*memory.ConfigStore
	failOn string
}

func (f *failingConfigStore) Set(key string, value any) error {
	if f.failOn == "" || key == f.failOn {
		return assert.AnError
	}
	return f.ConfigStore.Set(key, value)
}

func TestSettingsService_Save_Error(t *testing.T) {
	store := &failingConfigStore{
		ConfigStore: memory.NewConfigStore(nil),
		failOn:      "pipeline.faq_count",
	}
	service := NewSettingsService(store, nil)
	settings := domain.DefaultSettings()

	err := service.Save(&settings)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "save pipeline.faq_count")
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	tests := []struct {
		name        string
		provider    domain.AIProvider
		model       string
		apiKey      string
		wantModel   string
		wantBaseURL string
	}{
		{"gemini default model", domain.AIProviderGemini, "", "key", "gemini-2.5-flash", ""},
		{"openai explicit model", domain.AIProviderOpenAI, "gpt-4o", "sk-test", "gpt-4o", ""},
		{"ollama local", domain.AIProviderOllama, "llama3.2", "", "llama3.2", "http://localhost:11434"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore(nil)
			service := NewSettingsService(store, nil)

			err := service.SetLLMProvider(tt.provider, tt.model, tt.apiKey)

			require.NoError(t, err)
			settings, _ := service.Get()
			assert.Equal(t, tt.provider, settings.LLM.Provider)
			assert.Equal(t, tt.wantModel, settings.LLM.Model)
			assert.Equal(t, tt.wantBaseURL, settings.LLM.BaseURL)
			assert.Equal(t, tt.apiKey, settings.LLM.APIKey)
		})
	}
}

func TestSettingsService_SetLLMProvider_Invalid(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(nil), nil)

	err := service.SetLLMProvider(domain.AIProvider("cohere"), "", "key")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid LLM provider")
}

func TestSettingsService_SetLLMProvider_RequiresAPIKey(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(nil), nil)

	err := service.SetLLMProvider(domain.AIProviderOpenAI, "", "")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "API key required")
}

func TestSettingsService_SetLLMProvider_ReusesKeyForSameProvider(t *testing.T) {
	store := memory.NewConfigStore(nil)
	_ = store.Set("llm.provider", "gemini")
	_ = store.Set("llm.api_key", "stored")
	service := NewSettingsService(store, nil)

	err := service.SetLLMProvider(domain.AIProviderGemini, "gemini-2.5-pro", "")

	require.NoError(t, err)
	settings, _ := service.Get()
	assert.Equal(t, "gemini-2.5-pro", settings.LLM.Model)
	assert.Equal(t, "stored", settings.LLM.APIKey)
}

func TestSettingsService_SetAPIKey(t *testing.T) {
	store := memory.NewConfigStore(nil)
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetAPIKey("  secret  "))
	assert.Equal(t, "secret", store.GetString("llm.api_key"))

	err := service.SetAPIKey("   ")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(t *testing.T, s *domain.Settings)
	}{
		{"float", "llm.temperature", "0.4", func(t *testing.T, s *domain.Settings) {
			assert.InDelta(t, 0.4, s.LLM.Temperature, 1e-9)
		}},
		{"int", "pipeline.faq_count", "8", func(t *testing.T, s *domain.Settings) {
			assert.Equal(t, 8, s.Pipeline.FAQCount)
		}},
		{"bool", "pipeline.concurrent_pages", "true", func(t *testing.T, s *domain.Settings) {
			assert.True(t, s.Pipeline.ConcurrentPages)
		}},
		{"duration", "pipeline.timeout", "90s", func(t *testing.T, s *domain.Settings) {
			assert.Equal(t, 90*time.Second, s.Pipeline.Timeout)
		}},
		{"provider", "llm.provider", "ollama", func(t *testing.T, s *domain.Settings) {
			assert.Equal(t, domain.AIProviderOllama, s.LLM.Provider)
		}},
		{"string", "pipeline.output_dir", "site/data", func(t *testing.T, s *domain.Settings) {
			assert.Equal(t, "site/data", s.Pipeline.OutputDir)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(nil), nil)

			require.NoError(t, service.Set(tt.key, tt.value))

			settings, err := service.Get()
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "llm.colour", "blue"},
		{"bad int", "pipeline.faq_count", "many"},
		{"bad bool", "pipeline.strict_json", "maybe"},
		{"bad duration", "llm.timeout", "forever"},
		{"negative duration", "llm.timeout", "-5s"},
		{"unknown provider", "llm.provider", "cohere"},
		{"fails validation", "pipeline.faq_count", "2"},
		{"temperature out of range", "llm.temperature", "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore(nil)
			service := NewSettingsService(store, nil)

			err := service.Set(tt.key, tt.value)

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
			assert.NoError(t, service.Validate(), "rejected value must not be kept")
		})
	}
}

func TestSettingsService_Set_RestoresPreviousValue(t *testing.T) {
	store := memory.NewConfigStore(nil)
	_ = store.Set("pipeline.faq_count", int64(6))
	service := NewSettingsService(store, nil)

	err := service.Set("pipeline.faq_count", "1")

	require.Error(t, err)
	settings, _ := service.Get()
	assert.Equal(t, 6, settings.Pipeline.FAQCount)
}

func TestSettingKeys_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for _, k := range SettingKeys() {
		assert.False(t, seen[k.Key], "duplicate key %s", k.Key)
		seen[k.Key] = true
	}
	assert.True(t, seen[KeyLLMAPIKey])
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(nil), nil)

	assert.Equal(t, domain.DefaultSettings(), service.GetDefaults())
}

// Mock AIConfigValidator for testing
type mockAIConfigValidator struct {
	llmErr error
	got    *domain.LLMSettings
}

func (m *mockAIConfigValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.got = cfg
	return m.llmErr
}

func TestSettingsService_ValidateLLMConfig_NilValidator(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(nil), nil)

	// With nil validator, should skip validation (no error)
	assert.NoError(t, service.ValidateLLMConfig())
}

func TestSettingsService_ValidateLLMConfig(t *testing.T) {
	store := memory.NewConfigStore(nil)
	_ = store.Set("llm.provider", "openai")
	validator := &mockAIConfigValidator{}
	service := NewSettingsService(store, validator)

	require.NoError(t, service.ValidateLLMConfig())
	require.NotNil(t, validator.got)
	assert.Equal(t, domain.AIProviderOpenAI, validator.got.Provider)
}

func TestSettingsService_ValidateLLMConfig_Error(t *testing.T) {
	validator := &mockAIConfigValidator{llmErr: assert.AnError}
	service := NewSettingsService(memory.NewConfigStore(nil), validator)

	assert.ErrorIs(t, service.ValidateLLMConfig(), assert.AnError)
}
