package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driven"
	"github.com/custodia-labs/pagegen/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyLLMProvider              = "llm.provider"
	KeyLLMModel                 = "llm.model"
	KeyLLMBaseURL               = "llm.base_url"
	KeyLLMAPIKey                = "llm.api_key"
	KeyLLMTemperature           = "llm.temperature"
	KeyLLMComparisonTemperature = "llm.comparison_temperature"
	KeyLLMMaxTokens             = "llm.max_tokens"
	KeyLLMTimeout               = "llm.timeout"
	KeyLLMRequestsPerSecond     = "llm.requests_per_second"
	KeyLLMEnhancePages          = "llm.enhance_pages"
	KeyOutputDir                = "pipeline.output_dir"
	KeyStrictJSON               = "pipeline.strict_json"
	KeyConcurrentPages          = "pipeline.concurrent_pages"
	KeyFAQCount                 = "pipeline.faq_count"
	KeyMinQuestions             = "pipeline.min_questions"
	KeyPipelineTimeout          = "pipeline.timeout"
	KeyTemplatesDir             = "pipeline.templates_dir"
	KeyPromptsDir               = "pipeline.prompts_dir"
	KeyHistoryEnabled           = "history.enabled"
	KeyHistoryDataDir           = "history.data_dir"
	KeyVerbose                  = "verbose"
)

// SettingKind is the value type of a config key.
type SettingKind string

// Setting kinds.
const (
	SettingString   SettingKind = "string"
	SettingInt      SettingKind = "int"
	SettingFloat    SettingKind = "float"
	SettingBool     SettingKind = "bool"
	SettingDuration SettingKind = "duration"
)

// SettingKey describes one settable config key.
type SettingKey struct {
	Key    string
	Kind   SettingKind
	Secret bool
}

// SettingKeys returns every config key Set accepts, in display order.
func SettingKeys() []SettingKey {
	return []SettingKey{
		{Key: KeyLLMProvider, Kind: SettingString},
		{Key: KeyLLMModel, Kind: SettingString},
		{Key: KeyLLMBaseURL, Kind: SettingString},
		{Key: KeyLLMAPIKey, Kind: SettingString, Secret: true},
		{Key: KeyLLMTemperature, Kind: SettingFloat},
		{Key: KeyLLMComparisonTemperature, Kind: SettingFloat},
		{Key: KeyLLMMaxTokens, Kind: SettingInt},
		{Key: KeyLLMTimeout, Kind: SettingDuration},
		{Key: KeyLLMRequestsPerSecond, Kind: SettingFloat},
		{Key: KeyLLMEnhancePages, Kind: SettingBool},
		{Key: KeyOutputDir, Kind: SettingString},
		{Key: KeyStrictJSON, Kind: SettingBool},
		{Key: KeyConcurrentPages, Kind: SettingBool},
		{Key: KeyFAQCount, Kind: SettingInt},
		{Key: KeyMinQuestions, Kind: SettingInt},
		{Key: KeyPipelineTimeout, Kind: SettingDuration},
		{Key: KeyTemplatesDir, Kind: SettingString},
		{Key: KeyPromptsDir, Kind: SettingString},
		{Key: KeyHistoryEnabled, Kind: SettingBool},
		{Key: KeyHistoryDataDir, Kind: SettingString},
		{Key: KeyVerbose, Kind: SettingBool},
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
// Values that are missing or cannot be read fall back to the defaults.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	provider := s.getProvider(KeyLLMProvider, defaults.LLM.Provider)
	model := s.configStore.GetString(KeyLLMModel)
	if model == "" {
		model = provider.DefaultModel()
	}

	settings := &domain.Settings{
		LLM: domain.LLMSettings{
			Provider:              provider,
			Model:                 model,
			BaseURL:               s.configStore.GetString(KeyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:                s.configStore.GetString(KeyLLMAPIKey),
			Temperature:           s.getFloat(KeyLLMTemperature, defaults.LLM.Temperature),
			ComparisonTemperature: s.getFloat(KeyLLMComparisonTemperature, defaults.LLM.ComparisonTemperature),
			MaxTokens:             s.getInt(KeyLLMMaxTokens, defaults.LLM.MaxTokens),
			Timeout:               s.getDuration(KeyLLMTimeout, defaults.LLM.Timeout),
			RequestsPerSecond:     s.getFloat(KeyLLMRequestsPerSecond, defaults.LLM.RequestsPerSecond),
			EnhancePages:          s.getBool(KeyLLMEnhancePages, defaults.LLM.EnhancePages),
		},
		Pipeline: domain.PipelineSettings{
			OutputDir:       s.getString(KeyOutputDir, defaults.Pipeline.OutputDir),
			StrictJSON:      s.getBool(KeyStrictJSON, defaults.Pipeline.StrictJSON),
			ConcurrentPages: s.getBool(KeyConcurrentPages, defaults.Pipeline.ConcurrentPages),
			FAQCount:        s.getInt(KeyFAQCount, defaults.Pipeline.FAQCount),
			MinQuestions:    s.getInt(KeyMinQuestions, defaults.Pipeline.MinQuestions),
			Timeout:         s.getDuration(KeyPipelineTimeout, defaults.Pipeline.Timeout),
			TemplatesDir:    s.configStore.GetString(KeyTemplatesDir),
			PromptsDir:      s.configStore.GetString(KeyPromptsDir),
		},
		History: domain.HistorySettings{
			Enabled: s.getBool(KeyHistoryEnabled, defaults.History.Enabled),
			DataDir: s.configStore.GetString(KeyHistoryDataDir),
		},
		Verbose: s.getBool(KeyVerbose, defaults.Verbose),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyLLMProvider, settings.LLM.Provider.String()},
		{KeyLLMModel, settings.LLM.Model},
		{KeyLLMBaseURL, settings.LLM.BaseURL},
		{KeyLLMTemperature, settings.LLM.Temperature},
		{KeyLLMComparisonTemperature, settings.LLM.ComparisonTemperature},
		{KeyLLMMaxTokens, int64(settings.LLM.MaxTokens)},
		{KeyLLMTimeout, settings.LLM.Timeout.String()},
		{KeyLLMRequestsPerSecond, settings.LLM.RequestsPerSecond},
		{KeyLLMEnhancePages, settings.LLM.EnhancePages},
		{KeyOutputDir, settings.Pipeline.OutputDir},
		{KeyStrictJSON, settings.Pipeline.StrictJSON},
		{KeyConcurrentPages, settings.Pipeline.ConcurrentPages},
		{KeyFAQCount, int64(settings.Pipeline.FAQCount)},
		{KeyMinQuestions, int64(settings.Pipeline.MinQuestions)},
		{KeyPipelineTimeout, settings.Pipeline.Timeout.String()},
		{KeyTemplatesDir, settings.Pipeline.TemplatesDir},
		{KeyPromptsDir, settings.Pipeline.PromptsDir},
		{KeyHistoryEnabled, settings.History.Enabled},
		{KeyHistoryDataDir, settings.History.DataDir},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(KeyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", KeyLLMAPIKey, err)
		}
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	// Keep a stored key when switching model only
	if apiKey == "" && settings.LLM.Provider == provider {
		apiKey = settings.LLM.APIKey
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings.LLM.Provider = provider
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = provider.DefaultModel()
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetAPIKey stores the API key for the configured provider.
func (s *SettingsService) SetAPIKey(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("%w: API key must not be empty", domain.ErrInvalidInput)
	}
	return s.configStore.Set(KeyLLMAPIKey, apiKey)
}

// Set stores a single setting by its dotted key. The value is parsed
// according to the key's kind and the result must still validate.
func (s *SettingsService) Set(key, value string) error {
	var spec *SettingKey
	for _, k := range SettingKeys() {
		if k.Key == key {
			spec = &k
			break
		}
	}
	if spec == nil {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(spec.Kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if key == KeyLLMProvider && !domain.AIProvider(value).IsValid() {
		return fmt.Errorf("%w: unknown llm provider %q", domain.ErrInvalidInput, value)
	}

	previous, existed := s.configStore.Get(key)
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	if err := s.Validate(); err != nil {
		if existed {
			_ = s.configStore.Set(key, previous)
		} else {
			_ = s.configStore.Set(key, "")
		}
		return err
	}
	return nil
}

// Validate checks if current settings are valid.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// ConfigPath returns where settings are persisted.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

func parseSetting(kind SettingKind, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch kind {
	case SettingInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", value)
		}
		return n, nil
	case SettingFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("not a number: %q", value)
		}
		return f, nil
	case SettingBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("not a boolean: %q", value)
		}
		return b, nil
	case SettingDuration:
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("not a duration: %q", value)
		}
		return d.String(), nil
	default:
		return value, nil
	}
}

// Helper methods for reading config with defaults. Values may arrive typed
// from TOML or as strings from the environment.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case string:
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	case int64:
		// Bare integers are seconds
		return time.Duration(v) * time.Second
	case int:
		return time.Duration(v) * time.Second
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(strings.ToLower(val))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
