package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies a text-generation service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// AIProviders returns every provider.
func AIProviders() []AIProvider {
	return []AIProvider{AIProviderGemini, AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama}
}

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini || p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// DefaultModel returns the model used when none is configured.
func (p AIProvider) DefaultModel() string {
	switch p {
	case AIProviderGemini:
		return "gemini-2.5-flash"
	case AIProviderOpenAI:
		return "gpt-4o-mini"
	case AIProviderAnthropic:
		return "claude-3-5-haiku-latest"
	case AIProviderOllama:
		return "llama3.2"
	default:
		return ""
	}
}

// APIKeyEnv returns the conventional environment variable holding this
// provider's API key, or "" for providers that need none.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderGemini:
		return "GEMINI_API_KEY"
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama, or a compatible proxy).
	BaseURL string

	// APIKey is the API key (for Gemini/OpenAI/Anthropic).
	APIKey string

	// Temperature is the sampling temperature for question and page generation.
	Temperature float64

	// ComparisonTemperature is used when synthesising the comparison product.
	ComparisonTemperature float64

	// MaxTokens caps the response length.
	MaxTokens int

	// Timeout bounds a single generation call.
	Timeout time.Duration

	// RequestsPerSecond limits outgoing calls. Zero disables limiting.
	RequestsPerSecond float64

	// EnhancePages lets the FAQ and product agents call the LLM.
	// When false they use deterministic content only.
	EnhancePages bool
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ModelOrDefault returns the configured model or the provider default.
func (l LLMSettings) ModelOrDefault() string {
	if l.Model != "" {
		return l.Model
	}
	return l.Provider.DefaultModel()
}

// PipelineSettings holds pipeline behaviour configuration.
type PipelineSettings struct {
	// OutputDir is where the three documents are written.
	OutputDir string

	// StrictJSON requires generation responses to be bare JSON.
	StrictJSON bool

	// ConcurrentPages runs the three page agents in parallel.
	ConcurrentPages bool

	// FAQCount is the number of FAQ entries to produce. Never below MinFAQItems.
	FAQCount int

	// MinQuestions is the question-set size. Never below MinQuestions.
	MinQuestions int

	// Timeout bounds a whole run. Zero means no limit.
	Timeout time.Duration

	// TemplatesDir optionally overrides the embedded template definitions.
	TemplatesDir string

	// PromptsDir holds user-editable prompt templates.
	PromptsDir string
}

// MinFAQItems is the smallest FAQ the pipeline will produce.
const MinFAQItems = 5

// MaxQuestions is the largest question set the fallback bank can guarantee.
const MaxQuestions = 25

// HistorySettings controls run history persistence.
type HistorySettings struct {
	// Enabled turns run history on.
	Enabled bool

	// DataDir holds the history database.
	DataDir string
}

// Settings holds all pagegen configuration. Read once at startup.
type Settings struct {
	LLM      LLMSettings
	Pipeline PipelineSettings
	History  HistorySettings
	Verbose  bool
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		LLM: LLMSettings{
			Provider:              AIProviderGemini,
			Model:                 AIProviderGemini.DefaultModel(),
			Temperature:           0.3,
			ComparisonTemperature: 0.5,
			MaxTokens:             4096,
			Timeout:               60 * time.Second,
			RequestsPerSecond:     2,
			EnhancePages:          true,
		},
		Pipeline: PipelineSettings{
			OutputDir:    "output",
			StrictJSON:   false,
			FAQCount:     7,
			MinQuestions: MinQuestions,
			Timeout:      5 * time.Minute,
		},
		History: HistorySettings{
			Enabled: true,
		},
	}
}

// Validate checks settings for values the pipeline cannot run with.
func (s Settings) Validate() error {
	if !s.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: unknown llm provider %q", ErrInvalidInput, s.LLM.Provider)
	}
	if s.LLM.Temperature < 0 || s.LLM.Temperature > 2 {
		return fmt.Errorf("%w: llm temperature must be between 0 and 2", ErrInvalidInput)
	}
	if s.LLM.MaxTokens < 0 {
		return fmt.Errorf("%w: llm max tokens must not be negative", ErrInvalidInput)
	}
	if s.Pipeline.OutputDir == "" {
		return fmt.Errorf("%w: output directory is required", ErrInvalidInput)
	}
	if s.Pipeline.FAQCount < MinFAQItems {
		return fmt.Errorf("%w: faq count must be at least %d", ErrInvalidInput, MinFAQItems)
	}
	if s.Pipeline.MinQuestions < MinQuestions {
		return fmt.Errorf("%w: min questions must be at least %d", ErrInvalidInput, MinQuestions)
	}
	if s.Pipeline.MinQuestions > MaxQuestions {
		return fmt.Errorf("%w: min questions must be at most %d", ErrInvalidInput, MaxQuestions)
	}
	if s.LLM.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: llm requests per second must not be negative", ErrInvalidInput)
	}
	return nil
}
