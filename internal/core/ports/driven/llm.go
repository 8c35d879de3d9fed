package driven

import "context"

// LLMService provides text generation for the pipeline's generation stages.
// The core treats it as untrusted: every response is parsed and validated
// before use.
//
// Implementations may include:
//   - Google Gemini
//   - OpenAI (GPT-4o family)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Generate submits a prompt and returns the raw response text.
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateRequest configures a single generation call.
type GenerateRequest struct {
	// Prompt is the user prompt.
	Prompt string

	// System is an optional system instruction.
	System string

	// Schema describes the expected JSON response. Providers that support
	// structured output pass it on; others rely on the prompt.
	Schema *Schema

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// StrictJSON asks the provider for a bare JSON response.
	StrictJSON bool
}

// Schema types.
const (
	SchemaObject  = "object"
	SchemaArray   = "array"
	SchemaString  = "string"
	SchemaNumber  = "number"
	SchemaBoolean = "boolean"
)

// Schema is a provider-neutral subset of JSON Schema.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

// ObjectSchema builds an object schema whose properties are all required.
func ObjectSchema(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: SchemaObject, Properties: props, Required: required}
}

// ArraySchema builds an array schema.
func ArraySchema(items *Schema) *Schema {
	return &Schema{Type: SchemaArray, Items: items}
}

// StringSchema builds a string schema.
func StringSchema(enum ...string) *Schema {
	return &Schema{Type: SchemaString, Enum: enum}
}

// NumberSchema builds a number schema.
func NumberSchema() *Schema {
	return &Schema{Type: SchemaNumber}
}
