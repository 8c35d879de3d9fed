package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driven"
	"github.com/custodia-labs/pagegen/internal/logger"
)

// maxAttempts is the first call plus one stricter retry.
const maxAttempts = 2

// defaultStrictSuffix is used when the prompt store has no strict suffix.
const defaultStrictSuffix = "Your previous answer could not be used. Respond with ONLY the JSON object described above. " +
	"No markdown, no code fences, no commentary."

var (
	errNotJSON       = errors.New("response is not valid JSON")
	errNotBareJSON   = errors.New("response is not bare JSON")
	errEmptyResponse = errors.New("empty response")
)

// GenerationConfig holds the shared settings for every LLM-calling stage.
type GenerationConfig struct {
	// Timeout bounds each call. Zero means no per-call limit.
	Timeout time.Duration

	// MaxTokens caps each response.
	MaxTokens int

	// StrictJSON asks for bare JSON and rejects anything else.
	StrictJSON bool
}

// Generator runs LLM calls under the unified retry policy: one call with a
// per-call timeout, then one retry with a stricter instruction on transport
// error or schema violation, then a *domain.GenerationError.
type Generator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	cfg     GenerationConfig
}

// NewGenerator creates a generator. llm may be nil; every call then fails
// with a GenerationError wrapping domain.ErrLLMUnavailable.
func NewGenerator(llm driven.LLMService, prompts driven.PromptStore, cfg GenerationConfig) *Generator {
	return &Generator{llm: llm, prompts: prompts, cfg: cfg}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (g *Generator) SetPromptStore(store driven.PromptStore) {
	g.prompts = store
}

// ModelName returns the model in use, or "none".
func (g *Generator) ModelName() string {
	if g.llm == nil {
		return "none"
	}
	return g.llm.ModelName()
}

// Available reports whether an LLM is configured.
func (g *Generator) Available() bool {
	return g.llm != nil
}

// generationCall describes one LLM-backed step.
type generationCall struct {
	stage       string
	prompt      string
	data        any
	schema      *driven.Schema
	temperature float64
}

// generateJSON renders the named prompt, calls the LLM and decodes the
// response into a fresh T. validate rejects decoded values that violate the
// expected schema; a rejection is retried like a transport error.
func generateJSON[T any](ctx context.Context, g *Generator, call generationCall, validate func(*T) error) (T, error) {
	var zero T
	if g.llm == nil {
		return zero, &domain.GenerationError{Stage: call.stage, Err: domain.ErrLLMUnavailable}
	}

	prompt, err := g.render(call.prompt, call.data)
	if err != nil {
		return zero, &domain.GenerationError{Stage: call.stage, Err: err}
	}

	var lastErr error
	attempts := 0
	for attempts < maxAttempts {
		attempts++
		text := prompt
		if attempts > 1 {
			text = prompt + "\n\n" + g.strictSuffix()
		}

		var out T
		lastErr = g.attempt(ctx, call, text, &out)
		if lastErr == nil && validate != nil {
			lastErr = validate(&out)
		}
		if lastErr == nil {
			logger.Debug("%s: succeeded on attempt %d", call.stage, attempts)
			return out, nil
		}
		logger.Warn("%s: attempt %d failed: %v", call.stage, attempts, lastErr)
		if ctx.Err() != nil {
			break
		}
	}
	return zero, &domain.GenerationError{Stage: call.stage, Attempts: attempts, Err: lastErr}
}

func (g *Generator) attempt(ctx context.Context, call generationCall, prompt string, out any) error {
	callCtx := ctx
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := g.llm.Generate(callCtx, driven.GenerateRequest{
		Prompt:      prompt,
		Schema:      call.schema,
		Temperature: call.temperature,
		MaxTokens:   g.cfg.MaxTokens,
		StrictJSON:  g.cfg.StrictJSON,
	})
	logger.Debug("%s: LLM call took %v", call.stage, time.Since(start))
	if err != nil {
		return err
	}

	data, err := ExtractJSON(text, g.cfg.StrictJSON)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", errNotJSON, err)
	}
	return nil
}

// render executes the named prompt template with data.
func (g *Generator) render(name string, data any) (string, error) {
	if g.prompts == nil {
		return "", fmt.Errorf("%w: prompt store not configured", domain.ErrNotFound)
	}
	text, err := g.prompts.Load(name)
	if err != nil {
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse prompt %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", name, err)
	}
	return buf.String(), nil
}

func (g *Generator) strictSuffix() string {
	if g.prompts == nil {
		return defaultStrictSuffix
	}
	s, err := g.prompts.Load(driven.PromptStrictSuffix)
	if err != nil || strings.TrimSpace(s) == "" {
		return defaultStrictSuffix
	}
	return s
}

// ExtractJSON returns the JSON payload of an LLM response.
//
// In strict mode the response must be a bare JSON object or array. Otherwise
// markdown code fences are stripped and, failing that, the outermost object
// embedded in surrounding prose is used.
func ExtractJSON(text string, strict bool) ([]byte, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, errEmptyResponse
	}

	if strict {
		if (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid([]byte(trimmed)) {
			return []byte(trimmed), nil
		}
		return nil, errNotBareJSON
	}

	if json.Valid([]byte(trimmed)) {
		return []byte(trimmed), nil
	}
	if unfenced := stripFences(trimmed); json.Valid([]byte(unfenced)) {
		return []byte(unfenced), nil
	}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		if candidate := trimmed[start : end+1]; json.Valid([]byte(candidate)) {
			return []byte(candidate), nil
		}
	}
	return nil, errNotJSON
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
