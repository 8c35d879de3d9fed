package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrValidation", ErrValidation},
		{"ErrGeneration", ErrGeneration},
		{"ErrTemplate", ErrTemplate},
		{"ErrOutput", ErrOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "product_name", Reason: "is required"}

	assert.Equal(t, "validation error: product_name: is required", err.Error())
	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrGeneration))

	wrapped := fmt.Errorf("parse: %w", err)
	var ve *ValidationError
	require.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, "product_name", ve.Field)
}

func TestGenerationError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &GenerationError{Stage: "questions", Attempts: 2, Err: cause}

	assert.Contains(t, err.Error(), "questions failed after 2 attempt(s)")
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, errors.Is(err, ErrGeneration))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrTemplate))
}

func TestGenerationError_NoCause(t *testing.T) {
	err := &GenerationError{Stage: "faq", Attempts: 1}
	assert.Equal(t, "generation error: faq failed after 1 attempt(s)", err.Error())
}

func TestTemplateError(t *testing.T) {
	tests := []struct {
		name     string
		err      *TemplateError
		expected string
	}{
		{
			name:     "with field",
			err:      &TemplateError{Template: "faq", Field: "faqs", Reason: "unknown source"},
			expected: "template error: faq.faqs: unknown source",
		},
		{
			name:     "without field",
			err:      &TemplateError{Template: "product", Reason: "missing required block safety"},
			expected: "template error: product: missing required block safety",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
			assert.True(t, errors.Is(tt.err, ErrTemplate))
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{"nil", nil, ""},
		{"validation", &ValidationError{Field: "x"}, KindValidation},
		{"generation", &GenerationError{Stage: "x"}, KindGeneration},
		{"template", &TemplateError{Template: "x"}, KindTemplate},
		{"output", fmt.Errorf("%w: disk full", ErrOutput), KindOutput},
		{"wrapped validation", fmt.Errorf("ctx: %w", &ValidationError{}), KindValidation},
		{"other", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestErrorKind_Hint(t *testing.T) {
	assert.Equal(t, "fix the input file", KindValidation.Hint())
	assert.Equal(t, "check API key, model and network", KindGeneration.Hint())
	assert.Equal(t, "template definitions are out of sync with the pipeline", KindTemplate.Hint())
	assert.Equal(t, "check the output directory is writable", KindOutput.Hint())
	assert.NotEmpty(t, KindInternal.Hint())
}

func TestStageError(t *testing.T) {
	cause := &GenerationError{Stage: "questions", Attempts: 2, Err: errors.New("unreachable")}
	err := NewStageError(StageQuestionGenerator, cause)

	assert.Equal(t, 2, err.Stage)
	assert.Equal(t, "QuestionGenerator", err.Name)
	assert.Equal(t, KindGeneration, err.Kind)
	assert.Equal(t, "check API key, model and network", err.Hint())
	assert.Contains(t, err.Error(), "stage 2 (QuestionGenerator) failed")
	assert.True(t, errors.Is(err, ErrGeneration))

	var ge *GenerationError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, 2, ge.Attempts)
}

func TestStageError_JSON(t *testing.T) {
	err := NewStageError(StageProductParser, &ValidationError{Field: "product_name", Reason: "is required"})

	data, mErr := json.Marshal(err)
	require.NoError(t, mErr)
	assert.JSONEq(t, `{
		"stage": 1,
		"name": "ProductParser",
		"kind": "validation",
		"message": "validation error: product_name: is required",
		"hint": "fix the input file"
	}`, string(data))

	var restored StageError
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, 1, restored.Stage)
	assert.Equal(t, KindValidation, restored.Kind)
	assert.Equal(t, "validation error: product_name: is required", restored.Err.Error())
}
