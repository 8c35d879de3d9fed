package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or template type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Pipeline error kinds. Every typed error below matches exactly one.

	// ErrValidation indicates a malformed or missing mandatory input field.
	ErrValidation = errors.New("validation error")

	// ErrGeneration indicates the text-generation service failed or returned unusable content.
	ErrGeneration = errors.New("generation error")

	// ErrTemplate indicates a template definition or render failure.
	ErrTemplate = errors.New("template error")

	// ErrOutput indicates the output documents could not be written.
	ErrOutput = errors.New("output error")
)

// ErrorKind names the category of a pipeline failure.
type ErrorKind string

// Error kinds.
const (
	KindValidation ErrorKind = "validation"
	KindGeneration ErrorKind = "generation"
	KindTemplate   ErrorKind = "template"
	KindOutput     ErrorKind = "output"
	KindInternal   ErrorKind = "internal"
)

// Hint returns the remediation hint shown to users.
func (k ErrorKind) Hint() string {
	switch k {
	case KindValidation:
		return "fix the input file"
	case KindGeneration:
		return "check API key, model and network"
	case KindTemplate:
		return "template definitions are out of sync with the pipeline"
	case KindOutput:
		return "check the output directory is writable"
	default:
		return "re-run with --verbose for details"
	}
}

// KindOf classifies err by the sentinel it matches.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrGeneration):
		return KindGeneration
	case errors.Is(err, ErrTemplate):
		return KindTemplate
	case errors.Is(err, ErrOutput):
		return KindOutput
	default:
		return KindInternal
	}
}

// ValidationError names the input field that is missing or malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// GenerationError reports a text-generation stage that exhausted its attempts.
type GenerationError struct {
	Stage    string
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	msg := "generation error: " + e.Stage + " failed"
	if e.Attempts > 0 {
		msg += fmt.Sprintf(" after %d attempt(s)", e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is matches ErrGeneration.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}

// TemplateError reports an invalid definition or a render that lacked a required block.
type TemplateError struct {
	Template string
	Field    string
	Reason   string
}

func (e *TemplateError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("template error: %s: %s", e.Template, e.Reason)
	}
	return fmt.Sprintf("template error: %s.%s: %s", e.Template, e.Field, e.Reason)
}

// Is matches ErrTemplate.
func (e *TemplateError) Is(target error) bool {
	return target == ErrTemplate
}

// StageError is the single user-facing failure produced by the orchestrator.
type StageError struct {
	Stage int
	Name  string
	Kind  ErrorKind
	Err   error
}

// NewStageError wraps err with the stage it occurred in.
func NewStageError(stage int, err error) *StageError {
	return &StageError{
		Stage: stage,
		Name:  StageName(stage),
		Kind:  KindOf(err),
		Err:   err,
	}
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (%s) failed: %v", e.Stage, e.Name, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Hint returns the remediation hint for the failure kind.
func (e *StageError) Hint() string {
	return e.Kind.Hint()
}

// MarshalJSON encodes the stage error for run reports.
func (e *StageError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		Stage   int       `json:"stage"`
		Name    string    `json:"name"`
		Kind    ErrorKind `json:"kind"`
		Message string    `json:"message"`
		Hint    string    `json:"hint"`
	}{e.Stage, e.Name, e.Kind, msg, e.Hint()})
}

// UnmarshalJSON restores a stage error from a stored run report.
// The underlying error is restored as an opaque message.
func (e *StageError) UnmarshalJSON(data []byte) error {
	var raw struct {
		Stage   int       `json:"stage"`
		Name    string    `json:"name"`
		Kind    ErrorKind `json:"kind"`
		Message string    `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Stage = raw.Stage
	e.Name = raw.Name
	e.Kind = raw.Kind
	if raw.Message != "" {
		e.Err = errors.New(raw.Message)
	}
	return nil
}
