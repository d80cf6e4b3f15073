package domain

import (
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

	// ErrUnknownManufacturer indicates error-code extraction was asked to
	// run without a manufacturer-specific rule set. Generic fallback
	// patterns are deliberately disallowed for error codes because they
	// collide with part numbers and other numeric tokens, so this stage
	// fails instead of guessing.
	ErrUnknownManufacturer = errors.New("unknown manufacturer")

	// ErrNoTextExtracted indicates neither backend nor OCR produced any
	// text for the whole document. This is the only fatal pipeline error.
	ErrNoTextExtracted = errors.New("no text extracted from document")

	// ErrLLMUnavailable indicates the local inference service is not
	// configured. Supplemental extraction is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Chunks are persisted without vectors.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// ConfigurationError indicates a rule-set file is missing or malformed.
// Extractors degrade to an empty rule set and log it, except for error
// codes where an empty rule set surfaces as ErrUnknownManufacturer.
type ConfigurationError struct {
	// Path identifies the offending configuration source.
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ValidationIssue records a non-fatal constraint violation collected
// during a run. Issues with SeverityError exclude the entity from the
// results; lower severities keep it.
type ValidationIssue struct {
	// Stage names the pipeline stage that raised the issue.
	Stage string

	// Severity is one of "error", "warning" or "info".
	Severity string

	// Message describes the violated constraint.
	Message string
}

// Validation issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

func (v ValidationIssue) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.Severity, v.Stage, v.Message)
}
