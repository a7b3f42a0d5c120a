// Package types defines core data types and errors shared across the
// document translator.
package types

import "time"

// Config is the application configuration persisted to disk.
type Config struct {
	Provider        string `json:"provider"`
	OpenAIAPIKey    string `json:"openai_api_key"`
	OpenAIBaseURL   string `json:"openai_base_url"`
	OpenAIModel     string `json:"openai_model"`
	AnthropicAPIKey string `json:"anthropic_api_key"`
	AnthropicModel  string `json:"anthropic_model"`
	GeminiAPIKey    string `json:"gemini_api_key"`
	GeminiModel     string `json:"gemini_model"`
	// SourceLang and TargetLang are BCP 47 tags, e.g. "pt-BR", "en-US".
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	// Batch limits for one translation request.
	BatchMaxItems int `json:"batch_max_items"`
	BatchMaxChars int `json:"batch_max_chars"`
	// Concurrency bounds how many batches are in flight at once.
	Concurrency int `json:"concurrency"`
	// OutputSuffix is appended to the base name of translated files.
	OutputSuffix string `json:"output_suffix"`
	GlossaryPath string `json:"glossary_path"`
	// ExtraInstructions are appended to the translation prompt verbatim.
	ExtraInstructions string `json:"extra_instructions"`
	CacheEnabled      bool   `json:"cache_enabled"`
	CachePath         string `json:"cache_path"`
}

// TranslationItem is one unit of translatable text with a stable anchor id.
// The id encodes where the text came from (page/block, slide/shape/paragraph,
// sheet/cell) so translated text can be written back in place.
type TranslationItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ProgressFunc reports progress for a labeled stage. Implementations are
// best effort: total may be zero and calls must never fail.
type ProgressFunc func(label string, done, total int)

// ProcessPhase enumerates pipeline stages for status reporting.
type ProcessPhase string

const (
	PhaseIdle        ProcessPhase = "idle"
	PhaseExtracting  ProcessPhase = "extracting"
	PhaseTranslating ProcessPhase = "translating"
	PhaseWriting     ProcessPhase = "writing"
	PhaseConverting  ProcessPhase = "converting"
	PhaseComplete    ProcessPhase = "complete"
	PhaseError       ProcessPhase = "error"
)

// FileResult is the outcome of processing a single input file.
type FileResult struct {
	Input    string        `json:"input"`
	Output   string        `json:"output,omitempty"`
	Items    int           `json:"items"`
	Cached   int           `json:"cached"`
	Warning  string        `json:"warning,omitempty"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Failed reports whether the file could not be processed at all.
func (r FileResult) Failed() bool { return r.Err != nil }

// ErrorCode classifies application errors.
type ErrorCode string

const (
	ErrNetwork           ErrorCode = "NETWORK_ERROR"
	ErrFileNotFound      ErrorCode = "FILE_NOT_FOUND"
	ErrInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrAPICall           ErrorCode = "API_CALL_ERROR"
	ErrAPIRateLimit      ErrorCode = "API_RATE_LIMIT"
	ErrBadResponse       ErrorCode = "BAD_RESPONSE"
	ErrDocument          ErrorCode = "DOCUMENT_ERROR"
	ErrConvert           ErrorCode = "CONVERT_ERROR"
	ErrConfig            ErrorCode = "CONFIG_ERROR"
	ErrInternal          ErrorCode = "INTERNAL_ERROR"
	ErrTranslation       ErrorCode = "TRANSLATION_ERROR"
)

// AppError is the application error type carrying a code and optional cause.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and
// optional cause.
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details.
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}
