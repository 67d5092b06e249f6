package errors

import (
	"fmt"
	"maps"
)

// AppError is the unified application error type.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	// Diagnostics holds internal text such as tool stderr or upstream
	// bodies. It is logged, never sent to clients.
	Diagnostics string `json:"-"`
	Cause       error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	maps.Copy(e.Details, details)
	return e
}

// WithDetail sets one detail and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	return e.WithDetails(map[string]any{key: value})
}

func (e *AppError) WithDiagnostics(text string) *AppError {
	e.Diagnostics = text
	return e
}

func (e *AppError) WithRetryable(retryable bool) *AppError {
	e.Retryable = retryable
	return e
}

// New builds an AppError whose retryable flag follows the code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// coded builds an AppError with the default status of code.
func coded(code ErrorCode, message string, details map[string]any, cause error) *AppError {
	e := New(code, message, code.HTTPStatus())
	e.Details = details
	e.Cause = cause
	return e
}

func ServiceUnavailable(service string) *AppError {
	return coded(ErrCodeServiceUnavailable,
		fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		map[string]any{"service": service}, nil)
}

func Timeout(operation string) *AppError {
	return coded(ErrCodeTimeout, "The request took too long. Please try again.",
		map[string]any{"operation": operation}, nil)
}

// NotFound omits the id detail when id is empty.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return coded(ErrCodeNotFound, fmt.Sprintf("The requested %s was not found.", resource), details, nil)
}

func InvalidInput(field, reason string) *AppError {
	details := map[string]any{}
	if field != "" {
		details["field"] = field
	}
	return coded(ErrCodeInvalidInput, "Invalid input: "+reason, details, nil)
}

func Validation(message string) *AppError {
	return coded(ErrCodeInvalidInput, message, nil, nil)
}

func MissingField(field string) *AppError {
	return coded(ErrCodeMissingField, "Missing required field: "+field, map[string]any{"field": field}, nil)
}

func InvalidFormat(field, expectedFormat string) *AppError {
	return coded(ErrCodeInvalidFormat,
		fmt.Sprintf("Invalid format for %s. Expected: %s", field, expectedFormat),
		map[string]any{"field": field, "expected_format": expectedFormat}, nil)
}

func Internal(cause error) *AppError {
	return coded(ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.", nil, cause)
}

func ExternalServiceError(service string, cause error) *AppError {
	return coded(ErrCodeExternalService,
		fmt.Sprintf("The %s service encountered an error. Please try again.", service),
		map[string]any{"service": service}, cause)
}

// UploadFailed reports an upload that could not be staged on disk.
func UploadFailed(cause error) *AppError {
	return coded(ErrCodeUploadFailed, "The uploaded file could not be saved.", nil, cause)
}

// ExtractionFailed reports a failed audio extraction. kind separates a
// non-zero ffmpeg exit ("tool_failure") from a local problem such as a
// missing binary ("local_failure").
func ExtractionFailed(kind string, exitCode int, cause error) *AppError {
	return coded(ErrCodeExtractionFailed, "The audio track could not be extracted from the video.",
		map[string]any{"kind": kind, "exit_code": exitCode}, cause)
}

func TranscriptionFailed(cause error) *AppError {
	return coded(ErrCodeTranscriptionFailed, "The transcription service could not process the audio.",
		map[string]any{"service": "transcription"}, cause)
}

func TranslationFailed(cause error) *AppError {
	return coded(ErrCodeTranslationFailed, "The translation service could not translate the subtitles.",
		map[string]any{"service": "translation"}, cause)
}

// StorageError reports a result store failure during operation.
func StorageError(operation string, cause error) *AppError {
	return coded(ErrCodeStorage, "The result could not be stored. Please try again.",
		map[string]any{"operation": operation}, cause)
}
