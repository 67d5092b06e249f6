package errors

import "net/http"

// ErrorCode is a machine-readable error code.
type ErrorCode string

const (
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"

	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField  ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"

	// Pipeline step failures. Each one ends a run in the failed state.
	ErrCodeUploadFailed        ErrorCode = "UPLOAD_FAILED"
	ErrCodeExtractionFailed    ErrorCode = "EXTRACTION_FAILED"
	ErrCodeTranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
	ErrCodeTranslationFailed   ErrorCode = "TRANSLATION_FAILED"

	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeStorage         ErrorCode = "STORAGE_ERROR"
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

type codeInfo struct {
	status    int
	retryable bool
}

var codeTable = map[ErrorCode]codeInfo{
	ErrCodeServiceUnavailable:  {http.StatusServiceUnavailable, true},
	ErrCodeTimeout:             {http.StatusGatewayTimeout, true},
	ErrCodeRateLimited:         {http.StatusTooManyRequests, true},
	ErrCodeNotFound:            {http.StatusNotFound, false},
	ErrCodeInvalidInput:        {http.StatusBadRequest, false},
	ErrCodeMissingField:        {http.StatusBadRequest, false},
	ErrCodeInvalidFormat:       {http.StatusBadRequest, false},
	ErrCodeUploadFailed:        {http.StatusInternalServerError, false},
	ErrCodeExtractionFailed:    {http.StatusUnprocessableEntity, false},
	ErrCodeTranscriptionFailed: {http.StatusBadGateway, true},
	ErrCodeTranslationFailed:   {http.StatusBadGateway, true},
	ErrCodeInternal:            {http.StatusInternalServerError, false},
	ErrCodeStorage:             {http.StatusInternalServerError, true},
	ErrCodeExternalService:     {http.StatusBadGateway, true},
}

// IsRetryableCode reports whether failures with code may succeed on retry.
func IsRetryableCode(code ErrorCode) bool {
	return codeTable[code].retryable
}

// HTTPStatus is the default status for code. Unknown codes map to 500.
func (code ErrorCode) HTTPStatus() int {
	if info, ok := codeTable[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}
