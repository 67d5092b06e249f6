package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrorCode classifies HTTP client errors.
type ErrorCode int

const (
	ErrCodeTimeout    ErrorCode = iota
	ErrCodeConnection           // refused, DNS, reset
	ErrCodeAuth                 // 401, 403
	ErrCodeNotFound             // 404
	ErrCodeRateLimit            // 429
	ErrCodeValidation           // other 4xx, or a request that could not be built
	ErrCodeServer               // 5xx
)

var codeNames = [...]string{
	ErrCodeTimeout:    "timeout",
	ErrCodeConnection: "connection",
	ErrCodeAuth:       "auth",
	ErrCodeNotFound:   "not_found",
	ErrCodeRateLimit:  "rate_limit",
	ErrCodeValidation: "validation",
	ErrCodeServer:     "server",
}

func (c ErrorCode) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "unknown"
}

// Error is a classified HTTP client failure.
type Error struct {
	// StatusCode is 0 for connection-level failures.
	StatusCode int
	Code       ErrorCode
	Message    string
	Retryable  bool
	// RetryAfter is the server's Retry-After hint, zero when absent.
	RetryAfter time.Duration
	// Body is the raw error response, kept for diagnostics.
	Body []byte
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message) }
func (e *Error) Unwrap() error { return e.Err }

func transport(code ErrorCode, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Retryable: true, Err: err}
}

func NewTimeoutError(err error) *Error    { return transport(ErrCodeTimeout, err) }
func NewConnectionError(err error) *Error { return transport(ErrCodeConnection, err) }

// NewValidationError is a client-side failure before anything was sent.
func NewValidationError(msg string) *Error {
	return &Error{Code: ErrCodeValidation, Message: msg}
}

func statusError(status int, code ErrorCode, retryable bool, body []byte) *Error {
	msg := "HTTP " + strconv.Itoa(status)
	if upstream := upstreamMessage(body); upstream != "" {
		msg += ": " + upstream
	}
	return &Error{StatusCode: status, Code: code, Message: msg, Retryable: retryable, Body: body}
}

// NewAuthError covers 401 and 403.
func NewAuthError(status int, body []byte) *Error {
	return statusError(status, ErrCodeAuth, false, body)
}

func NewNotFoundError(body []byte) *Error {
	return statusError(http.StatusNotFound, ErrCodeNotFound, false, body)
}

func NewRateLimitError(body []byte) *Error {
	return statusError(http.StatusTooManyRequests, ErrCodeRateLimit, true, body)
}

func NewServerError(status int, body []byte) *Error {
	return statusError(status, ErrCodeServer, true, body)
}

// ClassifyStatusCode maps a status code to an *Error, or nil for 2xx. An
// OpenAI-style error document in body is appended to Message.
func ClassifyStatusCode(status int, body []byte) *Error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return NewAuthError(status, body)
	case status == http.StatusNotFound:
		return NewNotFoundError(body)
	case status == http.StatusTooManyRequests:
		return NewRateLimitError(body)
	case status == http.StatusRequestTimeout:
		return statusError(status, ErrCodeTimeout, true, body)
	case status >= 400 && status < 500:
		return statusError(status, ErrCodeValidation, false, body)
	case status >= 500:
		return NewServerError(status, body)
	}
	return statusError(status, ErrCodeServer, false, body)
}

// parseRetryAfter reads a Retry-After header given in seconds or as an
// HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

// upstreamMessage extracts {"error":{"message":...}}, {"error":"..."} or
// {"message":...} from an error body.
func upstreamMessage(body []byte) string {
	if len(body) == 0 || body[0] != '{' {
		return ""
	}
	var doc struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &doc) != nil {
		return ""
	}
	if len(doc.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(doc.Error, &nested) == nil && nested.Message != "" {
			return strings.TrimSpace(nested.Message)
		}
		var flat string
		if json.Unmarshal(doc.Error, &flat) == nil && flat != "" {
			return strings.TrimSpace(flat)
		}
	}
	return strings.TrimSpace(doc.Message)
}

// As returns the *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func hasCode(err error, code ErrorCode) bool {
	e, ok := As(err)
	return ok && e.Code == code
}

func IsTimeout(err error) bool     { return hasCode(err, ErrCodeTimeout) }
func IsConnection(err error) bool  { return hasCode(err, ErrCodeConnection) }
func IsAuth(err error) bool        { return hasCode(err, ErrCodeAuth) }
func IsNotFound(err error) bool    { return hasCode(err, ErrCodeNotFound) }
func IsRateLimit(err error) bool   { return hasCode(err, ErrCodeRateLimit) }
func IsServerError(err error) bool { return hasCode(err, ErrCodeServer) }
func IsValidation(err error) bool  { return hasCode(err, ErrCodeValidation) }

func IsRetryable(err error) bool {
	e, ok := As(err)
	return ok && e.Retryable
}

// RetryAfterHint feeds a server Retry-After into resilience.RetryConfig.
func RetryAfterHint(err error) (time.Duration, bool) {
	e, ok := As(err)
	if !ok || e.RetryAfter <= 0 {
		return 0, false
	}
	return e.RetryAfter, true
}
