package jss

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors for common failure modes.
var (
	ErrNoCredentials = errors.New("jss: no credentials configured")
	ErrNoServer      = errors.New("jss: no server configured")
)

// APIError represents a general JSS API error.
type APIError struct {
	StatusCode int    `json:"httpStatus"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jss: API error %d: %s", e.StatusCode, e.Message)
}

// AuthenticationError indicates authentication failure (401/403).
type AuthenticationError struct {
	APIError
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("jss: authentication failed: %s", e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *AuthenticationError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// NotFoundError indicates the requested resource was not found (404).
type NotFoundError struct {
	APIError
	ResourceType string
	ResourceID   string
}

func (e *NotFoundError) Error() string {
	if e.ResourceType != "" && e.ResourceID != "" {
		return fmt.Sprintf("jss: %s not found: %s", e.ResourceType, e.ResourceID)
	}
	return fmt.Sprintf("jss: resource not found: %s", e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *NotFoundError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// ValidationError indicates invalid request data, either rejected locally or by the API (400).
type ValidationError struct {
	APIError
	Field string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("jss: validation error: %s (field: %s)", e.Message, e.Field)
	}
	return fmt.Sprintf("jss: validation error: %s", e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *ValidationError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// ConflictError indicates the API refused a write because of existing state (409),
// most often a duplicate name.
type ConflictError struct {
	APIError
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("jss: conflict: %s", e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *ConflictError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// RateLimitError indicates the API rate limit was exceeded (429).
type RateLimitError struct {
	APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("jss: rate limit exceeded, retry after %s", e.RetryAfter)
	}
	return "jss: rate limit exceeded"
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *RateLimitError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// ServerError indicates an internal server error (5xx).
type ServerError struct {
	APIError
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("jss: server error %d: %s", e.StatusCode, e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *ServerError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// InvalidDataError indicates a successful response whose body does not describe
// the expected resource type.
type InvalidDataError struct {
	ResourceType string
	Message      string
}

func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("jss: invalid %s data: %s", e.ResourceType, e.Message)
}

// HistoryError is returned alongside the result of a successful write when the
// follow-up object history entry could not be recorded.
type HistoryError struct {
	ObjectType int
	ObjectID   int
	Err        error
}

func (e *HistoryError) Error() string {
	return fmt.Sprintf("jss: recording history for object type %d id %d: %v", e.ObjectType, e.ObjectID, e.Err)
}

func (e *HistoryError) Unwrap() error {
	return e.Err
}

// The Classic API reports errors as a small HTML page; the useful text is in the
// paragraphs, e.g. "<p>Error: Duplicate name</p>".
var htmlParagraph = regexp.MustCompile(`(?is)<p>(.*?)</p>`)

// errorMessage extracts a human readable message from an error response body.
func errorMessage(body []byte, base *APIError) {
	if err := json.Unmarshal(body, base); err == nil && base.Message != "" {
		return
	}
	var parts []string
	for _, m := range htmlParagraph.FindAllSubmatch(body, -1) {
		text := strings.TrimSpace(string(m[1]))
		if text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) > 0 {
		base.Message = strings.Join(parts, " ")
		return
	}
	base.Message = strings.TrimSpace(string(body))
}

// parseError converts an HTTP response into the appropriate error type.
func parseError(statusCode int, body []byte, headers http.Header) error {
	base := APIError{StatusCode: statusCode}
	errorMessage(body, &base)
	base.StatusCode = statusCode

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &AuthenticationError{APIError: base}
	case statusCode == http.StatusNotFound:
		return &NotFoundError{APIError: base}
	case statusCode == http.StatusBadRequest:
		return &ValidationError{APIError: base}
	case statusCode == http.StatusConflict:
		return &ConflictError{APIError: base}
	case statusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			APIError:   base,
			RetryAfter: parseRetryAfter(headers.Get("Retry-After")),
		}
	case statusCode >= http.StatusInternalServerError:
		return &ServerError{APIError: base}
	default:
		return &base
	}
}

// parseRetryAfter parses the Retry-After header value.
// It handles both seconds (integer) and HTTP-date formats.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := time.Parse(time.RFC1123, value); err == nil {
		duration := time.Until(t)
		if duration > 0 {
			return duration
		}
	}

	return 0
}

func localValidationError(field, format string, args ...any) error {
	return &ValidationError{
		APIError: APIError{Message: fmt.Sprintf(format, args...)},
		Field:    field,
	}
}
