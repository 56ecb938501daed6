package notion

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	nferrors "github.com/mrz1836/notionflow/internal/errors"
)

// APIError is an error response from the Notion API.
//
// It unwraps to the matching sentinel so callers can use errors.Is:
// 404 → ErrNotFound, 401/403 → ErrUnauthorized, 429 → ErrRateLimited,
// anything else → ErrNotionAPI.
type APIError struct {
	Status     int
	Code       string
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("notion api: %s (status %d): %s", e.Code, e.Status, e.Message)
}

// Unwrap maps the HTTP status to a sentinel error.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return nferrors.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return nferrors.ErrUnauthorized
	case http.StatusTooManyRequests:
		return nferrors.ErrRateLimited
	default:
		return nferrors.ErrNotionAPI
	}
}

// parseAPIError builds an APIError from a non-2xx response. The body is the
// Notion error object: {"object":"error","status":404,"code":"...","message":"..."}.
func parseAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		if code := parsed.Get("code").String(); code != "" {
			apiErr.Code = code
		}
		if msg := parsed.Get("message").String(); msg != "" {
			apiErr.Message = msg
		}
	}
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return apiErr
}

// transportError is a failure below HTTP (DNS, connection reset, timeout).
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return "notion transport: " + e.err.Error()
}

func (e *transportError) Unwrap() []error {
	return []error{e.err, nferrors.ErrNotionAPI}
}
