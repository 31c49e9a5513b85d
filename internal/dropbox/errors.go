package dropbox

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"zappavault/internal/services"
)

// APIError is a non-2xx response from the Dropbox API. It unwraps to the
// services marker that classifies it.
type APIError struct {
	Endpoint   string
	StatusCode int
	Summary    string
	Tag        string
	PathTag    string
	Body       string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	detail := e.Summary
	if detail == "" {
		detail = e.Body
	}
	return fmt.Sprintf("dropbox %s: http %d: %s", e.Endpoint, e.StatusCode, detail)
}

// Unwrap returns the marker error for errors.Is checks.
func (e *APIError) Unwrap() error {
	switch {
	case e.NotFound():
		return services.ErrNotFound
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusBadRequest:
		return services.ErrConfiguration
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode >= http.StatusInternalServerError:
		return services.ErrTransient
	default:
		return services.ErrExternal
	}
}

// NotFound reports whether the API said the path does not exist.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusConflict && e.PathTag == "not_found"
}

// Conflict reports a 409 endpoint-specific error.
func (e *APIError) Conflict() bool {
	return e.StatusCode == http.StatusConflict
}

type errorEnvelope struct {
	Summary string `json:"error_summary"`
	Error   struct {
		Tag  string `json:".tag"`
		Path struct {
			Tag string `json:".tag"`
		} `json:"path"`
	} `json:"error"`
}

func newAPIError(endpoint string, status int, body []byte, retryAfter time.Duration) *APIError {
	apiErr := &APIError{
		Endpoint:   endpoint,
		StatusCode: status,
		Body:       snippet(body),
		RetryAfter: retryAfter,
	}
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Summary = envelope.Summary
		apiErr.Tag = envelope.Error.Tag
		apiErr.PathTag = envelope.Error.Path.Tag
	}
	return apiErr
}
