package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the dashboard.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "trilemma: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	fmt.Fprintf(&b, " [request_id=%s]", e.RequestID)
	return b.String()
}

// IsNotFound is true for a selection the dataset has no row for.
func (e *APIError) IsNotFound() bool { return e.StatusCode == http.StatusNotFound }

func (e *APIError) IsRateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }

func (e *APIError) IsServerError() bool { return e.StatusCode/100 == 5 }

// errorBody mirrors the server's {"error":{...}} envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	} `json:"error"`
}

// parseAPIError prefers the envelope, then the raw body, then the status
// text.  The server's echoed X-Request-ID wins over the one we sent.
func parseAPIError(resp *response) *APIError {
	e := &APIError{StatusCode: resp.status, RequestID: resp.requestID}
	if id := resp.header.Get("X-Request-ID"); id != "" {
		e.RequestID = id
	}

	var env errorBody
	switch {
	case len(resp.body) == 0:
		e.Message = http.StatusText(resp.status)
	case json.Unmarshal(resp.body, &env) == nil && env.Error.Code != "":
		e.Code, e.Message, e.Detail = env.Error.Code, env.Error.Message, env.Error.Detail
	default:
		e.Message = strings.TrimSpace(string(resp.body))
	}
	return e
}

//Personal.AI order the ending
