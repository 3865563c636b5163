package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/turtacn/Trilemma-Dashboard/internal/domain/indicator"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorBody is the payload inside ErrorResponse.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// errorResponse classifies err.  Server-side failures are masked with the
// code's default message.
func errorResponse(err error) (int, ErrorResponse) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeInternal
	}
	status := code.HTTPStatus()

	body := ErrorBody{Code: code.String(), Message: code.DefaultMessage()}
	var ae *errors.AppError
	if status < http.StatusInternalServerError && stderrors.As(err, &ae) {
		body.Message = ae.Message
		body.Detail = ae.Detail
	}
	return status, ErrorResponse{Error: body}
}

// writeAppError maps application-level errors to HTTP responses and logs
// server-side failures.
func writeAppError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	status, resp := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logging.WithContext(r.Context(), logger).Error("request failed",
			logging.String("path", r.URL.Path),
			logging.String("code", resp.Error.Code),
			logging.Err(err))
	}
	writeJSON(w, status, resp)
}

// selectionFromQuery reads ?state=&year=.  Missing values fall back to def
// when def is non-nil.
func selectionFromQuery(r *http.Request, def *indicator.Selection) indicator.Selection {
	q := r.URL.Query()
	sel := indicator.Selection{
		State: strings.TrimSpace(q.Get("state")),
		Year:  strings.TrimSpace(q.Get("year")),
	}
	if def != nil {
		if sel.State == "" {
			sel.State = def.State
		}
		if sel.Year == "" {
			sel.Year = def.Year
		}
	}
	return sel
}

//Personal.AI order the ending
