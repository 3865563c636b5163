package errors

import (
	"net/http"
	"strings"
)

// ErrorCode identifies a failure category as MODULE_NNN.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Shared codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
)

// Dashboard codes.
const (
	// ErrCodeNoDataForSelection: the (state, year) pair has no indicator record.
	ErrCodeNoDataForSelection ErrorCode = "TRI_001"
	// ErrCodeUndefinedAngle: zero-magnitude vector or zero-denominator ratio.
	ErrCodeUndefinedAngle ErrorCode = "TRI_002"
	// ErrCodeDatasetInvalid: the spreadsheet could not be reshaped into records.
	ErrCodeDatasetInvalid ErrorCode = "TRI_003"
	// ErrCodeDimensionUnknown: a score column names an unknown trilemma dimension.
	ErrCodeDimensionUnknown   ErrorCode = "TRI_004"
	ErrCodeDatasetUnavailable ErrorCode = "TRI_005"
	ErrCodeChartRenderFailed  ErrorCode = "TRI_006"
	ErrCodeEventPublishFailed ErrorCode = "TRI_007"
)

// CodeUnknown is reported for errors that carry no AppError.
const CodeUnknown ErrorCode = "UNKNOWN"

type codeSpec struct {
	status  int
	message string
}

var registry = map[ErrorCode]codeSpec{
	ErrCodeInternal:           {http.StatusInternalServerError, "internal server error"},
	ErrCodeBadRequest:         {http.StatusBadRequest, "bad request"},
	ErrCodeNotFound:           {http.StatusNotFound, "resource not found"},
	ErrCodeTooManyRequests:    {http.StatusTooManyRequests, "too many requests"},
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, "service unavailable"},
	ErrCodeTimeout:            {http.StatusGatewayTimeout, "request timeout"},
	ErrCodeValidation:         {http.StatusBadRequest, "validation failed"},
	ErrCodeSerialization:      {http.StatusInternalServerError, "serialization error"},
	ErrCodeCacheError:         {http.StatusInternalServerError, "cache error"},
	ErrCodeExternalService:    {http.StatusBadGateway, "external service error"},

	ErrCodeNoDataForSelection: {http.StatusNotFound, "no data for selection"},
	ErrCodeUndefinedAngle:     {http.StatusUnprocessableEntity, "angle is undefined"},
	ErrCodeDatasetInvalid:     {http.StatusInternalServerError, "invalid indicator dataset"},
	ErrCodeDimensionUnknown:   {http.StatusInternalServerError, "unknown trilemma dimension"},
	ErrCodeDatasetUnavailable: {http.StatusServiceUnavailable, "indicator dataset unavailable"},
	ErrCodeChartRenderFailed:  {http.StatusInternalServerError, "failed to render chart"},
	ErrCodeEventPublishFailed: {http.StatusInternalServerError, "failed to publish view event"},
}

// Known reports whether c is a registered code.
func (c ErrorCode) Known() bool {
	_, ok := registry[c]
	return ok
}

// HTTPStatus is the response status for c; unregistered codes map to 500.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := registry[c]; ok {
		return s.status
	}
	return http.StatusInternalServerError
}

// DefaultMessage is the user-facing text shown when the concrete message
// must not leak.
func (c ErrorCode) DefaultMessage() string {
	if s, ok := registry[c]; ok {
		return s.message
	}
	return "unknown error"
}

// Module is the prefix before the first underscore.
func (c ErrorCode) Module() string {
	if m, _, _ := strings.Cut(string(c), "_"); m != "" {
		return m
	}
	return string(CodeUnknown)
}

// Codes lists every registered code.
func Codes() []ErrorCode {
	out := make([]ErrorCode, 0, len(registry))
	for c := range registry {
		out = append(out, c)
	}
	return out
}

//Personal.AI order the ending
