package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_HTTPStatus(t *testing.T) {
	tests := map[ErrorCode]int{
		ErrCodeValidation:         http.StatusBadRequest,
		ErrCodeTooManyRequests:    http.StatusTooManyRequests,
		ErrCodeNoDataForSelection: http.StatusNotFound,
		ErrCodeUndefinedAngle:     http.StatusUnprocessableEntity,
		ErrCodeDatasetUnavailable: http.StatusServiceUnavailable,
		ErrCodeExternalService:    http.StatusBadGateway,
		CodeUnknown:               http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, code.HTTPStatus(), code.String())
	}
}

func TestErrorCode_DefaultMessage(t *testing.T) {
	assert.Equal(t, "no data for selection", ErrCodeNoDataForSelection.DefaultMessage())
	assert.Equal(t, "unknown error", ErrorCode("TRI_999").DefaultMessage())
}

func TestErrorCode_Module(t *testing.T) {
	assert.Equal(t, "TRI", ErrCodeUndefinedAngle.Module())
	assert.Equal(t, "COMMON", ErrCodeCacheError.Module())
	assert.Equal(t, "UNKNOWN", ErrorCode("").Module())
}

func TestCodes_AreWellFormed(t *testing.T) {
	codes := Codes()
	assert.Len(t, codes, 17)
	for _, c := range codes {
		assert.True(t, c.Known())
		assert.Regexp(t, `^(COMMON|TRI)_\d{3}$`, c.String())
		assert.GreaterOrEqual(t, c.HTTPStatus(), 400)
	}
	assert.False(t, CodeUnknown.Known())
}

//Personal.AI order the ending
