package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

func TestNew(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal", errors.ErrCodeInternal, "unexpected failure"},
		{"no data", errors.ErrCodeNoDataForSelection, "no indicator record"},
		{"undefined angle", errors.ErrCodeUndefinedAngle, "zero-magnitude vector"},
		{"rate limited", errors.ErrCodeTooManyRequests, "too many requests"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ae := errors.New(tc.code, tc.message)
			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
			assert.Contains(t, ae.StackTrace(), "errors_test.go")
		})
	}
}

func TestAppError_Error(t *testing.T) {
	ae := errors.New(errors.ErrCodeNoDataForSelection, "no indicator record")
	assert.Equal(t, "[TRI_001] no indicator record", ae.Error())

	detailed := ae.WithDetail("state=SP year=2019")
	assert.Equal(t, "[TRI_001] no indicator record: state=SP year=2019", detailed.Error())
	assert.Empty(t, ae.Detail, "receiver unchanged")
}

func TestNewf(t *testing.T) {
	ae := errors.Newf(errors.ErrCodeDimensionUnknown, "unknown dimension %q", "Price")
	assert.Equal(t, `unknown dimension "Price"`, ae.Message)
}

func TestNilReceiver(t *testing.T) {
	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
	assert.Empty(t, ae.StackTrace())
}

func TestWrap(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrCodeInternal, "ignored"))

	cause := stderrors.New("connection refused")
	ae := errors.Wrap(cause, errors.ErrCodeDatasetUnavailable, "fetch dataset")
	require.NotNil(t, ae)
	assert.ErrorIs(t, ae, cause)
	assert.Equal(t, errors.ErrCodeDatasetUnavailable, ae.Code)
}

func TestWrap_UnknownInheritsCode(t *testing.T) {
	inner := errors.New(errors.ErrCodeUndefinedAngle, "zero vector")
	assert.Equal(t, errors.ErrCodeUndefinedAngle, errors.Wrap(inner, errors.CodeUnknown, "computing angles").Code)
	assert.Equal(t, errors.CodeUnknown, errors.Wrap(stderrors.New("plain"), errors.CodeUnknown, "x").Code)
}

func TestIsCode_WalksChain(t *testing.T) {
	inner := errors.New(errors.ErrCodeNoDataForSelection, "no record")
	outer := errors.Wrap(inner, errors.ErrCodeInternal, "compute view")
	wrapped := fmt.Errorf("handler: %w", outer)

	assert.True(t, errors.IsCode(wrapped, errors.ErrCodeInternal))
	assert.True(t, errors.IsCode(wrapped, errors.ErrCodeNoDataForSelection))
	assert.False(t, errors.IsCode(wrapped, errors.ErrCodeUndefinedAngle))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeInternal))
	assert.False(t, errors.IsCode(stderrors.New("plain"), errors.ErrCodeInternal))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodeNotFound, "missing")))
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodeNoDataForSelection, "no record")))
	assert.False(t, errors.IsNotFound(errors.New(errors.ErrCodeInternal, "boom")))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, errors.IsValidation(errors.New(errors.ErrCodeBadRequest, "state is required")))
	assert.True(t, errors.IsValidation(errors.New(errors.ErrCodeValidation, "bad")))
	assert.False(t, errors.IsValidation(errors.New(errors.ErrCodeTooManyRequests, "slow down")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, errors.ErrorCode(""), errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeUndefinedAngle,
		errors.GetCode(fmt.Errorf("ctx: %w", errors.New(errors.ErrCodeUndefinedAngle, "x"))))
}

//Personal.AI order the ending
