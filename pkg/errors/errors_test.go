package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			err:      New(CodeResourceError, "scratch buffer allocation failed"),
			expected: "[RESOURCE_ERROR] scratch buffer allocation failed",
		},
		{
			name:     "with underlying error",
			err:      Wrap(CodeTransportError, "send to partner failed", errors.New("channel closed")),
			expected: "[TRANSPORT_ERROR] send to partner failed: channel closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := Wrap(CodeInvariantError, "validation failed", underlying)

	unwrapped := err.Unwrap()
	assert.Equal(t, underlying, unwrapped)
}

func TestAppError_Is(t *testing.T) {
	err1 := New(CodeResourceError, "error 1")
	err2 := New(CodeResourceError, "error 2")
	err3 := New(CodeTransportError, "error 3")

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, err3))
}

func TestIsResourceError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "resource error",
			err:      ErrResourceError,
			expected: true,
		},
		{
			name:     "wrapped resource error",
			err:      Wrap(CodeResourceError, "alloc failed", errors.New("out of memory")),
			expected: true,
		},
		{
			name:     "other error",
			err:      ErrTransportError,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsResourceError(tt.err))
		})
	}
}

func TestIsTransportError(t *testing.T) {
	assert.True(t, IsTransportError(ErrTransportError))
	assert.False(t, IsTransportError(ErrResourceError))
}

func TestIsInvariantError(t *testing.T) {
	assert.True(t, IsInvariantError(ErrInvariantError))
	assert.False(t, IsInvariantError(ErrResourceError))
}

func TestIsConfigError(t *testing.T) {
	assert.True(t, IsConfigError(ErrConfigError))
	assert.False(t, IsConfigError(ErrResourceError))
}

func TestIsDatabaseError(t *testing.T) {
	assert.True(t, IsDatabaseError(ErrDatabaseError))
	assert.False(t, IsDatabaseError(ErrUploadError))
}

func TestIsUploadError(t *testing.T) {
	assert.True(t, IsUploadError(ErrUploadError))
	assert.False(t, IsUploadError(ErrDatabaseError))
}

func TestIsDownloadError(t *testing.T) {
	assert.True(t, IsDownloadError(ErrDownloadError))
	assert.False(t, IsDownloadError(ErrDatabaseError))
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "app error",
			err:      New(CodeResourceError, "oom"),
			expected: CodeResourceError,
		},
		{
			name:     "wrapped app error",
			err:      Wrap(CodeTransportError, "send", errors.New("inner")),
			expected: CodeTransportError,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: CodeUnknown,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: CodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorCode(tt.err))
		})
	}
}

func TestGetErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "app error",
			err:      New(CodeResourceError, "scratch buffer allocation failed"),
			expected: "scratch buffer allocation failed",
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: "standard error",
		},
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorMessage(tt.err))
		})
	}
}

func TestFatal(t *testing.T) {
	assert.True(t, Fatal(ErrResourceError))
	assert.True(t, Fatal(ErrTransportError))
	assert.True(t, Fatal(ErrConfigError))
	assert.False(t, Fatal(ErrInvariantError))
	assert.False(t, Fatal(nil))
}
