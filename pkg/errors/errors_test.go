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
			err:      New(CodeInvalidInput, "density must be in (0,1]"),
			expected: "[INVALID_INPUT] density must be in (0,1]",
		},
		{
			name:     "with underlying error",
			err:      Wrap(CodeConfigError, "failed to parse config", errors.New("yaml: line 3")),
			expected: "[CONFIG_ERROR] failed to parse config: yaml: line 3",
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
	err := Wrap(CodeConfigError, "config load failed", underlying)

	unwrapped := err.Unwrap()
	assert.Equal(t, underlying, unwrapped)
}

func TestAppError_Is(t *testing.T) {
	err1 := New(CodeInvalidInput, "error 1")
	err2 := New(CodeInvalidInput, "error 2")
	err3 := New(CodeConfigError, "error 3")

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, err3))
}

func TestIsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "invalid input error",
			err:      ErrInvalidInput,
			expected: true,
		},
		{
			name:     "wrapped invalid input error",
			err:      Wrap(CodeInvalidInput, "bad size string", errors.New("parse failed")),
			expected: true,
		},
		{
			name:     "other error",
			err:      ErrConfigError,
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
			assert.Equal(t, tt.expected, IsInvalidInput(tt.err))
		})
	}
}

func TestIsConfigError(t *testing.T) {
	assert.True(t, IsConfigError(ErrConfigError))
	assert.False(t, IsConfigError(ErrInvalidInput))
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "app error",
			err:      New(CodeInvalidInput, "bad threshold"),
			expected: CodeInvalidInput,
		},
		{
			name:     "wrapped app error",
			err:      Wrap(CodeConfigError, "config", errors.New("inner")),
			expected: CodeConfigError,
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
			err:      New(CodeInvalidInput, "threshold must be in [0,1]"),
			expected: "threshold must be in [0,1]",
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
