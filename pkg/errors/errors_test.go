package errors

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeSealedScope, "export scope of %s is sealed", "AuthModule")

	if err.Code != ErrCodeSealedScope {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeSealedScope)
	}

	if err.Message != "export scope of AuthModule is sealed" {
		t.Errorf("Message = %v", err.Message)
	}

	expected := "CONFIGURATION_SEALED_SCOPE: export scope of AuthModule is sealed"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeImportFailed, cause, "import DBModule failed")

	if err.Code != ErrCodeImportFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeImportFailed)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeDuplicateExport, "test"),
			code:     ErrCodeDuplicateExport,
			expected: true,
		},
		{
			name:     "different code",
			err:      New(ErrCodeDuplicateExport, "test"),
			code:     ErrCodeSealedScope,
			expected: false,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			code:     ErrCodeLifecycle,
			expected: false,
		},
		{
			name:     "wrapped structured error",
			err:      fmt.Errorf("outer: %w", New(ErrCodeMissingExpected, "inner")),
			code:     ErrCodeMissingExpected,
			expected: true,
		},
		{
			name:     "not found struct carries its code",
			err:      &NotFoundError{Requested: reflect.TypeOf("")},
			code:     ErrCodeNotFound,
			expected: true,
		},
		{
			name:     "cycle struct carries its code",
			err:      &CycleError{Chain: []string{"int"}},
			code:     ErrCodeCircular,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeBadConfigure, "x")); got != ErrCodeBadConfigure {
		t.Errorf("GetCode = %v, want %v", got, ErrCodeBadConfigure)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{
		Requested: reflect.TypeOf(""),
		Owner:     "AuthModule",
		Visible:   []reflect.Type{reflect.TypeOf(0), reflect.TypeOf(false)},
	}

	msg := err.Error()
	for _, want := range []string{"DEPENDENCY_NOT_FOUND", "string", "AuthModule", "int", "bool"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}

	// Recoverable via errors.As through a wrap chain.
	wrapped := fmt.Errorf("get: %w", err)
	var nf *NotFoundError
	if !errors.As(wrapped, &nf) {
		t.Fatal("errors.As failed to recover NotFoundError")
	}
	if nf.Requested != reflect.TypeOf("") {
		t.Errorf("Requested = %v, want string", nf.Requested)
	}
}

func TestCycleError(t *testing.T) {
	err := &CycleError{Chain: TypeNames([]reflect.Type{
		reflect.TypeOf(0),
		reflect.TypeOf(""),
		reflect.TypeOf(0),
	})}

	want := "CIRCULAR_DEPENDENCY: int -> string -> int"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
