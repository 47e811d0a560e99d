package errors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "basic error without underlying",
			err:      &Error{Code: ExitCodeGeneral, Message: "test error"},
			expected: "test error",
		},
		{
			name:     "error with underlying",
			err:      &Error{Code: ExitCodeClipboard, Message: "clipboard write failed", Underlying: errors.New("no display")},
			expected: "clipboard write failed: no display",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := &Error{
		Code:       ExitCodeGeneral,
		Message:    "test error",
		Underlying: underlying,
	}

	if err.Unwrap() != underlying {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), underlying)
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is should find the underlying error")
	}
}

func TestSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"invalid argument matches", InvalidArgument("formatId", "must be a non-empty string"), ErrInvalidArgument, true},
		{"unsupported mime matches", UnsupportedMimeType("image/png"), ErrUnsupportedMimeType, true},
		{"wrapped with fmt still matches", fmt.Errorf("render: %w", InvalidArgument("template", "empty")), ErrInvalidArgument, true},
		{"different codes do not match", UnsupportedMimeType("x"), ErrInvalidArgument, false},
		{"plain error does not match", errors.New("boom"), ErrUnsupportedMimeType, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	underlying := errors.New("original error")
	err := Wrap(underlying, "wrapped message")

	if err.Error() != "wrapped message: original error" {
		t.Errorf("Error() = %q, want %q", err.Error(), "wrapped message: original error")
	}

	if Wrap(nil, "message") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrapPreservesCode(t *testing.T) {
	err := Wrap(UnsupportedMimeType("image/png"), "copy")

	if err.Code != ExitCodeUnsupportedMime {
		t.Errorf("Code = %d, want %d", err.Code, ExitCodeUnsupportedMime)
	}
	if !strings.HasPrefix(err.Message, "copy: ") {
		t.Errorf("Message = %q, want copy: prefix", err.Message)
	}
	if err.Suggestion == "" {
		t.Error("Suggestion should be preserved")
	}
}

func TestWrapWithCode(t *testing.T) {
	underlying := errors.New("disk full")
	err := WrapWithCode(underlying, ExitCodeStorage, "save history")

	if err.Code != ExitCodeStorage {
		t.Errorf("Code = %d, want %d", err.Code, ExitCodeStorage)
	}
	if err.Message != "save history: disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "save history: disk full")
	}
}

func TestIsExitCode(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ClipboardError(errors.New("x")))

	if !IsExitCode(wrapped, ExitCodeClipboard) {
		t.Error("IsExitCode should look through fmt wrapping")
	}
	if IsExitCode(wrapped, ExitCodeConfig) {
		t.Error("IsExitCode matched the wrong code")
	}
	if IsExitCode(nil, ExitCodeGeneral) {
		t.Error("IsExitCode(nil) should be false")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ExitCode
	}{
		{"nil", nil, ExitCodeSuccess},
		{"plain", errors.New("x"), ExitCodeGeneral},
		{"typed", ConfigError("bad"), ExitCodeConfig},
		{"wrapped typed", fmt.Errorf("a: %w", ProtocolError("b")), ExitCodeProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHandleTo(t *testing.T) {
	var buf bytes.Buffer
	code := handleTo(&buf, UnknownFormatError("Markdwn", []string{"Markdown"}))

	if code != ExitCodeInvalidArgument {
		t.Errorf("code = %d, want %d", code, ExitCodeInvalidArgument)
	}
	out := buf.String()
	for _, want := range []string{"Error: ", "Format 'Markdwn' not found", "Suggestion: ", "  - Markdown"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if handleTo(&buf, nil) != ExitCodeSuccess {
		t.Error("nil error should map to success")
	}
}

func TestFromContext(t *testing.T) {
	expired, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-expired.Done()

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()

	plain := errors.New("boom")

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want ExitCode
	}{
		{"deadline passed", expired, ClipboardError(plain), ExitCodeTimeout},
		{"bare deadline error", context.Background(), fmt.Errorf("send: %w", context.DeadlineExceeded), ExitCodeTimeout},
		{"cancelled", cancelled, plain, ExitCodeCancellation},
		{"live context", context.Background(), ClipboardError(plain), ExitCodeClipboard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromContext(tt.ctx, tt.err, "copy")
			if CodeOf(got) != tt.want {
				t.Errorf("Expected code %d, got %d (%v)", tt.want, CodeOf(got), got)
			}
			if !errors.Is(got, tt.err) && got != tt.err {
				t.Errorf("Expected original error to stay in the chain, got %v", got)
			}
		})
	}

	if FromContext(expired, nil, "copy") != nil {
		t.Error("Expected nil for a nil error")
	}
}
