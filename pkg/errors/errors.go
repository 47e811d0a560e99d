package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"formatlink/pkg/logger"

	"github.com/fatih/color"
)

type ExitCode int

const (
	ExitCodeSuccess         ExitCode = 0
	ExitCodeGeneral         ExitCode = 1
	ExitCodeConfig          ExitCode = 2
	ExitCodeInvalidArgument ExitCode = 3
	ExitCodeUnsupportedMime ExitCode = 4
	ExitCodeClipboard       ExitCode = 5
	ExitCodeStorage         ExitCode = 6
	ExitCodeFileOperation   ExitCode = 7
	ExitCodeCancellation    ExitCode = 8
	ExitCodeTimeout         ExitCode = 9
	ExitCodeProtocol        ExitCode = 10
)

// Sentinels for errors.Is; matching is by exit code.
var (
	ErrInvalidArgument     = &Error{Code: ExitCodeInvalidArgument, Message: "invalid argument"}
	ErrUnsupportedMimeType = &Error{Code: ExitCodeUnsupportedMime, Message: "unsupported MIME type"}
)

type Error struct {
	Code       ExitCode
	Message    string
	Underlying error
	Suggestion string
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is reports whether target is an *Error carrying the same exit code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(code ExitCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func NewWithError(code ExitCode, message string, err error) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
	}
}

func NewWithSuggestion(code ExitCode, message string, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	if wrapped, ok := err.(*Error); ok {
		return &Error{
			Code:       wrapped.Code,
			Message:    message + ": " + wrapped.Message,
			Underlying: wrapped.Underlying,
			Suggestion: wrapped.Suggestion,
		}
	}

	return &Error{
		Code:       ExitCodeGeneral,
		Message:    message,
		Underlying: err,
	}
}

func WrapWithCode(err error, code ExitCode, message string) *Error {
	if err == nil {
		return nil
	}

	var errMsg string
	if wrapped, ok := err.(*Error); ok {
		errMsg = wrapped.Message
		if wrapped.Underlying != nil {
			errMsg += ": " + wrapped.Underlying.Error()
		}
	} else {
		errMsg = err.Error()
	}

	return &Error{
		Code:       code,
		Message:    message + ": " + errMsg,
		Underlying: err,
	}
}

func IsExitCode(err error, code ExitCode) bool {
	if err == nil {
		return false
	}

	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}

	return false
}

// CodeOf returns the exit code of the outermost *Error in the chain.
func CodeOf(err error) ExitCode {
	if err == nil {
		return ExitCodeSuccess
	}
	for e := err; e != nil; {
		if fe, ok := e.(*Error); ok {
			return fe.Code
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return ExitCodeGeneral
}

// HandleReturn logs err, prints it to stderr and returns the exit code.
// The caller is responsible for exiting the program.
func HandleReturn(err error) ExitCode {
	return handleTo(os.Stderr, err)
}

func handleTo(w io.Writer, err error) ExitCode {
	if err == nil {
		return ExitCodeSuccess
	}

	exitCode := CodeOf(err)
	message := err.Error()
	var suggestion string

	if e, ok := err.(*Error); ok {
		message = e.Message
		suggestion = e.Suggestion

		if e.Underlying != nil {
			logger.Error().Err(e.Underlying).Int("code", int(e.Code)).Msg(e.Message)
			message = e.Error()
		} else {
			logger.Error().Int("code", int(e.Code)).Msg(e.Message)
		}
	} else {
		logger.Error().Msg(message)
	}

	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	fmt.Fprintln(w)
	red.Fprint(w, "Error: ")
	fmt.Fprintln(w, message)

	if suggestion != "" {
		yellow.Fprint(w, "Suggestion: ")
		lines := strings.Split(suggestion, "\n")
		for i, line := range lines {
			if i == 0 {
				fmt.Fprintln(w, line)
				continue
			}
			if strings.HasPrefix(line, "  -") {
				cyan.Fprintln(w, line)
			} else {
				fmt.Fprintln(w, "           "+line)
			}
		}
	}

	fmt.Fprintln(w)

	return exitCode
}

// InvalidArgument reports a missing or malformed field on a public entry point.
func InvalidArgument(field, reason string) *Error {
	return &Error{
		Code:    ExitCodeInvalidArgument,
		Message: fmt.Sprintf("invalid argument %s: %s", field, reason),
	}
}

func UnsupportedMimeType(mime string) *Error {
	return &Error{
		Code:       ExitCodeUnsupportedMime,
		Message:    fmt.Sprintf("unsupported MIME type %q", mime),
		Suggestion: "Use text/plain or text/html.",
	}
}

func ClipboardError(err error) *Error {
	return &Error{
		Code:       ExitCodeClipboard,
		Message:    "clipboard write failed",
		Underlying: err,
	}
}

// ClipReused is returned when Copy is called on a Clip that already ran.
func ClipReused() *Error {
	return &Error{
		Code:    ExitCodeClipboard,
		Message: "clip already copied; create a new one per copy request",
	}
}

func UnknownFormatError(id string, known []string) *Error {
	suggestion := "Use 'formatlink formats list' to see available formats."
	if len(known) > 0 {
		suggestion = "Did you mean:\n"
		for _, k := range known {
			suggestion += fmt.Sprintf("  - %s\n", k)
		}
		suggestion += "\nOr use 'formatlink formats list' to see all formats."
	}
	return &Error{
		Code:       ExitCodeInvalidArgument,
		Message:    fmt.Sprintf("Format '%s' not found", id),
		Suggestion: suggestion,
	}
}

func ConfigError(message string) *Error {
	return &Error{
		Code:       ExitCodeConfig,
		Message:    message,
		Suggestion: "Check your configuration file or set the required environment variables.",
	}
}

func StorageError(message string, err error) *Error {
	return &Error{
		Code:       ExitCodeStorage,
		Message:    message,
		Underlying: err,
	}
}

func ProtocolError(message string) *Error {
	return &Error{
		Code:    ExitCodeProtocol,
		Message: message,
	}
}

func TimeoutError(operation string) *Error {
	return &Error{
		Code:       ExitCodeTimeout,
		Message:    fmt.Sprintf("Operation timed out: %s", operation),
		Suggestion: "Try again with a longer timeout using --timeout flag.",
	}
}

func CancelledError(operation string) *Error {
	return &Error{
		Code:    ExitCodeCancellation,
		Message: fmt.Sprintf("Operation cancelled: %s", operation),
	}
}

// FromContext reports err as a timeout or cancellation when ctx ended or err
// is a context error. Other errors are returned unchanged.
func FromContext(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}
	cause := ctx.Err()
	if cause == nil {
		switch {
		case stderrors.Is(err, context.DeadlineExceeded):
			cause = context.DeadlineExceeded
		case stderrors.Is(err, context.Canceled):
			cause = context.Canceled
		default:
			return err
		}
	}

	var e *Error
	if cause == context.DeadlineExceeded {
		e = TimeoutError(operation)
	} else {
		e = CancelledError(operation)
	}
	e.Underlying = err
	return e
}
