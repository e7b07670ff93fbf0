// Package errors extends the standard library errors with slog annotations
// and the source location of the wrapping site. It re-exports the stdlib
// helpers so that callers only need one errors import.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// AnnotatedError carries a message, optional slog attributes, and the
// file:line of the call site that created it.
type AnnotatedError struct {
	msg    string
	cause  error
	attrs  []slog.Attr
	source string
}

// Error implements the error interface.
func (e *AnnotatedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (e *AnnotatedError) Unwrap() error {
	return e.cause
}

// callerSource resolves the file:line of the caller skipping the given
// number of frames on top of callerSource itself.
func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	// Trim the path down to the file name to keep log lines short.
	if idx := strings.LastIndexByte(file, '/'); idx != -1 {
		file = file[idx+1:]
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// New creates an annotated error with the source location of the caller.
func New(msg string, attrs ...slog.Attr) error {
	return &AnnotatedError{
		msg:    msg,
		cause:  nil,
		attrs:  attrs,
		source: callerSource(1),
	}
}

// NewSentinel creates an error meant for package-level sentinel values.
// It deliberately skips source capture since the declaration site of a
// sentinel is not interesting in logs.
func NewSentinel(msg string) error {
	return &AnnotatedError{
		msg:    msg,
		cause:  nil,
		attrs:  nil,
		source: "",
	}
}

// Wrap annotates err with a message and optional slog attributes.
// A nil err is tolerated and produces an error with just the message.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &AnnotatedError{
		msg:    msg,
		cause:  err,
		attrs:  attrs,
		source: callerSource(1),
	}
}

// DecoratePanic converts a recovered panic value into an annotated error
// pointing at the recover site.
func DecoratePanic(recovered any) error {
	if recovered == nil {
		return nil
	}
	return &AnnotatedError{
		msg:    fmt.Sprintf("panic: %v", recovered),
		cause:  nil,
		attrs:  nil,
		source: callerSource(1),
	}
}

// SlogError renders err as a structured attribute including the message,
// the innermost recorded source location, and all annotations collected
// along the error chain.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("message", "<nil>"))
	}

	var (
		annotations []any
		source      string
	)
	for unwrapped := err; unwrapped != nil; unwrapped = Unwrap(unwrapped) {
		var annotated *AnnotatedError
		if As(unwrapped, &annotated) {
			for _, attr := range annotated.attrs {
				annotations = append(annotations, attr)
			}
			if annotated.source != "" {
				source = annotated.source
			}
			unwrapped = annotated
		}
	}

	args := []any{slog.String("message", err.Error())}
	if source != "" {
		args = append(args, slog.String("source", source))
	}
	if len(annotations) > 0 {
		args = append(args, slog.Group("annotations", annotations...))
	}
	return slog.Group("error", args...)
}

// Re-exported stdlib helpers.

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target) //nolint:errorlint // thin re-export.
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

func Join(errs ...error) error {
	return errors.Join(errs...)
}
