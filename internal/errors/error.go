package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryTarget  Category = "target"
	CategoryBuild   Category = "build"
	CategoryAudit   Category = "audit"
	CategoryPublish Category = "publish"
)

// Registered error codes.
const (
	CodeInvalidConfig   = "E120"
	CodeMissingPackages = "E121"
	CodeUnknownTarget   = "E200"
	CodeNoMatch         = "E201"
	CodeBundlerFailed   = "E210"
	CodeRevision        = "E211"
	CodeCleanup         = "E212"
	CodeArtifact        = "E220"
	CodePublish         = "E230"
)

// Sentinels for use with Is. They match any *Error with the same code.
var (
	ErrInvalidConfig   = &Error{Code: CodeInvalidConfig}
	ErrMissingPackages = &Error{Code: CodeMissingPackages}
	ErrUnknownTarget   = &Error{Code: CodeUnknownTarget}
	ErrNoMatch         = &Error{Code: CodeNoMatch}
	ErrBundlerFailed   = &Error{Code: CodeBundlerFailed}
	ErrRevision        = &Error{Code: CodeRevision}
	ErrCleanup         = &Error{Code: CodeCleanup}
	ErrArtifact        = &Error{Code: CodeArtifact}
	ErrPublish         = &Error{Code: CodePublish}
)

// Error is a structured error with a registered code, the target it concerns
// and a fix suggestion.
type Error struct {
	// Code is a unique error identifier (e.g., "E200").
	Code string

	// Category is the error type (config, target, build, ...).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Target is the package the error concerns, if any.
	Target string

	// ExitCode is the subprocess exit status for bundler failures.
	// -1 means the process never started or was killed by a signal.
	ExitCode int

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Target != "" {
		msg += fmt.Sprintf(" (target %q", e.Target)
		if e.Code == CodeBundlerFailed {
			msg += fmt.Sprintf(", exit status %d", e.ExitCode)
		}
		msg += ")"
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithTarget records the target the error concerns.
func (e *Error) WithTarget(target string) *Error {
	e.Target = target
	return e
}

// WithExitCode records the subprocess exit status.
func (e *Error) WithExitCode(code int) *Error {
	e.ExitCode = code
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new Error with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an Error.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return New(code).Wrap(err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
