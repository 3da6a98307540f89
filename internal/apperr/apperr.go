// Package apperr defines the error kinds surfaced by the sunspot pipeline.
package apperr

import (
	"errors"
	"fmt"
)

// Kind represents a category of pipeline failure
type Kind string

const (
	KindLoad            Kind = "load"
	KindDegenerateImage Kind = "degenerate_image"
	KindEmptyContourSet Kind = "empty_contour_set"
	KindShapeMismatch   Kind = "shape_mismatch"
	KindConfig          Kind = "config"
)

// Error is a structured pipeline error. Two Errors match under errors.Is
// when their kinds are equal.
type Error struct {
	Kind    Kind
	Message string
	// Path is the source file involved, if any
	Path    string
	Cause   error
}

// Sentinels for errors.Is checks.
var (
	ErrLoad            = &Error{Kind: KindLoad, Message: "image could not be loaded"}
	ErrDegenerateImage = &Error{Kind: KindDegenerateImage, Message: "image has zero dynamic range"}
	ErrEmptyContourSet = &Error{Kind: KindEmptyContourSet, Message: "no limb contour found"}
	ErrShapeMismatch   = &Error{Kind: KindShapeMismatch, Message: "array dimensions disagree"}
	ErrConfig          = &Error{Kind: KindConfig, Message: "invalid configuration"}
)

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("%s (path: %s)", msg, e.Path)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New creates an error of the given kind
func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Newf creates an error of the given kind with a formatted message
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewLoadError creates a load error for path
func NewLoadError(path, message string, cause error) *Error {
	return &Error{Kind: KindLoad, Message: message, Path: path, Cause: cause}
}

// KindOf extracts the kind of err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind checks if err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// PathOf returns the path recorded on the outermost *Error carrying one
func PathOf(err error) string {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.Path != "" {
			return e.Path
		}
		err = e.Cause
	}
	return ""
}
