// Package errs provides the structured error taxonomy shared by every stage
// of the netsuke pipeline.
package errs

import (
	"encoding/json"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// Kind identifies one member of the error taxonomy. Kinds are stable and
// machine-readable; Error() renders "[KIND] message" around them. The
// message is the literal text given to New; it is not looked up in a
// localisation catalogue.
type Kind string

const (
	KindManifestNotFound   Kind = "MANIFEST_NOT_FOUND"
	KindManifestParse      Kind = "MANIFEST_PARSE"
	KindManifestStructure  Kind = "MANIFEST_STRUCTURE"
	KindTemplateEvaluation Kind = "TEMPLATE_EVALUATION"
	KindInvalidCommand     Kind = "INVALID_COMMAND"
	KindRuleNotFound       Kind = "RULE_NOT_FOUND"
	KindDuplicateOutput    Kind = "DUPLICATE_OUTPUT"
	KindCycleDetected           Kind = "CYCLE_DETECTED"
	KindMissingDependency       Kind = "MISSING_DEPENDENCY"
	KindHostPatternEmpty        Kind = "HOST_PATTERN_EMPTY"
	KindHostPatternScheme       Kind = "HOST_PATTERN_SCHEME"
	KindHostPatternSlash        Kind = "HOST_PATTERN_SLASH"
	KindHostPatternEmptyLabel   Kind = "HOST_PATTERN_EMPTY_LABEL"
	KindHostPatternInvalidChar  Kind = "HOST_PATTERN_INVALID_CHAR"
	KindHostPatternLabelEdge    Kind = "HOST_PATTERN_LABEL_EDGE"
	KindHostPatternLabelTooLong Kind = "HOST_PATTERN_LABEL_TOO_LONG"
	KindHostPatternTooLong      Kind = "HOST_PATTERN_TOO_LONG"
	KindHostPatternNoSuffix     Kind = "HOST_PATTERN_NO_SUFFIX"
	KindNetworkMissingHost      Kind = "NETWORK_MISSING_HOST"
	KindNetworkSchemeNotAllowed Kind = "NETWORK_SCHEME_NOT_ALLOWED"
	KindNetworkHostBlocked      Kind = "NETWORK_HOST_BLOCKED"
	KindNetworkHostNotAllowed   Kind = "NETWORK_HOST_NOT_ALLOWLISTED"
	KindHelperIO                Kind = "HELPER_IO_ERROR"
	KindExecutorNotFound        Kind = "EXECUTOR_NOT_FOUND"
	KindExecutorExit            Kind = "EXECUTOR_EXIT"
	KindInvalidGlobPattern      Kind = "INVALID_GLOB_PATTERN"
)

// Error is the structured error type every pipeline stage returns.
type Error struct {
	K       Kind           `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

// New creates an Error with no details or cause.
func New(kind Kind, message string) *Error {
	return &Error{K: kind, Message: message}
}

// Code returns the stable machine-readable code for this error.
func (e *Error) Code() string { return string(e.K) }

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.K, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.K, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.Cause }

// WithDetail attaches a context key/value and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause wraps an underlying error and returns the receiver. The cause is
// captured via go-errors/errors.Wrap so a stack trace survives to whatever
// eventually logs it, the same boundary-crossing idiom lazydocker's pkg/utils
// uses around its own goroutine/process-spanning failures.
func (e *Error) WithCause(err error) *Error {
	if err != nil {
		if _, already := err.(*goerrors.Error); !already {
			err = goerrors.Wrap(err, 1)
		}
	}
	e.Cause = err
	return e
}

// Stack returns the captured stack trace for this error's cause, or "" if
// the cause carries none (e.g. when Cause was set directly rather than via
// WithCause).
func (e *Error) Stack() string {
	if ge, ok := e.Cause.(*goerrors.Error); ok {
		return string(ge.Stack())
	}
	return ""
}

// MarshalJSON renders Cause as a string message alongside the other fields.
func (e *Error) MarshalJSON() ([]byte, error) {
	type alias Error
	aux := struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{alias: (*alias)(e)}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// Is reports whether target is an *Error with the same Kind, supporting
// errors.Is(err, errs.New(KindCycleDetected, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.K == t.K
}
