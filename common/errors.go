package common

import (
	"errors"
	"strings"
)

// ErrorKind classifies a failure for callers that decide what to do next
// (re-prompt for login, refresh cookies, report a bug).
type ErrorKind int

const (
	// KindUnknown is reported for errors that carry no classification.
	KindUnknown ErrorKind = iota
	// KindValidation means the caller's input was rejected before any
	// browser was opened. Never retried.
	KindValidation
	// KindSessionAcquisition means the unmanaged login never reached its
	// completion signal or the captured profile did not load a session.
	KindSessionAcquisition
	// KindInvalidSession means the injected cookies were accepted but the
	// site redirected away from the expected destination.
	KindInvalidSession
	// KindElementTimeout means an expected UI element did not show up
	// within its bound.
	KindElementTimeout
	// KindEnvironment covers process spawn and filesystem failures.
	KindEnvironment
	// KindProgramming flags a state the code should never reach, such as
	// an unrecognized enum value.
	KindProgramming
)

var kindNames = map[ErrorKind]string{
	KindUnknown:            "unknown",
	KindValidation:         "validation",
	KindSessionAcquisition: "session acquisition",
	KindInvalidSession:     "invalid session",
	KindElementTimeout:     "element timeout",
	KindEnvironment:        "environment",
	KindProgramming:        "programming",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error is the classified error returned by the core packages.
//
// Op names the operation or stage that failed ("upload.visibility",
// "login.poll"), Target carries the selector or URL involved. Cookie values
// must never end up in any field.
type Error struct {
	Kind   ErrorKind
	Op     string
	Target string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.Target != "" {
		b.WriteString(" (")
		b.WriteString(e.Target)
		b.WriteString(")")
	}
	if e.Err != nil {
		if e.Msg != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a kind sentinel (an *Error with only Kind
// set) matching e's kind. This lets callers write
// errors.Is(err, common.ErrInvalidSession).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op != "" || t.Msg != "" || t.Target != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrSessionAcquisition = &Error{Kind: KindSessionAcquisition}
	ErrInvalidSession     = &Error{Kind: KindInvalidSession}
	ErrElementTimeout     = &Error{Kind: KindElementTimeout}
	ErrEnvironment        = &Error{Kind: KindEnvironment}
	ErrProgramming        = &Error{Kind: KindProgramming}
)

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsProgrammingError reports whether any error in the chain is a
// programming error, even when an outer layer classified it differently.
func IsProgrammingError(err error) bool {
	return errors.Is(err, ErrProgramming)
}

// NewError builds a classified error without a cause.
func NewError(kind ErrorKind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// WrapError classifies cause under kind.
func WrapError(kind ErrorKind, op, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: cause}
}

// WithTarget records the URL, selector or path the failure refers to.
func (e *Error) WithTarget(target string) *Error {
	e.Target = target
	return e
}
