// Package goerror carries typed application errors that the HTTP layer can
// translate into status codes without inspecting error strings.
package goerror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by adapters when a lookup matched nothing.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned by adapters when a write collides with existing state.
	ErrConflict = errors.New("resource conflict")

	// ErrLocked is returned when another request already holds the resource.
	ErrLocked = errors.New("resource locked")
)

// Error is the structured error used across usecases and the router.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	}

	switch e.errType {
	case TypeValidation:
		return "Validation violation"
	case TypeBusiness:
		return "Business rule violation"
	default:
		return "Internal error"
	}
}

// String is the verbose form used in logs.
func (e *Error) String() string {
	return fmt.Sprintf("type=%s code=%s msg=%q err=%v", e.errType, e.code, e.msg, e.err)
}

// Msg returns the user-facing message.
func (e *Error) Msg() string { return e.msg }

// Type returns the error bucket.
func (e *Error) Type() Type { return e.errType }

// Code returns the stable error code.
func (e *Error) Code() Code { return e.code }

// Fields returns per-field validation messages, if any.
func (e *Error) Fields() map[string]string { return e.fields }

func (e *Error) Unwrap() error { return e.err }

// StatusCode maps the error code to an HTTP status.
func (e *Error) StatusCode() int { return e.code.status() }

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// NewServer wraps an infrastructure failure. The cause is kept for logs and
// never shown to clients.
func NewServer(err error) error {
	return &Error{err: err, msg: "Internal server error", errType: TypeServer, code: CodeInternal}
}

// NewBusiness reports a rule violation with a client-facing message.
func NewBusiness(msg string, code Code) error {
	return &Error{msg: msg, errType: TypeBusiness, code: code}
}

// NewInvalidInput reports validation failures. With a non-nil err the error
// wraps it (typically a validator error carrying its own field map);
// otherwise kv is read as field/message pairs.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return &Error{err: err, msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput}
	}

	if len(kv)%2 != 0 {
		return NewInvalidFormat()
	}

	fields := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}

	return &Error{msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput, fields: fields}
}

// NewInvalidFormat reports a request body that could not be decoded.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return &Error{msg: msg, errType: TypeValidation, code: CodeInvalidFormat}
}
