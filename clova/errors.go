package clova

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorMalformedPayload ErrorCode = "MALFORMED_PAYLOAD"
	ErrorVerification     ErrorCode = "VERIFICATION_FAILED"
	ErrorUnroutableIntent ErrorCode = "UNROUTABLE_INTENT"
)

// Sentinels matched by errors.Is against an *Error of the same code.
var (
	ErrMalformedPayload = errors.New("clova: malformed payload")
	ErrVerification     = errors.New("clova: verification failed")
	ErrUnroutableIntent = errors.New("clova: unroutable intent")

	// ErrNotConvertible is recorded when a converter is registered for a
	// parameter whose raw value is an array or an object.
	ErrNotConvertible = errors.New("clova: value is not a scalar")
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("clova: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("clova: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrMalformedPayload:
		return e.Code == ErrorMalformedPayload
	case ErrVerification:
		return e.Code == ErrorVerification
	case ErrUnroutableIntent:
		return e.Code == ErrorUnroutableIntent
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Code, true
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
