package errors

import "errors"

var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// ErrorCode is the stable, machine-readable identifier of an error. Codes
// are published to sinks as-is.
type ErrorCode string

// Error is a coded error carrying an optional message, payload and cause.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory creates coded errors.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}

// HasCode reports whether err, or any error it wraps, carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var e Error
	for err != nil {
		if As(err, &e) && e.Code() == code {
			return true
		}
		if e == nil {
			return false
		}
		err = e.Unwrap()
		e = nil
	}

	return false
}

// Coded returns the first coded error in err's chain, or wraps err under
// fallback when there is none. A nil err stays nil.
func Coded(err error, fallback ErrorCode) Error {
	if err == nil {
		return nil
	}
	var e Error
	if As(err, &e) {
		return e
	}
	return New().Wrap(fallback, err)
}
