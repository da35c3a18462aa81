package errors

import "fmt"

// appError implements the Error interface
type appError struct {
	code    ErrorCode
	message string
	err     error
	data    any
}

func (e *appError) Error() string {
	msg := e.message
	if msg == "" {
		msg = GetErrorMessage(e.code)
	}

	switch {
	case e.data != nil && e.err != nil:
		return fmt.Sprintf("%s (%v): %v", msg, e.data, e.err)
	case e.data != nil:
		return fmt.Sprintf("%s: %v", msg, e.data)
	case e.err != nil:
		return fmt.Sprintf("%s: %v", msg, e.err)
	}

	return msg
}

// Is matches another coded error by code, so sentinel values such as an
// exhausted-source marker compare equal to fresh errors with that code.
func (e *appError) Is(target error) bool {
	t, ok := target.(*appError)
	return ok && t.code == e.code
}

func (e *appError) Code() ErrorCode {
	return e.code
}

func (e *appError) WithMessage(msg string) Error {
	return &appError{
		code:    e.code,
		message: msg,
		err:     e.err,
		data:    e.data,
	}
}

func (e *appError) WithData(data any) Error {
	return &appError{
		code:    e.code,
		message: e.message,
		err:     e.err,
		data:    data,
	}
}

func (e *appError) GetData() any {
	return e.data
}

func (e *appError) Unwrap() error {
	return e.err
}

type defaultFactory struct{}

func (*defaultFactory) New(code ErrorCode) Error {
	return &appError{
		code: code,
	}
}

func (*defaultFactory) Wrap(code ErrorCode, err error) Error {
	return &appError{
		code: code,
		err:  err,
	}
}

func (*defaultFactory) WithMessage(code ErrorCode, msg string) Error {
	return &appError{
		code:    code,
		message: msg,
	}
}

func (*defaultFactory) WithData(code ErrorCode, data any) Error {
	return &appError{
		code: code,
		data: data,
	}
}

// New creates a Factory instance for error creation
func New() Factory {
	return &defaultFactory{}
}
