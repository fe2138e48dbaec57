package api

import (
	"errors"
	"fmt"
)

var ErrInvalidRequest = errors.New("invalid_request")

type requestError struct {
	msg string
}

func (e requestError) Error() string {
	return e.msg
}

func (e requestError) Unwrap() error {
	return ErrInvalidRequest
}

func newRequestError(format string, args ...any) error {
	return requestError{msg: fmt.Sprintf(format, args...)}
}
