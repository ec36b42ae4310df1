package server

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is reported when a handler returns a zero Response.
var ErrEmptyResponse = errors.New("handler returned an empty response")

// HandlerPanicError carries the value a handler panicked with.
type HandlerPanicError struct {
	Value any
	Stack []byte
}

func (e *HandlerPanicError) Error() string {
	return fmt.Sprintf("handler panic: %v", e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *HandlerPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
