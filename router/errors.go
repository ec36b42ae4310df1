package router

import "errors"

var (
	ErrDuplicateRoute = errors.New("duplicate route")
	ErrInvalidPath    = errors.New("route path must start with /")
	ErrNilHandler     = errors.New("nil handler")
)
