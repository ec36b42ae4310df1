package response

import "errors"

// ErrInvalidWriterState is returned when a response part is written out of order.
var ErrInvalidWriterState = errors.New("invalid writer state")
