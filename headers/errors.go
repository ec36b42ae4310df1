package headers

import "errors"

// ErrMalformedHeader is returned when a field line cannot be parsed.
var ErrMalformedHeader = errors.New("malformed header line")
