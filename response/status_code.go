package response

import "strconv"

// StatusCode is an HTTP status code.
type StatusCode int

const (
	StatusOK        StatusCode = 200
	StatusNoContent StatusCode = 204

	StatusNotModified StatusCode = 304

	StatusBadRequest                  StatusCode = 400
	StatusNotFound                    StatusCode = 404
	StatusMethodNotAllowed            StatusCode = 405
	StatusRequestTimeout              StatusCode = 408
	StatusRequestHeaderFieldsTooLarge StatusCode = 431

	StatusInternalServerError     StatusCode = 500
	StatusNotImplemented          StatusCode = 501
	StatusServiceUnavailable      StatusCode = 503
	StatusHTTPVersionNotSupported StatusCode = 505
)

var reasonPhrases = map[StatusCode]string{
	StatusOK:        "OK",
	StatusNoContent: "No Content",

	StatusNotModified: "Not Modified",

	StatusBadRequest:                  "Bad Request",
	StatusNotFound:                    "Not Found",
	StatusMethodNotAllowed:            "Method Not Allowed",
	StatusRequestTimeout:              "Request Timeout",
	StatusRequestHeaderFieldsTooLarge: "Request Header Fields Too Large",

	StatusInternalServerError:     "Internal Server Error",
	StatusNotImplemented:          "Not Implemented",
	StatusServiceUnavailable:      "Service Unavailable",
	StatusHTTPVersionNotSupported: "HTTP Version Not Supported",
}

// Reason returns the reason phrase for a status code. Codes without a known
// phrase get an empty one, which the status line grammar allows.
func (s StatusCode) Reason() string {
	return reasonPhrases[s]
}

// String implements fmt.Stringer.
func (s StatusCode) String() string {
	if r := s.Reason(); r != "" {
		return strconv.Itoa(int(s)) + " " + r
	}
	return strconv.Itoa(int(s))
}

// bodyAllowed reports whether a response with this status may carry content.
// https://datatracker.ietf.org/doc/html/rfc9110#section-6.4.1-8
func (s StatusCode) bodyAllowed() bool {
	return s >= 200 && s != StatusNoContent && s != StatusNotModified
}
