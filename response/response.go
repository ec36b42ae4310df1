package response

import (
	"bytes"
	"io"
	"strconv"

	"github.com/shravanasati/beacon/headers"
)

// Response is an immutable HTTP response. The With* methods return modified
// copies and leave the receiver untouched, so a Response can be shared
// between goroutines and written any number of times.
type Response struct {
	statusCode StatusCode
	headers    *headers.Headers
	body       []byte
	omitBody   bool
}

// New creates an empty response with the given status code and a
// content-length of zero.
func New(statusCode StatusCode) Response {
	h := headers.NewHeaders()
	if statusCode.bodyAllowed() {
		h.Add("content-length", "0")
	}
	return Response{statusCode: statusCode, headers: h}
}

// Text creates a plain text response.
func Text(statusCode StatusCode, body string) Response {
	h := headers.NewHeaders()
	h.Add("content-type", "text/plain")
	h.Add("content-length", strconv.Itoa(len(body)))
	return Response{statusCode: statusCode, headers: h, body: []byte(body)}
}

// StatusText creates a plain text response whose body is the reason phrase.
func StatusText(statusCode StatusCode) Response {
	return Text(statusCode, statusCode.Reason())
}

// StatusCode returns the status code.
func (r Response) StatusCode() StatusCode {
	return r.statusCode
}

// Header returns the value of a response header.
func (r Response) Header(key string) string {
	if r.headers == nil {
		return ""
	}
	return r.headers.Get(key)
}

// Headers returns a copy of the response headers.
func (r Response) Headers() *headers.Headers {
	if r.headers == nil {
		return headers.NewHeaders()
	}
	return r.headers.Clone()
}

// Body returns a copy of the body bytes.
func (r Response) Body() []byte {
	if r.omitBody {
		return nil
	}
	return bytes.Clone(r.body)
}

// WithStatusCode returns a copy with a different status code.
func (r Response) WithStatusCode(code StatusCode) Response {
	r.statusCode = code
	return r
}

// WithHeader returns a copy with the header set, replacing any previous value.
func (r Response) WithHeader(key, value string) Response {
	r.headers = r.Headers()
	r.headers.Set(key, value)
	return r
}

// WithoutBody returns a copy that is written with its headers, including
// content-length, but no content. Used to answer HEAD requests.
func (r Response) WithoutBody() Response {
	r.omitBody = true
	return r
}

// Write writes the response to w in wire format.
func (r Response) Write(w io.Writer) error {
	rw := NewWriter(w)
	if err := rw.WriteStatusLine(r.statusCode); err != nil {
		return err
	}
	if err := rw.WriteHeaders(r.headers); err != nil {
		return err
	}

	var body []byte
	if !r.omitBody && r.statusCode.bodyAllowed() {
		body = r.body
	}
	if err := rw.WriteBody(body); err != nil {
		return err
	}
	return rw.Flush()
}
