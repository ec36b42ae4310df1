package request

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/shravanasati/beacon/headers"
)

// MaxHeaderBytes bounds the request line plus the header section.
const MaxHeaderBytes = 64 << 10

// Common method names. Any token is accepted as a method.
const (
	GET     = "GET"
	HEAD    = "HEAD"
	POST    = "POST"
	PUT     = "PUT"
	PATCH   = "PATCH"
	DELETE  = "DELETE"
	OPTIONS = "OPTIONS"
)

// https://datatracker.ietf.org/doc/html/rfc9112#section-3
var requestLineRegex = regexp.MustCompile(`^([a-zA-Z0-9!#$%&'*\+\-.^_\x60\|~]+) (\S+) HTTP/(\d)\.(\d)$`)

// Request is a single parsed HTTP request.
type Request struct {
	Method      string
	Target      string // request-target as sent
	Path        string // Target without the query, or the path of an absolute-form target
	HTTPVersion string // "1.0" or "1.1"
	Headers     *headers.Headers

	body io.Reader
}

// Body returns the body reader. It is never nil; a request without a body
// returns an empty reader.
func (r *Request) Body() io.Reader {
	return r.body
}

// Discard drains whatever is left of the body so the next request on the
// same connection can be read.
func (r *Request) Discard() error {
	_, err := io.Copy(io.Discard, r.body)
	return err
}

// KeepAlive reports whether the client allows the connection to be reused
// after this request.
// https://datatracker.ietf.org/doc/html/rfc9112#section-9.3
func (r *Request) KeepAlive() bool {
	tokens := connectionTokens(r.Headers.Get("connection"))
	if r.HTTPVersion == "1.0" {
		return tokens["keep-alive"] && !tokens["close"]
	}
	return !tokens["close"]
}

func connectionTokens(v string) map[string]bool {
	tokens := map[string]bool{}
	for t := range strings.SplitSeq(v, ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tokens[t] = true
		}
	}
	return tokens
}

func parseRequestLine(line []byte) (method, target, version string, err error) {
	m := requestLineRegex.FindSubmatch(line)
	if m == nil {
		return "", "", "", ErrMalformedRequestLine
	}
	if m[3][0] != '1' || (m[4][0] != '0' && m[4][0] != '1') {
		return "", "", "", fmt.Errorf("%w: HTTP/%s.%s", ErrUnsupportedVersion, m[3], m[4])
	}
	return string(m[1]), string(m[2]), string(m[3]) + "." + string(m[4]), nil
}

func targetPath(target string) (string, error) {
	if strings.HasPrefix(target, "/") || target == "*" {
		path, _, _ := strings.Cut(target, "?")
		return path, nil
	}

	// absolute-form, https://datatracker.ietf.org/doc/html/rfc9112#section-3.2.2
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", ErrMalformedRequestLine
	}
	if u.EscapedPath() == "" {
		return "/", nil
	}
	return u.EscapedPath(), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func bodyFor(br *bufio.Reader, h *headers.Headers) (io.Reader, error) {
	te := h.Get("transfer-encoding")
	cl := h.Get("content-length")

	if te != "" && h.Has("content-length") {
		// https://datatracker.ietf.org/doc/html/rfc9112#section-6.1-15
		return nil, ErrAmbiguousFraming
	}

	if te != "" {
		codings := strings.Split(te, ",")
		last := strings.ToLower(strings.TrimSpace(codings[len(codings)-1]))
		if last != "chunked" {
			// https://datatracker.ietf.org/doc/html/rfc9112#section-6.3-2.4.3
			return nil, ErrUnsupportedTransferEncoding
		}
		return newChunkedReader(br), nil
	}

	if !h.Has("content-length") {
		return bytes.NewReader(nil), nil
	}

	// Content-Length = 1*DIGIT, no sign and no list
	// https://datatracker.ietf.org/doc/html/rfc9110#section-8.6
	if !isDigits(cl) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContentLength, cl)
	}
	n, err := strconv.ParseInt(cl, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContentLength, cl)
	}
	return newBodyReader(br, n), nil
}

// Parse reads one request from br. It returns io.EOF if the connection was
// closed cleanly before the first byte of a request.
func Parse(br *bufio.Reader) (*Request, error) {
	budget := MaxHeaderBytes

	var line []byte
	var err error
	// https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-6
	for {
		line, err = readLine(br, &budget)
		if err != nil {
			return nil, err
		}
		if len(line) != 0 {
			break
		}
	}

	method, target, version, err := parseRequestLine(line)
	if err != nil {
		return nil, err
	}
	path, err := targetPath(target)
	if err != nil {
		return nil, err
	}

	h := headers.NewHeaders()
	for {
		line, err = readLine(br, &budget)
		if errors.Is(err, io.EOF) {
			return nil, ErrIncompleteRequest
		}
		if err != nil {
			return nil, err
		}
		if len(line) == 0 {
			break
		}
		if err := h.ParseFieldLine(line); err != nil {
			return nil, err
		}
	}

	body, err := bodyFor(br, h)
	if err != nil {
		return nil, err
	}

	return &Request{
		Method:      method,
		Target:      target,
		Path:        path,
		HTTPVersion: version,
		Headers:     h,
		body:        body,
	}, nil
}

// RequestFromReader parses a single request from r.
func RequestFromReader(r io.Reader) (*Request, error) {
	return Parse(bufio.NewReader(r))
}
