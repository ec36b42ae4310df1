package response

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/shravanasati/beacon/headers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	resp := Text(StatusOK, "hello world")

	assert.Equal(t, StatusOK, resp.StatusCode())
	assert.Equal(t, "text/plain", resp.Header("Content-Type"))
	assert.Equal(t, "11", resp.Header("content-length"))
	assert.Equal(t, "hello world", string(resp.Body()))
}

func TestStatusText(t *testing.T) {
	resp := StatusText(StatusNotFound)
	assert.Equal(t, StatusNotFound, resp.StatusCode())
	assert.Equal(t, "Not Found", string(resp.Body()))
}

func TestNew(t *testing.T) {
	resp := New(StatusBadRequest)
	assert.Equal(t, "0", resp.Header("content-length"))
	assert.Empty(t, resp.Body())

	resp = New(StatusNoContent)
	assert.Equal(t, "", resp.Header("content-length"))
}

func TestWithMethodsDoNotMutate(t *testing.T) {
	orig := Text(StatusOK, "OK")

	modified := orig.WithStatusCode(StatusInternalServerError).WithHeader("Connection", "close")

	assert.Equal(t, StatusOK, orig.StatusCode())
	assert.Equal(t, "", orig.Header("connection"))
	assert.Equal(t, StatusInternalServerError, modified.StatusCode())
	assert.Equal(t, "close", modified.Header("connection"))

	// callers cannot reach the internal state through the getters
	orig.Body()[0] = 'X'
	orig.Headers().Set("content-type", "text/html")
	assert.Equal(t, "OK", string(orig.Body()))
	assert.Equal(t, "text/plain", orig.Header("content-type"))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := Text(StatusOK, "hello world").Write(&buf)
	require.NoError(t, err)

	expected := "HTTP/1.1 200 OK\r\n" +
		"content-type: text/plain\r\n" +
		"content-length: 11\r\n" +
		"\r\n" +
		"hello world"
	assert.Equal(t, expected, buf.String())
}

func TestWriteIsRepeatable(t *testing.T) {
	resp := Text(StatusOK, "OK").WithHeader("x-one", "1").WithHeader("x-two", "2")

	var first bytes.Buffer
	require.NoError(t, resp.Write(&first))

	for range 20 {
		var again bytes.Buffer
		require.NoError(t, resp.Write(&again))
		assert.Equal(t, first.Bytes(), again.Bytes())
	}
}

func TestWriteParsesAsHTTP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(StatusNotFound, "Not Found").Write(&buf))

	res, err := http.ReadResponse(bufio.NewReader(&buf), nil)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "Not Found", string(body))
	assert.Equal(t, int64(9), res.ContentLength)
}

func TestWithoutBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(StatusOK, "OK").WithoutBody().Write(&buf))

	out := buf.String()
	assert.Contains(t, out, "content-length: 2\r\n")
	assert.True(t, strings.HasSuffix(out, "\r\n\r\n"))
}

func TestWriterOrdering(t *testing.T) {
	var buf bytes.Buffer
	rw := NewWriter(&buf)

	require.ErrorIs(t, rw.WriteHeaders(headers.NewHeaders()), ErrInvalidWriterState)
	require.ErrorIs(t, rw.WriteBody([]byte("x")), ErrInvalidWriterState)

	require.NoError(t, rw.WriteStatusLine(StatusOK))
	require.ErrorIs(t, rw.WriteStatusLine(StatusOK), ErrInvalidWriterState)

	require.NoError(t, rw.WriteHeaders(nil))
	require.NoError(t, rw.WriteBody(nil))
	require.ErrorIs(t, rw.WriteBody(nil), ErrInvalidWriterState)

	require.NoError(t, rw.Flush())
	assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\n", buf.String())
}

type failingWriter struct{}

var errBrokenPipe = errors.New("broken pipe")

func (failingWriter) Write([]byte) (int, error) {
	return 0, errBrokenPipe
}

func TestWriteError(t *testing.T) {
	err := Text(StatusOK, "OK").Write(failingWriter{})
	require.ErrorIs(t, err, errBrokenPipe)
}

func TestStatusCodeString(t *testing.T) {
	assert.Equal(t, "200 OK", StatusOK.String())
	assert.Equal(t, "599", StatusCode(599).String())
}
