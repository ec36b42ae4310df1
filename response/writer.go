package response

import (
	"bufio"
	"fmt"
	"io"

	"github.com/shravanasati/beacon/headers"
)

// Writer writes the parts of a response in wire order: status line, then
// headers, then body. Output is buffered until Flush.
type Writer struct {
	bw    *bufio.Writer
	state writerState
}

// NewWriter creates a Writer on top of conn.
func NewWriter(conn io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(conn), state: stateStatusLine}
}

// WriteStatusLine writes "HTTP/1.1 <code> <reason>".
func (rw *Writer) WriteStatusLine(statusCode StatusCode) error {
	if rw.state != stateStatusLine {
		return fmt.Errorf("%w: status line after %s", ErrInvalidWriterState, rw.state)
	}
	if _, err := fmt.Fprintf(rw.bw, "HTTP/1.1 %d %s\r\n", statusCode, statusCode.Reason()); err != nil {
		return err
	}
	rw.state = rw.state.advance()
	return nil
}

// WriteHeaders writes the header section and the blank line ending it.
func (rw *Writer) WriteHeaders(h *headers.Headers) error {
	if rw.state != stateHeaders {
		return fmt.Errorf("%w: headers in %s", ErrInvalidWriterState, rw.state)
	}
	if h != nil {
		for k, v := range h.All() {
			if _, err := fmt.Fprintf(rw.bw, "%s: %s\r\n", k, v); err != nil {
				return err
			}
		}
	}
	if _, err := rw.bw.WriteString("\r\n"); err != nil {
		return err
	}
	rw.state = rw.state.advance()
	return nil
}

// WriteBody writes the content.
func (rw *Writer) WriteBody(b []byte) error {
	if rw.state != stateBody {
		return fmt.Errorf("%w: body in %s", ErrInvalidWriterState, rw.state)
	}
	if _, err := rw.bw.Write(b); err != nil {
		return err
	}
	rw.state = rw.state.advance()
	return nil
}

// Flush sends everything buffered so far to the underlying writer.
func (rw *Writer) Flush() error {
	return rw.bw.Flush()
}
