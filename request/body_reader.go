package request

import (
	"errors"
	"io"
)

// bodyReader reads exactly contentLength bytes and reports a short body as
// ErrIncompleteRequest instead of a silent EOF.
type bodyReader struct {
	reader        io.Reader // io.LimitReader
	bytesConsumed int64
	contentLength int64
}

func newBodyReader(r io.Reader, contentLength int64) *bodyReader {
	return &bodyReader{reader: io.LimitReader(r, contentLength), contentLength: contentLength}
}

// Read implements the io.Reader interface.
func (br *bodyReader) Read(p []byte) (int, error) {
	n, err := br.reader.Read(p)
	br.bytesConsumed += int64(n)

	if errors.Is(err, io.EOF) && br.bytesConsumed < br.contentLength {
		return n, ErrIncompleteRequest
	}
	return n, err
}
