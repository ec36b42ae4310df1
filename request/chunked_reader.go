package request

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

const maxChunkLineBytes = 4 << 10

// chunkedReader decodes a chunked body as it is read.
// https://datatracker.ietf.org/doc/html/rfc9112#section-7.1
type chunkedReader struct {
	br        *bufio.Reader
	remaining int64
	err       error
}

func newChunkedReader(br *bufio.Reader) *chunkedReader {
	return &chunkedReader{br: br}
}

func isHexDigit(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// chunk-size = 1*HEXDIG, optionally followed by BWS before an extension
func parseHexadecimal(hex []byte) (int64, error) {
	hex = bytes.TrimRight(hex, " \t")
	if len(hex) == 0 {
		return 0, ErrMalformedChunk
	}
	for _, c := range hex {
		if !isHexDigit(c) {
			return 0, ErrMalformedChunk
		}
	}
	return strconv.ParseInt(string(hex), 16, 64)
}

func (cr *chunkedReader) nextChunk() error {
	budget := maxChunkLineBytes
	line, err := readLine(cr.br, &budget)
	if err != nil {
		return cr.wrap(err)
	}

	// chunk extensions are ignored
	size, _, _ := bytes.Cut(line, []byte(";"))
	n, err := parseHexadecimal(size)
	if err != nil || n < 0 {
		return fmt.Errorf("%w: size %q", ErrMalformedChunk, size)
	}
	cr.remaining = n

	if n == 0 {
		return cr.skipTrailers()
	}
	return nil
}

// trailer fields are read and discarded
func (cr *chunkedReader) skipTrailers() error {
	budget := MaxHeaderBytes
	for {
		line, err := readLine(cr.br, &budget)
		if err != nil {
			return cr.wrap(err)
		}
		if len(line) == 0 {
			return io.EOF
		}
	}
}

func (cr *chunkedReader) chunkEnd() error {
	budget := 2
	line, err := readLine(cr.br, &budget)
	if err != nil {
		return cr.wrap(err)
	}
	if len(line) != 0 {
		return ErrMalformedChunk
	}
	return nil
}

func (cr *chunkedReader) wrap(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, ErrHeaderTooLarge) {
		return ErrMalformedChunk
	}
	return err
}

// Read implements the io.Reader interface.
func (cr *chunkedReader) Read(p []byte) (int, error) {
	if cr.err != nil {
		return 0, cr.err
	}

	if cr.remaining == 0 {
		if cr.err = cr.nextChunk(); cr.err != nil {
			return 0, cr.err
		}
	}

	if int64(len(p)) > cr.remaining {
		p = p[:cr.remaining]
	}
	n, err := cr.br.Read(p)
	cr.remaining -= int64(n)

	if cr.remaining == 0 && err == nil {
		err = cr.chunkEnd()
	}
	if errors.Is(err, io.EOF) {
		err = ErrIncompleteRequest
	}
	if err != nil {
		cr.err = err
	}
	return n, err
}
