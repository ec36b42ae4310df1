package request

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// readLine reads one line terminated by "\n" (optionally preceded by "\r")
// and returns it without the terminator. budget is decremented by the bytes
// consumed; exceeding it yields ErrHeaderTooLarge.
//
// The returned slice is only valid until the next read on br.
func readLine(br *bufio.Reader, budget *int) ([]byte, error) {
	var long []byte
	for {
		frag, err := br.ReadSlice('\n')
		*budget -= len(frag)
		if *budget < 0 {
			return nil, ErrHeaderTooLarge
		}

		switch {
		case err == nil:
			if long != nil {
				frag = append(long, frag...)
			}
			frag = frag[:len(frag)-1]
			return bytes.TrimSuffix(frag, []byte("\r")), nil
		case errors.Is(err, bufio.ErrBufferFull):
			long = append(long, frag...)
		case errors.Is(err, io.EOF):
			if len(long) == 0 && len(frag) == 0 {
				return nil, io.EOF
			}
			return nil, ErrIncompleteRequest
		default:
			return nil, err
		}
	}
}
