package request

import "errors"

var (
	ErrMalformedRequestLine = errors.New("malformed request line")
	ErrIncompleteRequest    = errors.New("incomplete request")
	ErrUnsupportedVersion   = errors.New("unsupported http version")
	ErrHeaderTooLarge       = errors.New("request header section too large")

	ErrInvalidContentLength        = errors.New("invalid content-length")
	ErrAmbiguousFraming            = errors.New("both content-length and transfer-encoding present")
	ErrUnsupportedTransferEncoding = errors.New("last transfer coding is not chunked")
	ErrMalformedChunk              = errors.New("malformed chunk")
)
