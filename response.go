package fluent

import (
	"bytes"
	"io"
	"net/http"
)

// Response pairs a decoded body with the transport-level response
// metadata. Once returned it belongs to the caller; the library holds no
// reference and performs no further mutation.
type Response[T any] struct {
	// Data is the decoded body. It is meaningful only when Decoded is
	// true.
	Data T

	// Decoded reports whether a body was decoded. It is false when the
	// target shape is None, when the transport returned no payload, or
	// when a zero-length payload met a structured target shape.
	Decoded bool

	// RawBody is the exact payload read from the transport, possibly
	// empty.
	RawBody []byte

	StatusCode int
	Headers    http.Header

	// Raw is the underlying transport response. Its Body is replaced
	// with a reader over RawBody, so it can be read again without
	// touching the network.
	Raw *http.Response
}

// Body returns the decoded body and whether one is present.
func (r *Response[T]) Body() (T, bool) {
	return r.Data, r.Decoded
}

// IsError reports whether the response carries an HTTP error status.
func (r *Response[T]) IsError() bool {
	return r.StatusCode >= 400
}

func newResponse[T any](raw *http.Response, payload []byte, data T, decoded bool) *Response[T] {
	raw.Body = io.NopCloser(bytes.NewReader(payload))
	return &Response[T]{
		Data:       data,
		Decoded:    decoded,
		RawBody:    payload,
		StatusCode: raw.StatusCode,
		Headers:    raw.Header,
		Raw:        raw,
	}
}
