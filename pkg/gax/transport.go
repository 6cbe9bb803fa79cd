package gax

import (
	"context"
	"net/http"
)

// TransportRequest is one fully built HTTP request.
type TransportRequest struct {
	Method  string
	URL     string
	Headers http.Header
	// Body is the encoded JSON payload, or nil for no payload.
	Body []byte
}

// TransportResponse is a received response with its body fully read.
type TransportResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Transport sends requests. Any error it returns means no usable response
// was received.
type Transport interface {
	Send(ctx context.Context, req *TransportRequest) (*TransportResponse, error)
}
