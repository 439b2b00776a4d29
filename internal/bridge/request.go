package bridge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/runvoy/runadapt/internal/canonical"
	"github.com/runvoy/runadapt/internal/constants"
)

// Request is the request facade handed to handlers.
type Request struct {
	Method string
	Path   string
	Header canonical.Header
	Query  canonical.Values
	// RemoteAddr is the resolved client IP without a port.
	RemoteAddr string
	RequestID  string
	Runtime    constants.Runtime

	ctx context.Context
}

// NewRequest builds the facade for req.
func NewRequest(ctx context.Context, req canonical.Request) *Request {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Request{
		Method:     req.Method,
		Path:       req.Path,
		Header:     req.Header.Clone(),
		Query:      req.Query,
		RemoteAddr: req.RemoteAddr,
		RequestID:  req.RequestID,
		Runtime:    req.Runtime,
		ctx:        ctx,
	}
}

// Context returns the invocation context. It is cancelled when the adapter
// stops waiting for the handler.
func (r *Request) Context() context.Context {
	return r.ctx
}

// HTTPRequest builds the equivalent *http.Request carrying body.
func (r *Request) HTTPRequest(body []byte) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	u := url.URL{Path: r.Path, RawQuery: url.Values(r.Query).Encode()}
	if u.Path == "" {
		u.Path = "/"
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(r.ctx, method, u.RequestURI(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build http request: %w", err)
	}

	for _, name := range r.Header.Keys() {
		for _, v := range r.Header.Values(name) {
			req.Header.Add(name, v)
		}
	}
	if host := r.Header.Get("host"); host != "" {
		req.Host = host
	}
	req.RemoteAddr = r.RemoteAddr
	req.RequestURI = u.RequestURI()

	return req, nil
}
