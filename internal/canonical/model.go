// Package canonical holds the platform-agnostic request and response shapes
// every adapter converges on, and the pure helpers that normalise headers and
// client addresses into them.
package canonical

import (
	"fmt"
	"net/http"

	"github.com/runvoy/runadapt/internal/constants"
)

// Values maps a query key to its ordered values.
type Values map[string][]string

// Get returns the first value for key, or "".
func (v Values) Get(key string) string {
	if vs := v[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Request is the normalised inbound request.
type Request struct {
	// Method is always upper-case.
	Method string
	// Path never includes the query string.
	Path   string
	Header Header
	Query  Values
	// Body is nil when no body was sent. Empty bodies are also nil.
	Body       []byte
	RemoteAddr string

	RequestID string
	Runtime   constants.Runtime
}

// HasBody reports whether the request carried a non-empty body.
func (r *Request) HasBody() bool {
	return r.Body != nil
}

// Response is the normalised outbound response.
type Response struct {
	StatusCode int
	// StatusText is the optional reason phrase given by the handler.
	StatusText string
	Header     Header
	Body       []byte
	// IsBase64Encoded is only meaningful to formatters that declare encoding explicitly.
	IsBase64Encoded bool
}

// Reason returns StatusText, or the standard reason phrase for StatusCode.
func (r *Response) Reason() string {
	if r.StatusText != "" {
		return r.StatusText
	}
	return http.StatusText(r.StatusCode)
}

// Validate checks the fields formatters rely on.
func (r *Response) Validate() error {
	if r.StatusCode < 100 || r.StatusCode > 599 {
		return fmt.Errorf("status code %d out of range", r.StatusCode)
	}
	return nil
}
