package adapter

import (
	"io"
	"net/http"

	"github.com/runvoy/runadapt/internal/constants"
	"github.com/runvoy/runadapt/internal/envelope"
)

// Edge hosts the handler on isolate runtimes that hand each request over as a
// standard request object and expect a response object back.
type Edge struct {
	core
}

// NewEdge creates the edge-runtime adapter.
func NewEdge(cfg Config) (*Edge, error) {
	c, err := newCore(cfg, constants.RuntimeEdge)
	if err != nil {
		return nil, err
	}
	return &Edge{core: c}, nil
}

// Fetch serves one request. Repeated query keys reach the handler as their
// last value.
func (e *Edge) Fetch(r *http.Request) *http.Response {
	req, err := envelope.ParseFetch(r)
	if err != nil {
		return envelope.FormatFetch(e.reject(err))
	}

	return envelope.FormatFetch(e.invoke(r.Context(), req))
}

// ServeHTTP writes the result of Fetch to w, for runtimes that accept an
// http.Handler.
func (e *Edge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res := e.Fetch(r)
	defer res.Body.Close()

	for name, values := range res.Header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.WriteHeader(res.StatusCode)
	if _, err := io.Copy(w, res.Body); err != nil {
		e.log.Warn("failed to write response body", "error", err)
	}
}

// SupportsPersistentConnections is false: isolates do not keep sockets
// between requests.
func (e *Edge) SupportsPersistentConnections() bool {
	return false
}
