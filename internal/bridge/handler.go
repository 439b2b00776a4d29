package bridge

import (
	"bytes"
	"net/http"
	"slices"
)

// Handler is the application handler contract. Returning an error, or
// panicking, makes the adapter answer with a 500 envelope.
type Handler interface {
	ServeRuntime(w *Response, r *Request, body []byte) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(w *Response, r *Request, body []byte) error

// ServeRuntime calls f(w, r, body).
func (f HandlerFunc) ServeRuntime(w *Response, r *Request, body []byte) error {
	return f(w, r, body)
}

// FromHTTP runs an http.Handler, such as a chi router, behind the bridge.
// Writes made by the handler are accumulated the way net/http would and the
// result is handed to End once ServeHTTP returns.
func FromHTTP(h http.Handler) Handler {
	return HandlerFunc(func(w *Response, r *Request, body []byte) error {
		req, err := r.HTTPRequest(body)
		if err != nil {
			return err
		}

		bw := &bufferedWriter{res: w, header: make(http.Header)}
		h.ServeHTTP(bw, req)
		bw.WriteHeader(http.StatusOK)
		w.End(bw.buf.Bytes())
		return nil
	})
}

// bufferedWriter follows net/http: the first WriteHeader, or the first Write,
// fixes the status and the headers. Later changes to either are ignored.
type bufferedWriter struct {
	res         *Response
	header      http.Header
	wroteHeader bool
	buf         bytes.Buffer
}

func (b *bufferedWriter) Header() http.Header {
	return b.header
}

func (b *bufferedWriter) WriteHeader(statusCode int) {
	if b.wroteHeader {
		return
	}
	// Informational responses cannot be buffered.
	if statusCode >= 100 && statusCode < 200 && statusCode != http.StatusSwitchingProtocols {
		return
	}
	b.wroteHeader = true

	dst := b.res.Header()
	for name, values := range b.header {
		dst[name] = slices.Clone(values)
	}
	b.res.WriteHeader(statusCode)
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	b.WriteHeader(http.StatusOK)
	return b.buf.Write(p)
}
