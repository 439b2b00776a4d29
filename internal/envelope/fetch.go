package envelope

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/runvoy/runadapt/internal/canonical"
	"github.com/runvoy/runadapt/internal/constants"
	apperrors "github.com/runvoy/runadapt/internal/errors"
)

// ParseFetch converts a standard request object handed over by an edge
// runtime. The body is read unless the method is GET or HEAD. Repeated query
// keys are flattened to their last value.
func ParseFetch(r *http.Request) (canonical.Request, error) {
	var body []byte
	if r.Body != nil && r.Method != http.MethodGet && r.Method != http.MethodHead {
		read, err := io.ReadAll(r.Body)
		if err != nil {
			return canonical.Request{}, apperrors.ErrTransportRead(err)
		}
		body = read
	}

	req := ParseHTTP(r, body)
	req.Runtime = constants.RuntimeEdge
	req.Query = flattenQuery(req.Query)
	return req, nil
}

// ParseHTTP converts an *http.Request whose body has already been read.
// The native source address is the host part of r.RemoteAddr.
func ParseHTTP(r *http.Request, body []byte) canonical.Request {
	header := canonical.NormalizeMultiHeaders(r.Header)
	// net/http lifts Host out of the header map.
	if r.Host != "" && !header.Has("host") {
		header.Set("host", r.Host)
	}

	query := canonical.Values{}
	path := "/"
	if r.URL != nil {
		for k, vs := range r.URL.Query() {
			query[k] = vs
		}
		path = pathOrRoot(r.URL.Path)
	}

	if len(body) == 0 {
		body = nil
	}

	return canonical.Request{
		Method:     strings.ToUpper(r.Method),
		Path:       path,
		Header:     header,
		Query:      query,
		Body:       body,
		RemoteAddr: canonical.ExtractClientAddress(header, remoteHost(r.RemoteAddr)),
		RequestID:  header.Get(constants.HeaderRequestID),
		Runtime:    constants.RuntimeServer,
	}
}

// FormatFetch builds the standard response object for an edge runtime.
// Multi-valued headers are appended one value at a time.
func FormatFetch(resp canonical.Response) *http.Response {
	h := make(http.Header, resp.Header.Len())
	for _, k := range resp.Header.Keys() {
		for _, v := range resp.Header.Values(k) {
			h.Add(k, v)
		}
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", resp.StatusCode, resp.Reason()),
		StatusCode:    resp.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(resp.Body)),
		ContentLength: int64(len(resp.Body)),
	}
}

func flattenQuery(q canonical.Values) canonical.Values {
	out := make(canonical.Values, len(q))
	for k, vs := range q {
		if len(vs) > 0 {
			out[k] = []string{vs[len(vs)-1]}
		}
	}
	return out
}

func remoteHost(addr string) string {
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
