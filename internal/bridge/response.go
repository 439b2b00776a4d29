package bridge

import (
	"errors"
	"net/http"
	"slices"
	"strings"
)

// ErrResponseSent is returned by Write once the response has been ended or
// the adapter has already produced a response on the handler's behalf.
var ErrResponseSent = errors.New("response already sent")

// Response is the buffered response facade handed to handlers. It satisfies
// http.ResponseWriter so net/http style code can use it directly, and adds
// the WriteHead/End operations of the socket-style API.
//
// It is not a stream: Write replaces the body, so only the last chunk written
// before End is sent.
type Response struct {
	state *State
}

// Header returns the live header map. Handlers own it until they return.
func (r *Response) Header() http.Header {
	return r.state.header
}

// WriteHeader records the status code.
func (r *Response) WriteHeader(statusCode int) {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed() {
		return
	}
	s.status = statusCode
}

// WriteHead records the status code and merges header into the response.
func (r *Response) WriteHead(statusCode int, header map[string]string) {
	r.WriteHeadReason(statusCode, "", header)
}

// WriteHeadReason is WriteHead with an explicit reason phrase.
func (r *Response) WriteHeadReason(statusCode int, reason string, header map[string]string) {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed() {
		return
	}
	s.status = statusCode
	s.statusText = reason

	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		s.setHeader(name, header[name])
	}
}

// SetHeader sets a single header value.
func (r *Response) SetHeader(name, value string) {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed() {
		return
	}
	s.setHeader(name, value)
}

// Write stores chunk as the response body, replacing anything written before.
func (r *Response) Write(chunk []byte) (int, error) {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed() {
		return 0, ErrResponseSent
	}
	s.body = slices.Clone(chunk)
	return len(chunk), nil
}

// End finishes the response. A non-nil chunk becomes the body.
func (r *Response) End(chunk []byte) {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed() {
		return
	}
	if chunk != nil {
		s.body = slices.Clone(chunk)
	}
	s.endHeader = s.header.Clone()
	s.ended = true
}

// EndFunc finishes the response and then calls fn.
func (r *Response) EndFunc(fn func()) {
	r.End(nil)
	if fn != nil {
		fn()
	}
}

func (s *State) closed() bool {
	return s.sealed || s.ended
}

func (s *State) setHeader(name, value string) {
	s.header.Set(name, value)

	key := strings.ToLower(name)
	if !slices.Contains(s.order, key) {
		s.order = append(s.order, key)
	}
}
