// Package bridge lets one handler run on every platform. It fabricates a
// request facade and a buffered response facade per invocation, records what
// the handler writes, and turns the recorded state into a canonical response.
package bridge

import (
	"net/http"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/runvoy/runadapt/internal/canonical"
	"github.com/runvoy/runadapt/internal/constants"
)

// State is the per-invocation scratch record behind a Response. It is never
// shared across invocations.
//
// The handler may still be running when the adapter gives up on it, so every
// field except the live header map is guarded by mu. Once sealed, handler
// writes are dropped and the first response produced wins.
type State struct {
	mu         sync.Mutex
	status     int
	statusText string
	header     http.Header
	order      []string
	body       []byte
	endHeader  http.Header
	ended      bool
	sealed     bool
	override   *canonical.Response
}

// NewState returns an empty state for one invocation.
func NewState() *State {
	return &State{header: make(http.Header)}
}

// Response returns the handler-facing facade over s.
func (s *State) Response() *Response {
	return &Response{state: s}
}

// Fail replaces whatever the handler wrote with an error response and seals
// the state. It reports false when the state was already sealed, in which
// case nothing changes.
func (s *State) Fail(status int, body []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		return false
	}

	var h canonical.Header
	h.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	s.override = &canonical.Response{
		StatusCode: status,
		Header:     h,
		Body:       slices.Clone(body),
	}
	s.sealed = true
	return true
}

// Seal stops accepting handler writes. It reports false when the state was
// already sealed.
func (s *State) Seal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		return false
	}
	s.sealed = true
	return true
}

// SealEnded seals the state when the handler has already ended the response
// and reports whether it did.
func (s *State) SealEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ended || s.sealed {
		return false
	}
	s.sealed = true
	return true
}

// Ended reports whether the handler called End or EndFunc.
func (s *State) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Harvest turns the recorded state into a canonical response. Without an
// explicit status the response is 200, and without a content type it is
// application/json. Header names are lower-cased; names written through
// WriteHead or SetHeader come first in the order they were first written,
// the rest follow sorted.
//
// Headers are taken as they stood when the handler called End. Unless the
// state was failed or ended, Harvest reads the handler's header map and must
// only be called once the handler has returned.
func (s *State) Harvest() canonical.Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.override != nil {
		resp := *s.override
		resp.Header = s.override.Header.Clone()
		return resp
	}

	status := s.status
	if status == 0 {
		status = http.StatusOK
	}

	header := s.header
	if s.endHeader != nil {
		header = s.endHeader
	}

	folded := make(map[string][]string, len(header))
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		key := strings.ToLower(name)
		folded[key] = header[name]
	}

	var h canonical.Header
	for _, key := range s.order {
		if vs, ok := folded[key]; ok && !h.Has(key) {
			h.Set(key, vs...)
		}
	}
	rest := make([]string, 0, len(folded))
	for key := range folded {
		if !h.Has(key) {
			rest = append(rest, key)
		}
	}
	slices.Sort(rest)
	for _, key := range rest {
		h.Set(key, folded[key]...)
	}

	if h.Get(constants.HeaderContentType) == "" {
		h.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}

	body := slices.Clone(s.body)
	return canonical.Response{
		StatusCode:      status,
		StatusText:      s.statusText,
		Header:          h,
		Body:            body,
		IsBase64Encoded: !utf8.Valid(body),
	}
}
