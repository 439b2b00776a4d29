package canonical

import (
	"slices"
	"strings"
)

// Header is an ordered multimap of lower-cased header names.
// The zero value is an empty header ready to use.
type Header struct {
	keys   []string
	values map[string][]string
}

func (h *Header) init() {
	if h.values == nil {
		h.values = make(map[string][]string)
	}
}

// Set replaces the values stored under key. A key set again keeps its
// original position.
func (h *Header) Set(key string, values ...string) {
	h.init()
	key = strings.ToLower(key)
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = slices.Clone(values)
}

// Add appends value to the values stored under key.
func (h *Header) Add(key, value string) {
	h.init()
	key = strings.ToLower(key)
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = append(h.values[key], value)
}

// Get returns the first value stored under key, or "".
func (h *Header) Get(key string) string {
	if vs := h.values[strings.ToLower(key)]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Values returns a copy of the values stored under key.
func (h *Header) Values(key string) []string {
	return slices.Clone(h.values[strings.ToLower(key)])
}

// Has reports whether key is present.
func (h *Header) Has(key string) bool {
	_, ok := h.values[strings.ToLower(key)]
	return ok
}

// Del removes key.
func (h *Header) Del(key string) {
	key = strings.ToLower(key)
	if _, ok := h.values[key]; !ok {
		return
	}
	delete(h.values, key)
	h.keys = slices.DeleteFunc(h.keys, func(k string) bool { return k == key })
}

// Keys returns the header names in insertion order.
func (h *Header) Keys() []string {
	return slices.Clone(h.keys)
}

// Len returns the number of distinct header names.
func (h *Header) Len() int {
	return len(h.keys)
}

// Clone returns a deep copy of h.
func (h *Header) Clone() Header {
	var c Header
	for _, k := range h.keys {
		c.Set(k, h.values[k]...)
	}
	return c
}

// Map flattens the header to one string per name, joining multiple values with ",".
func (h *Header) Map() map[string]string {
	m := make(map[string]string, len(h.keys))
	for _, k := range h.keys {
		m[k] = strings.Join(h.values[k], ",")
	}
	return m
}

// MultiMap returns a copy of the header as name to values.
func (h *Header) MultiMap() map[string][]string {
	m := make(map[string][]string, len(h.keys))
	for _, k := range h.keys {
		m[k] = slices.Clone(h.values[k])
	}
	return m
}

// NormalizeHeaders lower-cases every key of raw. When two keys fold to the
// same name the later one wins. Keys are visited in sorted order so the
// outcome does not depend on map iteration.
func NormalizeHeaders(raw map[string]string) Header {
	var h Header
	for _, k := range sortedKeys(raw) {
		h.Set(k, raw[k])
	}
	return h
}

// NormalizeMultiHeaders is NormalizeHeaders for multi-valued header maps.
func NormalizeMultiHeaders(raw map[string][]string) Header {
	var h Header
	for _, k := range sortedKeys(raw) {
		h.Set(k, raw[k]...)
	}
	return h
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
