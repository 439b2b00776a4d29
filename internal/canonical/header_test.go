package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeader_SetAddGet(t *testing.T) {
	var h Header

	h.Set("Content-Type", "application/json")
	h.Add("Set-Cookie", "a=1")
	h.Add("SET-COOKIE", "b=2")

	assert.Equal(t, "application/json", h.Get("content-type"))
	assert.Equal(t, []string{"a=1", "b=2"}, h.Values("set-cookie"))
	assert.Equal(t, []string{"content-type", "set-cookie"}, h.Keys())
	assert.True(t, h.Has("Set-Cookie"))
	assert.Empty(t, h.Get("missing"))
}

func TestHeader_SetKeepsPosition(t *testing.T) {
	var h Header
	h.Set("a", "1")
	h.Set("b", "2")
	h.Set("A", "3")

	assert.Equal(t, []string{"a", "b"}, h.Keys())
	assert.Equal(t, "3", h.Get("a"))
}

func TestHeader_Del(t *testing.T) {
	var h Header
	h.Set("a", "1")
	h.Set("b", "2")
	h.Del("A")
	h.Del("missing")

	assert.Equal(t, []string{"b"}, h.Keys())
	assert.False(t, h.Has("a"))
	assert.Equal(t, 1, h.Len())
}

func TestHeader_CloneIsDeep(t *testing.T) {
	var h Header
	h.Set("x", "1")

	c := h.Clone()
	c.Add("x", "2")
	c.Set("y", "3")

	assert.Equal(t, []string{"1"}, h.Values("x"))
	assert.False(t, h.Has("y"))
}

func TestHeader_Maps(t *testing.T) {
	var h Header
	h.Set("accept", "text/html", "application/json")
	h.Set("x-id", "7")

	assert.Equal(t, map[string]string{"accept": "text/html,application/json", "x-id": "7"}, h.Map())
	assert.Equal(t, map[string][]string{"accept": {"text/html", "application/json"}, "x-id": {"7"}}, h.MultiMap())
}

func TestNormalizeHeaders_CaseInsensitive(t *testing.T) {
	upper := NormalizeHeaders(map[string]string{"X-Foo": "1"})
	lower := NormalizeHeaders(map[string]string{"x-foo": "1"})

	assert.Equal(t, lower, upper)
	assert.Equal(t, []string{"x-foo"}, upper.Keys())
}

func TestNormalizeHeaders_Idempotent(t *testing.T) {
	raw := map[string]string{
		"Content-Type":    "application/json",
		"X-Forwarded-For": "1.2.3.4",
		"accept":          "*/*",
	}

	once := NormalizeHeaders(raw)
	twice := NormalizeHeaders(once.Map())

	assert.Equal(t, once.Map(), twice.Map())
	assert.ElementsMatch(t, once.Keys(), twice.Keys())
}

func TestNormalizeHeaders_CollisionIsDeterministic(t *testing.T) {
	raw := map[string]string{"X-Foo": "upper", "x-foo": "lower"}

	for range 20 {
		h := NormalizeHeaders(raw)
		assert.Equal(t, 1, h.Len())
		// "X-Foo" sorts before "x-foo", so the lower-case spelling is visited last.
		assert.Equal(t, "lower", h.Get("x-foo"))
	}
}

func TestNormalizeMultiHeaders(t *testing.T) {
	h := NormalizeMultiHeaders(map[string][]string{"Accept": {"a", "b"}})

	assert.Equal(t, []string{"a", "b"}, h.Values("accept"))
}
