package adapter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/runvoy/runadapt/internal/bridge"
	"github.com/runvoy/runadapt/internal/canonical"
	"github.com/runvoy/runadapt/internal/constants"
	apperrors "github.com/runvoy/runadapt/internal/errors"
	"github.com/runvoy/runadapt/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCore(t *testing.T, cfg Config) core {
	t.Helper()
	c, err := newCore(cfg, constants.RuntimeServer)
	require.NoError(t, err)
	return c
}

func TestNewCore_RequiresHandler(t *testing.T) {
	_, err := newCore(Config{}, constants.RuntimeServer)
	require.Error(t, err)
	testutil.AssertAppErrorCode(t, err, "INVALID_STATE")
}

func TestNewCore_Defaults(t *testing.T) {
	c, err := newCore(Config{Handler: echo}, constants.RuntimeEdge)
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultRequestTimeout, c.cfg.Timeout)
	assert.Equal(t, constants.DefaultMaxBodyBytes, c.cfg.MaxBodyBytes)
	assert.NotNil(t, c.log)
	assert.NotNil(t, c.cfg.Env)
}

func TestNewCore_CopiesConfig(t *testing.T) {
	cfg := testConfig(echo)
	c := newTestCore(t, cfg)

	cfg.Timeout = time.Hour
	assert.Equal(t, time.Second, c.cfg.Timeout)
}

func TestInvoke_Success(t *testing.T) {
	c := newTestCore(t, testConfig(created))

	resp := c.invoke(context.Background(), canonical.Request{Method: "GET", Path: "/"})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "yes", resp.Header.Get("x-custom"))
	assert.Equal(t, "application/json", resp.Header.Get("content-type"))
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
}

func TestInvoke_AssignsRequestID(t *testing.T) {
	var seen string
	h := bridge.HandlerFunc(func(w *bridge.Response, r *bridge.Request, _ []byte) error {
		seen = r.RequestID
		return nil
	})
	c := newTestCore(t, testConfig(h))

	c.invoke(context.Background(), canonical.Request{})
	assert.Len(t, seen, 36)

	c.invoke(context.Background(), canonical.Request{RequestID: "given"})
	assert.Equal(t, "given", seen)
}

func TestInvoke_HandlerError(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		wantMessage string
	}{
		{name: "production hides the message", cfg: testConfig(failing(errors.New("db exploded")))},
		{name: "development exposes the message", cfg: devConfig(failing(errors.New("db exploded"))), wantMessage: "db exploded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCore(t, tt.cfg)
			resp := c.invoke(context.Background(), canonical.Request{})

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("content-type"))
			env := testutil.DecodeEnvelope(t, resp.Body, http.StatusInternalServerError)
			assert.Equal(t, "Internal Server Error", env.Error)
			assert.Equal(t, tt.wantMessage, env.Message)
		})
	}
}

func TestInvoke_HandlerPanic(t *testing.T) {
	h := bridge.HandlerFunc(func(*bridge.Response, *bridge.Request, []byte) error {
		panic("kaboom")
	})
	c := newTestCore(t, devConfig(h))

	resp := c.invoke(context.Background(), canonical.Request{})

	env := testutil.DecodeEnvelope(t, resp.Body, http.StatusInternalServerError)
	assert.Contains(t, env.Message, "kaboom")
}

func TestInvoke_ErrorAfterEndKeepsResponse(t *testing.T) {
	h := bridge.HandlerFunc(func(w *bridge.Response, _ *bridge.Request, _ []byte) error {
		w.WriteHeader(http.StatusAccepted)
		w.End([]byte(`{}`))
		return errors.New("cleanup failed")
	})
	c := newTestCore(t, testConfig(h))

	resp := c.invoke(context.Background(), canonical.Request{})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestInvoke_Timeout(t *testing.T) {
	cfg := testConfig(stalling)
	cfg.Timeout = 50 * time.Millisecond
	c := newTestCore(t, cfg)

	start := time.Now()
	resp := c.invoke(context.Background(), canonical.Request{})
	elapsed := time.Since(start)

	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.Less(t, elapsed, cfg.Timeout+500*time.Millisecond)
	env := testutil.DecodeEnvelope(t, resp.Body, http.StatusGatewayTimeout)
	assert.Equal(t, "Gateway Timeout", env.Error)
	assert.Empty(t, env.Message)
}

func TestInvoke_ContextCancelled(t *testing.T) {
	c := newTestCore(t, testConfig(stalling))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := c.invoke(ctx, canonical.Request{})
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
}

func TestInvoke_EndedThenOverrunKeepsResponse(t *testing.T) {
	finished := make(chan struct{})
	h := bridge.HandlerFunc(func(w *bridge.Response, r *bridge.Request, _ []byte) error {
		defer close(finished)
		w.WriteHead(http.StatusCreated, map[string]string{"X-Id": "7"})
		w.End([]byte(`{"id":7}`))

		<-r.Context().Done()
		w.Header().Set("X-Late", "1")
		return nil
	})
	cfg := testConfig(h)
	cfg.Timeout = 20 * time.Millisecond
	c := newTestCore(t, cfg)

	resp := c.invoke(context.Background(), canonical.Request{})
	<-finished

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "7", resp.Header.Get("x-id"))
	assert.False(t, resp.Header.Has("x-late"))
	assert.JSONEq(t, `{"id":7}`, string(resp.Body))
}

func TestInvoke_StatusOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "above 599", status: 1000},
		{name: "below 100", status: 42},
		{name: "negative", status: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := bridge.HandlerFunc(func(w *bridge.Response, _ *bridge.Request, _ []byte) error {
				w.WriteHead(tt.status, map[string]string{"X-Custom": "yes"})
				w.End([]byte(`{"ok":true}`))
				return nil
			})
			c := newTestCore(t, devConfig(h))

			resp := c.invoke(context.Background(), canonical.Request{})

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("content-type"))
			assert.False(t, resp.Header.Has("x-custom"))
			env := testutil.DecodeEnvelope(t, resp.Body, http.StatusInternalServerError)
			assert.Contains(t, env.Message, "out of range")
		})
	}
}

func TestInvoke_LateWritesAreDropped(t *testing.T) {
	finished := make(chan struct{})
	h := bridge.HandlerFunc(func(w *bridge.Response, r *bridge.Request, _ []byte) error {
		defer close(finished)
		<-r.Context().Done()
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("late"))
		assert.ErrorIs(t, err, bridge.ErrResponseSent)
		return nil
	})
	cfg := testConfig(h)
	cfg.Timeout = 20 * time.Millisecond
	c := newTestCore(t, cfg)

	resp := c.invoke(context.Background(), canonical.Request{})
	<-finished

	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.NotContains(t, string(resp.Body), "late")
}

func TestReject(t *testing.T) {
	c := newTestCore(t, testConfig(echo))

	resp := c.reject(errors.New("plain error"))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("content-type"))
}

func TestInvoke_LogsRequestDetails(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(echo)
	cfg.Logger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := newTestCore(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	c.invoke(ctx, canonical.Request{Method: "POST", Path: "/", Body: []byte("{}")})

	out := buf.String()
	assert.Contains(t, out, `"hasBody":true`)
	assert.Contains(t, out, `"deadline_remaining"`)
	assert.NotContains(t, out, `"deadline":"none"`)

	buf.Reset()
	c.reject(apperrors.ErrTooLarge(10))
	assert.Contains(t, buf.String(), `"reason":"request body exceeds 10 bytes"`)
}
