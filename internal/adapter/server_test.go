package adapter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/runvoy/runadapt/internal/bridge"
	"github.com/runvoy/runadapt/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	s, err := NewServer(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background(), "127.0.0.1", 0))
	t.Cleanup(func() {
		if s.Addr() != "" {
			_ = s.Stop(context.Background())
		}
	})
	return s
}

func TestServer_Lifecycle(t *testing.T) {
	s, err := NewServer(testConfig(echo))
	require.NoError(t, err)

	assert.Empty(t, s.Addr())
	testutil.AssertAppErrorCode(t, s.Stop(context.Background()), "INVALID_STATE")

	require.NoError(t, s.Start(context.Background(), "127.0.0.1", 0))
	assert.NotEmpty(t, s.Addr())
	assert.NotNil(t, s.Done())
	testutil.AssertAppErrorCode(t, s.Start(context.Background(), "127.0.0.1", 0), "INVALID_STATE")

	require.NoError(t, s.Stop(context.Background()))
	assert.Empty(t, s.Addr())
	testutil.AssertAppErrorCode(t, s.Stop(context.Background()), "INVALID_STATE")

	// A stopped server can listen again.
	require.NoError(t, s.Start(context.Background(), "127.0.0.1", 0))
	require.NoError(t, s.Stop(context.Background()))
}

func TestServer_BindFailure(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	port := taken.Addr().(*net.TCPAddr).Port
	s, err := NewServer(testConfig(echo))
	require.NoError(t, err)

	err = s.Start(context.Background(), "127.0.0.1", port)
	require.Error(t, err)
	testutil.AssertAppErrorCode(t, err, "BIND_FAILURE")
	assert.Empty(t, s.Addr())
}

func TestServer_WriteHeadAndEnd(t *testing.T) {
	s := startTestServer(t, testConfig(created))

	res, err := http.Get("http://" + s.Addr() + "/anything")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "yes", res.Header.Get("X-Custom"))
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, readAll(t, res.Body))
}

func TestServer_EchoesBody(t *testing.T) {
	s := startTestServer(t, testConfig(echo))

	res, err := http.Post("http://"+s.Addr()+"/widgets", "application/json", strings.NewReader(`{"n":1}`))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, `{"n":1}`, readAll(t, res.Body))
}

func TestServer_RequestContext(t *testing.T) {
	var ip, id, method string
	var tags []string
	h := bridge.HandlerFunc(func(_ *bridge.Response, r *bridge.Request, _ []byte) error {
		ip, id, method = r.RemoteAddr, r.RequestID, r.Method
		tags = r.Query["tag"]
		return nil
	})
	s, err := NewServer(testConfig(h))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/x?tag=a&tag=b", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	s.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.1", ip)
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, []string{"a", "b"}, tags)
	assert.NotEmpty(t, id, "chi assigns a request id")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ""
	req.Header.Set("X-Request-Id", "from-client")
	req.Header.Set("X-Real-Ip", "198.51.100.3")
	s.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "from-client", id)
	assert.Equal(t, "198.51.100.3", ip)
}

func TestServer_HandlerErrorByMode(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		wantMessage string
	}{
		{name: "production", cfg: testConfig(failing(fmt.Errorf("secret detail")))},
		{name: "development", cfg: devConfig(failing(fmt.Errorf("secret detail"))), wantMessage: "secret detail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewServer(tt.cfg)
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			env := testutil.DecodeEnvelope(t, rec.Body.Bytes(), http.StatusInternalServerError)
			assert.Equal(t, tt.wantMessage, env.Message)
		})
	}
}

func TestServer_StatusOutOfRange(t *testing.T) {
	h := bridge.HandlerFunc(func(w *bridge.Response, _ *bridge.Request, _ []byte) error {
		w.WriteHead(1000, nil)
		w.End([]byte(`{}`))
		return nil
	})
	s, err := NewServer(testConfig(h))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	testutil.DecodeEnvelope(t, rec.Body.Bytes(), http.StatusInternalServerError)
}

func TestServer_Timeout(t *testing.T) {
	cfg := testConfig(stalling)
	cfg.Timeout = 50 * time.Millisecond
	s := startTestServer(t, cfg)

	start := time.Now()
	res, err := http.Get("http://" + s.Addr() + "/")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusGatewayTimeout, res.StatusCode)
	assert.Less(t, time.Since(start), cfg.Timeout+500*time.Millisecond)
}

// rawRequest writes req on a fresh connection and returns the response and
// whether the server closed the connection afterwards.
func rawRequest(t *testing.T, addr, req string) (*http.Response, bool) {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	_, err = io.WriteString(conn, req)
	require.NoError(t, err)

	reader := bufio.NewReader(conn)
	res, err := http.ReadResponse(reader, nil)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	res.Body = io.NopCloser(strings.NewReader(string(body)))

	_, err = reader.ReadByte()
	return res, err == io.EOF
}

func TestServer_PayloadTooLarge(t *testing.T) {
	cfg := testConfig(echo)
	cfg.MaxBodyBytes = 16
	s := startTestServer(t, cfg)

	t.Run("declared content length", func(t *testing.T) {
		res, closed := rawRequest(t, s.Addr(),
			"POST / HTTP/1.1\r\nHost: test\r\nContent-Length: 1000\r\n\r\n"+strings.Repeat("x", 32))

		assert.Equal(t, http.StatusRequestEntityTooLarge, res.StatusCode)
		assert.True(t, closed, "connection should be closed")
		testutil.DecodeEnvelope(t, []byte(readAll(t, res.Body)), http.StatusRequestEntityTooLarge)
	})

	t.Run("streamed body", func(t *testing.T) {
		chunk := strings.Repeat("y", 40)
		res, closed := rawRequest(t, s.Addr(), fmt.Sprintf(
			"POST / HTTP/1.1\r\nHost: test\r\nTransfer-Encoding: chunked\r\n\r\n%x\r\n%s\r\n0\r\n\r\n", len(chunk), chunk))

		assert.Equal(t, http.StatusRequestEntityTooLarge, res.StatusCode)
		assert.True(t, closed, "connection should be closed")
	})

	t.Run("within the cap", func(t *testing.T) {
		res, _ := rawRequest(t, s.Addr(),
			"POST / HTTP/1.1\r\nHost: test\r\nContent-Length: 5\r\nConnection: close\r\n\r\nhello")

		assert.Equal(t, http.StatusCreated, res.StatusCode)
		assert.Equal(t, "hello", readAll(t, res.Body))
	})
}

func TestServer_PayloadTooLargeWithoutHijack(t *testing.T) {
	cfg := testConfig(echo)
	cfg.MaxBodyBytes = 4
	s, err := NewServer(cfg)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too long")))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
}

func TestServer_MalformedChunkedBody(t *testing.T) {
	s := startTestServer(t, testConfig(echo))

	res, _ := rawRequest(t, s.Addr(),
		"POST / HTTP/1.1\r\nHost: test\r\nTransfer-Encoding: chunked\r\n\r\nzz\r\nnot a chunk\r\n")

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	testutil.DecodeEnvelope(t, []byte(readAll(t, res.Body)), http.StatusBadRequest)
}

func TestServer_MetricsPath(t *testing.T) {
	cfg := testConfig(created)
	cfg.MetricsPath = "/metrics"
	s, err := NewServer(cfg)
	require.NoError(t, err)

	s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `runadapt_adapter_requests_total{runtime="server",status="201"}`)
}

func TestServer_SupportsPersistentConnections(t *testing.T) {
	s, err := NewServer(testConfig(echo))
	require.NoError(t, err)
	assert.True(t, s.SupportsPersistentConnections())
}
