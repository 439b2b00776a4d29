package adapter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/runvoy/runadapt/internal/canonical"
	"github.com/runvoy/runadapt/internal/constants"
	"github.com/runvoy/runadapt/internal/envelope"
	apperrors "github.com/runvoy/runadapt/internal/errors"
	"github.com/runvoy/runadapt/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server hosts the handler on a long-running HTTP listener. It moves from
// stopped to listening on Start and back on Stop.
type Server struct {
	core

	router chi.Router

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	serveErr chan error
}

// NewServer creates the server adapter. Nothing is bound until Start.
func NewServer(cfg Config) (*Server, error) {
	c, err := newCore(cfg, constants.RuntimeServer)
	if err != nil {
		return nil, err
	}

	s := &Server{core: c}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	if s.cfg.MetricsPath != "" {
		router.Method(http.MethodGet, s.cfg.MetricsPath, metrics.Handler())
	}
	router.Handle("/*", http.HandlerFunc(s.serve))
	s.router = router

	return s, nil
}

// Start binds host:port and begins serving in the background. It returns once
// the socket is listening. Port 0 picks a free port, see Addr.
func (s *Server) Start(ctx context.Context, host string, port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return apperrors.ErrInvalidState("server is already listening")
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return apperrors.ErrBindFailure(addr, err)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
		IdleTimeout:       constants.ServerIdleTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	serveErr := make(chan error, 1)
	go func() {
		if serveErrValue := srv.Serve(ln); serveErrValue != nil && !errors.Is(serveErrValue, http.ErrServerClosed) {
			s.log.Error("server stopped unexpectedly", "error", serveErrValue)
			serveErr <- serveErrValue
		}
		close(serveErr)
	}()

	s.srv = srv
	s.listener = ln
	s.serveErr = serveErr

	s.log.Info("server listening", "addr", ln.Addr().String())
	return nil
}

// Stop stops accepting connections and waits for in-flight requests until ctx
// ends.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv == nil {
		return apperrors.ErrInvalidState("server is not listening")
	}

	err := s.srv.Shutdown(ctx)
	s.srv = nil
	s.listener = nil
	s.serveErr = nil

	if err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// Done returns a channel that yields the error that made the listener fail,
// and is closed once serving ends. It is nil while the server is stopped.
func (s *Server) Done() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serveErr
}

// Addr returns the bound address, or "" while stopped.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ServeHTTP runs the adapter's router without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SupportsPersistentConnections is true: the process serves many requests.
func (s *Server) SupportsPersistentConnections() bool {
	return true
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxBodyBytes
	if r.ContentLength > limit {
		s.rejectTooLarge(w, limit)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		writeResponse(w, s.reject(apperrors.ErrTransportRead(err)))
		return
	}
	if int64(len(body)) > limit {
		s.rejectTooLarge(w, limit)
		return
	}

	req := envelope.ParseHTTP(r, body)
	if req.RequestID == "" {
		req.RequestID = middleware.GetReqID(r.Context())
	}

	writeResponse(w, s.invoke(r.Context(), req))
}

// rejectTooLarge answers 413 and closes the connection so the rest of the
// body is never read.
func (s *Server) rejectTooLarge(w http.ResponseWriter, limit int64) {
	resp := s.reject(apperrors.ErrTooLarge(limit))

	hj, ok := w.(http.Hijacker)
	if !ok {
		w.Header().Set("Connection", "close")
		writeResponse(w, resp)
		return
	}

	conn, buf, err := hj.Hijack()
	if err != nil {
		s.log.Warn("failed to hijack connection", "error", err)
		w.Header().Set("Connection", "close")
		writeResponse(w, resp)
		return
	}
	defer conn.Close()

	if err := writeRaw(buf.Writer, resp); err != nil {
		s.log.Debug("failed to write 413 response", "error", err)
		return
	}
	lingeringClose(conn)
}

// lingeringClose half-closes conn and drains what the client is still
// sending, so closing does not reset the connection before the client has
// read the response.
func lingeringClose(conn net.Conn) {
	cw, ok := conn.(interface{ CloseWrite() error })
	if !ok {
		return
	}
	if err := cw.CloseWrite(); err != nil {
		return
	}
	_ = conn.SetReadDeadline(time.Now().Add(constants.LingeringCloseTimeout))
	_, _ = io.Copy(io.Discard, conn)
}

func writeResponse(w http.ResponseWriter, resp canonical.Response) {
	for _, name := range resp.Header.Keys() {
		for _, v := range resp.Header.Values(name) {
			w.Header().Add(name, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

func writeRaw(w *bufio.Writer, resp canonical.Response) error {
	fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", resp.StatusCode, resp.Reason())
	for _, name := range resp.Header.Keys() {
		for _, v := range resp.Header.Values(name) {
			fmt.Fprintf(w, "%s: %s\r\n", name, v)
		}
	}
	fmt.Fprintf(w, "content-length: %d\r\nconnection: close\r\n\r\n", len(resp.Body))
	if _, err := w.Write(resp.Body); err != nil {
		return err
	}
	return w.Flush()
}
