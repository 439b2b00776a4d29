package app

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/runvoy/runadapt/internal/adapter"
	"github.com/runvoy/runadapt/internal/constants"

	"github.com/go-chi/chi/v5"
)

const maxSleep = 5 * time.Minute

// HealthResponse is returned by the health route.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// EnvResponse is returned by the env route.
type EnvResponse struct {
	adapter.EnvironmentSnapshot
	PersistentConnections bool `json:"persistentConnections"`
}

// ErrorResponse is the body of every error the sample application returns.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: *constants.GetVersion(),
	})
}

func (r *Router) handleGreet(w http.ResponseWriter, req *http.Request) {
	name := strings.TrimSpace(chi.URLParam(req, "name"))
	if name == "" {
		writeErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Hello, " + name + "!",
	})
}

// handleEcho answers 201 with the request body and the request's client
// address.
func (r *Router) handleEcho(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if ct := req.Header.Get("Content-Type"); ct != "" {
		w.Header().Set(constants.HeaderContentType, ct)
	}
	w.Header().Set("X-Client-Address", req.RemoteAddr)
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

func (r *Router) handleEnv(w http.ResponseWriter, _ *http.Request) {
	caps := r.capabilities()
	if caps == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "no adapter bound")
		return
	}

	writeJSON(w, http.StatusOK, EnvResponse{
		EnvironmentSnapshot:   caps.Environment(),
		PersistentConnections: caps.SupportsPersistentConnections(),
	})
}

// handleSleep waits ?ms= milliseconds or until the request is cancelled,
// which makes adapter timeouts easy to try out.
func (r *Router) handleSleep(w http.ResponseWriter, req *http.Request) {
	ms, err := strconv.Atoi(req.URL.Query().Get("ms"))
	if err != nil || ms < 0 {
		writeErrorResponse(w, http.StatusBadRequest, "ms must be a non-negative integer")
		return
	}

	d := min(time.Duration(ms)*time.Millisecond, maxSleep)
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		writeJSON(w, http.StatusOK, map[string]string{"slept": d.String()})
	case <-req.Context().Done():
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
