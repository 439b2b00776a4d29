// Package app is the sample application served by the runadapt CLI. It is an
// ordinary chi router, so the same code runs behind every adapter.
package app

import (
	"net/http"
	"sync"

	"github.com/runvoy/runadapt/internal/adapter"
	"github.com/runvoy/runadapt/internal/constants"

	"github.com/go-chi/chi/v5"
)

// Router holds the routes of the sample application.
type Router struct {
	router *chi.Mux

	mu   sync.RWMutex
	caps adapter.Capabilities
}

// NewRouter creates a new chi router with routes configured.
func NewRouter() *Router {
	r := chi.NewRouter()
	router := &Router{router: r}

	r.Use(setContentTypeJSON)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", router.handleHealth)
		r.Get("/greet/{name}", router.handleGreet)
		r.Post("/echo", router.handleEcho)
		r.Get("/env", router.handleEnv)
		r.Get("/sleep", router.handleSleep)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorResponse(w, http.StatusNotFound, "route not found")
	})

	return router
}

// Bind gives the routes access to the capabilities of the hosting adapter.
// The adapter is built from the router, so it is attached afterwards.
func (r *Router) Bind(caps adapter.Capabilities) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps = caps
}

func (r *Router) capabilities() adapter.Capabilities {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.caps
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// Handler returns an http.Handler for the router.
func (r *Router) Handler() http.Handler {
	return r.router
}

// setContentTypeJSON middleware sets Content-Type to application/json for all responses
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		next.ServeHTTP(w, req)
	})
}
