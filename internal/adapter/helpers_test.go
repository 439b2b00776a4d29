package adapter

import (
	"time"

	"github.com/runvoy/runadapt/internal/bridge"
	"github.com/runvoy/runadapt/internal/config"
	"github.com/runvoy/runadapt/internal/constants"
	"github.com/runvoy/runadapt/internal/testutil"
)

func testConfig(h bridge.Handler) Config {
	return Config{
		Handler: h,
		Timeout: time.Second,
		Logger:  testutil.SilentLogger(),
		Env:     config.Static{Env: constants.Production, Kind: "none"},
	}
}

func devConfig(h bridge.Handler) Config {
	cfg := testConfig(h)
	cfg.Env = config.Static{Env: constants.Development, Kind: "none"}
	return cfg
}

// created answers 201 through WriteHead and End.
var created = bridge.HandlerFunc(func(w *bridge.Response, _ *bridge.Request, _ []byte) error {
	w.WriteHead(201, map[string]string{"X-Custom": "yes"})
	w.End([]byte(`{"ok":true}`))
	return nil
})

// echo answers 201 with the request body.
var echo = bridge.HandlerFunc(func(w *bridge.Response, _ *bridge.Request, body []byte) error {
	w.WriteHeader(201)
	w.End(body)
	return nil
})

func failing(err error) bridge.Handler {
	return bridge.HandlerFunc(func(*bridge.Response, *bridge.Request, []byte) error {
		return err
	})
}

// stalling blocks until the request context ends, then tries to answer 200.
var stalling = bridge.HandlerFunc(func(w *bridge.Response, r *bridge.Request, _ []byte) error {
	select {
	case <-r.Context().Done():
	case <-time.After(5 * time.Second):
	}
	w.End([]byte(`{"late":true}`))
	return nil
})
