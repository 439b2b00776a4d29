// Package adapter hosts one bridge.Handler on every supported runtime: AWS
// Lambda (API Gateway v1, v2 and ALB events), edge isolates that hand over a
// standard request object, and a long-running HTTP server.
package adapter

import (
	"log/slog"
	"time"

	"github.com/runvoy/runadapt/internal/bridge"
	"github.com/runvoy/runadapt/internal/config"
	"github.com/runvoy/runadapt/internal/constants"
	apperrors "github.com/runvoy/runadapt/internal/errors"
	"github.com/runvoy/runadapt/internal/logger"
)

// Config configures an adapter. The adapter keeps its own copy, so changing
// a Config after construction has no effect.
type Config struct {
	// Handler is the application handler. Required.
	Handler bridge.Handler
	// Timeout bounds each invocation. Defaults to 30s.
	Timeout time.Duration
	// MaxBodyBytes caps request bodies read by the server adapter.
	// Defaults to 10 MiB.
	MaxBodyBytes int64
	// Logger defaults to the process-wide logger of the adapter's runtime.
	Logger *slog.Logger
	// Env supplies the mode and database facts. Defaults to the RUNADAPT_*
	// environment.
	Env config.Accessor
	// MetricsPath, when set, serves Prometheus metrics on the server adapter.
	MetricsPath string
}

// FromConfig maps loaded configuration onto an adapter Config.
func FromConfig(cfg *config.Config, handler bridge.Handler) Config {
	return Config{
		Handler:      handler,
		Timeout:      cfg.RequestTimeout,
		MaxBodyBytes: cfg.MaxBodyBytes,
		MetricsPath:  cfg.MetricsPath,
	}
}

func (c Config) withDefaults(runtime constants.Runtime) (Config, error) {
	if c.Handler == nil {
		return Config{}, apperrors.ErrInvalidState("adapter config requires a handler")
	}
	if c.Timeout <= 0 {
		c.Timeout = constants.DefaultRequestTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = constants.DefaultMaxBodyBytes
	}
	if c.Logger == nil {
		c.Logger = logger.Default(runtime)
	}
	if c.Env == nil {
		c.Env = config.FromEnvironment()
	}
	return c, nil
}
