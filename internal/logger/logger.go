package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/runvoy/runadapt/internal/config"
	"github.com/runvoy/runadapt/internal/constants"

	"github.com/lmittmann/tint"
)

// NewHandler returns the slog handler used for env: JSON in production,
// a colored console handler everywhere else.
func NewHandler(w io.Writer, env constants.Environment, level slog.Level) slog.Handler {
	if env == constants.Production {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}

	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})
}

// Initialize sets up the global slog logger based on the environment
func Initialize(env constants.Environment, level slog.Level) *slog.Logger {
	logger := slog.New(NewHandler(os.Stderr, env, level))
	slog.SetDefault(logger)
	slog.Debug("logger initialized", "env", env, "level", level)

	return logger
}

// defaults holds one lazily built logger per runtime. Each is created on first
// use and never replaced for the lifetime of the process.
var defaults = func() map[constants.Runtime]func() *slog.Logger {
	m := make(map[constants.Runtime]func() *slog.Logger, len(constants.Runtimes))
	for _, r := range constants.Runtimes {
		m[r] = sync.OnceValue(func() *slog.Logger { return newRuntimeLogger(r) })
	}
	return m
}()

// Default returns the process-wide default logger for runtime. Adapters call it
// once at construction when their configuration carries no logger.
func Default(runtime constants.Runtime) *slog.Logger {
	if f, ok := defaults[runtime]; ok {
		return f()
	}
	return slog.Default().With(constants.RuntimeLogField, string(runtime))
}

// newRuntimeLogger reads mode and level from the environment through the same
// bindings the CLI uses. An invalid environment falls back to production at
// info level.
func newRuntimeLogger(runtime constants.Runtime) *slog.Logger {
	env, level := constants.Production, slog.LevelInfo
	if cfg, err := config.Unmarshal(config.NewViper()); err == nil {
		env, level = cfg.Environment(), cfg.GetLogLevel()
	}

	return slog.New(NewHandler(os.Stderr, env, level)).With(constants.RuntimeLogField, string(runtime))
}
