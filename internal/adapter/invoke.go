package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/runvoy/runadapt/internal/bridge"
	"github.com/runvoy/runadapt/internal/canonical"
	"github.com/runvoy/runadapt/internal/config"
	"github.com/runvoy/runadapt/internal/constants"
	apperrors "github.com/runvoy/runadapt/internal/errors"
	"github.com/runvoy/runadapt/internal/logger"
	"github.com/runvoy/runadapt/internal/metrics"

	"github.com/google/uuid"
)

// core is the lifecycle shared by every adapter.
type core struct {
	cfg     Config
	runtime constants.Runtime
	log     *slog.Logger
}

func newCore(cfg Config, runtime constants.Runtime) (core, error) {
	cfg, err := cfg.withDefaults(runtime)
	if err != nil {
		return core{}, err
	}
	return core{cfg: cfg, runtime: runtime, log: cfg.Logger}, nil
}

func (c *core) env() config.Accessor {
	return c.cfg.Env
}

func (c *core) exposeErrors() bool {
	return c.env().Mode() == constants.Development
}

// invoke runs the handler for req and returns the response to send.
// The handler runs in its own goroutine. When it overruns the timeout, or ctx
// ends first, before ending the response, the response is a 504 envelope and
// anything the handler writes afterwards is dropped.
func (c *core) invoke(ctx context.Context, req canonical.Request) canonical.Response {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	req.Runtime = c.runtime

	done := metrics.Start(string(c.runtime))
	start := time.Now()

	ctx = logger.WithRequestID(ctx, req.RequestID)
	log := logger.DeriveRequestLogger(ctx, c.log)
	log.Debug("invoking handler", append([]any{
		"method", req.Method,
		"path", req.Path,
		"remoteAddr", req.RemoteAddr,
		"hasBody", req.HasBody(),
	}, logger.GetDeadlineInfo(ctx)...)...)

	handlerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	state := bridge.NewState()
	w := state.Response()
	r := bridge.NewRequest(handlerCtx, req)

	result := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				result <- fmt.Errorf("handler panic: %v", p)
			}
		}()
		result <- c.cfg.Handler.ServeRuntime(w, r, req.Body)
	}()

	timer := time.NewTimer(c.cfg.Timeout)
	defer timer.Stop()

	select {
	case err := <-result:
		if err != nil {
			c.fail(log, state, apperrors.ErrHandler(err))
		} else {
			state.Seal()
		}
	case <-timer.C:
		c.fail(log, state, apperrors.ErrGatewayTimeout("handler timed out",
			fmt.Errorf("handler exceeded %s", c.cfg.Timeout)))
	case <-ctx.Done():
		c.fail(log, state, apperrors.ErrGatewayTimeout("handler timed out", ctx.Err()))
	}

	resp := state.Harvest()
	if err := resp.Validate(); err != nil {
		resp = c.replace(log, apperrors.ErrHandler(err))
	}

	done(resp.StatusCode)
	log.Info("request completed",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String())

	return resp
}

// fail answers with the envelope for appErr. A response the handler already
// ended stands, even when the handler errors or overruns afterwards.
func (c *core) fail(log *slog.Logger, state *bridge.State, appErr *apperrors.AppError) {
	timedOut := errors.Is(appErr, apperrors.ErrTimeout)
	switch {
	case timedOut:
		metrics.RecordTimeout(string(c.runtime))
	case errors.Is(appErr, apperrors.ErrHandlerFault):
		metrics.RecordFault(string(c.runtime))
	}

	if state.SealEnded() {
		log.Warn("keeping ended response", "code", appErr.Code, "cause", appErr.Cause)
		return
	}

	status, body := apperrors.Render(appErr, c.exposeErrors())
	state.Fail(status, body)
	if timedOut {
		log.Warn("handler timed out", "timeout", c.cfg.Timeout.String(), "cause", appErr.Cause)
		return
	}
	log.Error("handler failed", "error", appErr.Cause)
}

// replace discards a harvested response that cannot be sent and answers with
// the envelope for appErr instead.
func (c *core) replace(log *slog.Logger, appErr *apperrors.AppError) canonical.Response {
	state := bridge.NewState()
	c.fail(log, state, appErr)
	return state.Harvest()
}

// reject builds the response for a request refused before the handler ran.
func (c *core) reject(err error) canonical.Response {
	status, body := apperrors.Render(err, c.exposeErrors())
	metrics.RecordRejected(string(c.runtime), status)
	metrics.ObserveRequest(string(c.runtime), status, 0)

	c.log.Warn("request rejected",
		"status", status, "reason", apperrors.GetErrorMessage(err), "error", err)

	var h canonical.Header
	h.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	return canonical.Response{StatusCode: status, Header: h, Body: body}
}
