package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/runvoy/runadapt/internal/adapter"
	"github.com/runvoy/runadapt/internal/constants"
	apperrors "github.com/runvoy/runadapt/internal/errors"
	"github.com/runvoy/runadapt/internal/output"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sample application with the server adapter",
	Long: `Binds an HTTP listener and serves the sample application until SIGINT
or SIGTERM, then drains in-flight requests.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", -1, "Port to bind (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	env, err := getRuntimeEnv(cmd)
	if err != nil {
		return err
	}

	host, port := env.cfg.Host, env.cfg.Port
	if serveHost != "" {
		host = serveHost
	}
	if servePort >= 0 {
		port = servePort
	}

	cfg, router := env.adapterConfig()
	srv, err := adapter.NewServer(cfg)
	if err != nil {
		return err
	}
	router.Bind(srv)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = srv.Start(ctx, host, port); err != nil {
		if errors.Is(err, apperrors.ErrBind) {
			output.Warningf("Is another process already listening on %s:%d?", host, port)
		}
		return err
	}
	output.Successf("Listening on http://%s (Ctrl+C to stop)", srv.Addr())
	output.Infof("Health check: http://%s/api/v1/health", srv.Addr())

	return waitAndStop(ctx, srv)
}

// waitAndStop blocks until ctx ends or the listener fails, then stops srv.
func waitAndStop(ctx context.Context, srv *adapter.Server) error {
	done := srv.Done()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := <-done; err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		output.Infof("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
		defer cancel()
		return stopServer(shutdownCtx, srv)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	output.Successf("Server stopped")
	return nil
}

// stopServer drains srv. A server that is no longer listening is not an error.
func stopServer(ctx context.Context, srv *adapter.Server) error {
	err := srv.Stop(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrState):
		output.Warningf("Server was not listening")
		return nil
	default:
		output.Warningf("Shutdown did not complete: %v", err)
		return err
	}
}
