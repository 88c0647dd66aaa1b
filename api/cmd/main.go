package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/simulado-cea/simulado-service/internal/bootstrap"
	"github.com/simulado-cea/simulado-service/internal/logger"
)

const shutdownTimeout = 15 * time.Second

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
	Addr() string
}

type stdServer struct{ *http.Server }

func (s stdServer) Addr() string { return s.Server.Addr }

// serverBuilder returns the server plus a cleanup for whatever it opened.
type serverBuilder func() (httpServer, func(), error)

// Run serves until a signal arrives or the listener fails and returns the
// process exit code. Shutdown gets grace to drain in-flight requests.
func Run(build serverBuilder, sigCh <-chan os.Signal, lg zerolog.Logger, grace time.Duration) int {
	srv, cleanup, err := build()
	if err != nil {
		lg.Error().Err(err).Msg("bootstrap failed")
		return 1
	}
	if cleanup != nil {
		defer cleanup()
	}

	lg.Info().Str("addr", srv.Addr()).Str("version", version).Msg("listening")
	select {
	case err := <-serve(srv):
		lg.Error().Err(err).Msg("server crashed")
		return 1
	case sig := <-sigCh:
		lg.Info().Stringer("signal", sig).Msg("shutdown signal received")
	}

	drain(srv, lg, grace)
	lg.Info().Msg("shutdown complete")
	return 0
}

// serve starts the listener; the channel only receives unexpected errors.
func serve(srv httpServer) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

func drain(srv httpServer, lg zerolog.Logger, grace time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		lg.Error().Err(err).Dur("grace", grace).Msg("graceful shutdown failed, closing")
		_ = srv.Close()
	}
}

func fromBootstrap() (httpServer, func(), error) {
	srv, cleanup, err := bootstrap.NewServer()
	if err != nil {
		return nil, nil, err
	}
	return stdServer{srv}, cleanup, nil
}

func main() {
	// .env is optional; deployments pass the environment directly
	envErr := godotenv.Load()

	logger.Init()
	if envErr != nil {
		logger.Logger.Debug().Err(envErr).Msg("no .env file loaded")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	code := Run(fromBootstrap, sigCh, logger.Logger, shutdownTimeout)
	signal.Stop(sigCh)
	os.Exit(code)
}
