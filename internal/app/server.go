package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Start serves HTTP in the background. The returned channel is closed once a
// termination signal arrives; the caller then runs Stop.
func (a *App) Start() <-chan struct{} {
	done := make(chan struct{})

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve http server", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		a.awaitSignal()
		close(done)
		slog.Info("termination signal received")
	}()

	return done
}

// Serve runs the HTTP server on l. Used where the listener is owned by the
// caller, e.g. a random port.
func (a *App) Serve(l net.Listener) <-chan error {
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		errs <- a.httpServer.Serve(l)
	}()
	return errs
}

func (a *App) awaitSignal() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sig)

	select {
	case s := <-sig:
		slog.Info("received signal", "signal", s.String())
	case <-a.ctx.Done():
	}
	a.cancel()
}

// Stop drains HTTP first, then pending event writers, then releases
// resources in closer order.
func (a *App) Stop(ctx context.Context) {
	a.cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
	}

	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "error from goroutines executions", "error", err)
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "application gracefully shutdown")
}
