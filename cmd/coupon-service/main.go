package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	app, cleanup, err := InitializeApp()
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer cleanup()
	defer app.Logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, app); err != nil {
		app.Logger.Error("coupon-service stopped with error", zap.Error(err))
		return
	}
	app.Logger.Info("server stopped")
}

// run serves HTTP and watches for expiries until ctx is cancelled, then shuts
// the server down gracefully.
func run(ctx context.Context, app *App) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info("starting coupon-service", zap.String("addr", app.Server.Addr))
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return app.Watcher.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("HTTP server Shutdown", zap.Error(err))
			return err
		}
		return nil
	})

	return g.Wait()
}
