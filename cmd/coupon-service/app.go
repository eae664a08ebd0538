package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Cheertaboi/flash-coupon-service/internal/reconcile"
)

// App is everything main needs to run: the HTTP server and the expiry watcher.
type App struct {
	Server  *http.Server
	Watcher *reconcile.Watcher
	Logger  *zap.Logger
}

func NewApp(server *http.Server, watcher *reconcile.Watcher, logger *zap.Logger) *App {
	return &App{Server: server, Watcher: watcher, Logger: logger}
}
