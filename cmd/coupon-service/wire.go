//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/Cheertaboi/flash-coupon-service/internal/api"
	"github.com/Cheertaboi/flash-coupon-service/internal/api/handlers"
	"github.com/Cheertaboi/flash-coupon-service/internal/config"
	"github.com/Cheertaboi/flash-coupon-service/internal/ledger"
	"github.com/Cheertaboi/flash-coupon-service/internal/reconcile"
	"github.com/Cheertaboi/flash-coupon-service/internal/service"
)

func InitializeApp() (*App, func(), error) {

	wire.Build(
		config.ProvideApplicationConfig,
		config.NewLogger,
		config.ProvideClock,
		config.ProvideGate,
		config.ProvideStorage,
		config.ProvideRedisClient,
		config.ProvideCouponCache,
		config.ProvideCouponRepository,
		config.ProvideUserCouponRepository,
		config.ProvideRemovalSink,
		ledger.NewLedger,
		service.NewCouponService,
		handlers.NewCouponHandler,
		api.NewRouter,
		reconcile.NewNotifier,
		config.ProvideWatcher,
		config.ProvideServer,
		NewApp,
	)

	return &App{}, nil, nil
}
