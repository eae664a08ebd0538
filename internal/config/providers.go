package config

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/Cheertaboi/flash-coupon-service/internal/cache"
	"github.com/Cheertaboi/flash-coupon-service/internal/clock"
	"github.com/Cheertaboi/flash-coupon-service/internal/proximity"
	"github.com/Cheertaboi/flash-coupon-service/internal/reconcile"
	"github.com/Cheertaboi/flash-coupon-service/internal/repository"
	"github.com/Cheertaboi/flash-coupon-service/internal/service"
	"github.com/Cheertaboi/flash-coupon-service/pkg/db"
)

// ProvideApplicationConfig loads the file named by COUPON_CONFIG, falling back
// to ./config.yaml.
func ProvideApplicationConfig() (*Config, error) {
	path := os.Getenv("COUPON_CONFIG")
	if path == "" {
		path = DefaultConfigFile
	}
	return Load(path)
}

func NewLogger(cfg *Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Log.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func ProvideClock() clock.Clock {
	return clock.Real{}
}

func ProvideGate(cfg *Config) proximity.Gate {
	return proximity.NewGate(cfg.Policy.RedeemRadiusMeters, cfg.Policy.ViewRadiusMeters)
}

// Storage is the pair of stores backing the catalog and the ledger.
type Storage struct {
	Coupons repository.CouponRepository
	Records repository.UserCouponRepository
}

// ProvideStorage opens the configured backend and migrates its schema.
func ProvideStorage(cfg *Config, logger *zap.Logger) (*Storage, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.Storage.Driver {
	case DriverPostgres:
		conn, err := db.NewPostgresConnection(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := repository.MigratePostgres(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		logger.Info("storage ready", zap.String("driver", DriverPostgres), zap.String("host", cfg.Postgres.Host))
		return &Storage{
			Coupons: repository.NewCouponRepo(conn),
			Records: repository.NewUserCouponRepo(conn),
		}, func() { conn.Close() }, nil

	case DriverSQLite, DriverMySQL:
		gdb, err := openGorm(cfg)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("gorm pool: %w", err)
		}
		if err := repository.AutoMigrateGorm(gdb); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		logger.Info("storage ready", zap.String("driver", cfg.Storage.Driver))
		return &Storage{
			Coupons: repository.NewGormCouponRepo(gdb),
			Records: repository.NewGormUserCouponRepo(gdb),
		}, func() { sqlDB.Close() }, nil

	default:
		logger.Info("storage ready", zap.String("driver", DriverMemory))
		return &Storage{
			Coupons: repository.NewMemoryCouponRepo(),
			Records: repository.NewMemoryUserCouponRepo(),
		}, func() {}, nil
	}
}

func openGorm(cfg *Config) (*gorm.DB, error) {
	if cfg.Storage.Driver == DriverMySQL {
		return db.NewMySQLConnection(cfg.MySQL.DSN)
	}
	return db.NewSQLiteConnection(cfg.SQLite.Path)
}

// ProvideRedisClient returns a nil client when redis is disabled.
func ProvideRedisClient(cfg *Config, logger *zap.Logger) (*redis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}
	logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	return client, func() { client.Close() }, nil
}

func ProvideCouponCache(cfg *Config, client *redis.Client, clk clock.Clock, logger *zap.Logger) cache.CouponCache {
	if client == nil {
		return cache.NewMemoryCouponCache()
	}
	return cache.NewRedisCouponCache(client, cfg.Redis.TTL, clk, logger)
}

func ProvideCouponRepository(st *Storage, c cache.CouponCache) repository.CouponRepository {
	return cache.NewCachedCouponRepo(st.Coupons, c)
}

func ProvideUserCouponRepository(st *Storage) repository.UserCouponRepository {
	return st.Records
}

// ProvideRemovalSink always logs removals and also publishes them when redis
// is available.
func ProvideRemovalSink(cfg *Config, client *redis.Client, logger *zap.Logger) reconcile.Sink {
	sinks := reconcile.MultiSink{reconcile.NewLogSink(logger)}
	if client != nil {
		sinks = append(sinks, reconcile.NewRedisSink(client, cfg.Redis.Channel))
	}
	return sinks
}

func ProvideWatcher(cfg *Config, svc *service.CouponService, n *reconcile.Notifier, clk clock.Clock, logger *zap.Logger) *reconcile.Watcher {
	return reconcile.NewWatcher(svc, n, clk, cfg.Reconcile.Interval, logger)
}

// ProvideServer wraps the router with CORS and the server timeouts.
func ProvideServer(cfg *Config, router http.Handler) *http.Server {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      c.Handler(router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
