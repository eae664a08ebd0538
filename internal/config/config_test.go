package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Cheertaboi/flash-coupon-service/internal/cache"
	"github.com/Cheertaboi/flash-coupon-service/internal/reconcile"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 20.0, cfg.Policy.RedeemRadiusMeters)
	assert.Equal(t, 1000.0, cfg.Policy.ViewRadiusMeters)
	assert.Equal(t, reconcile.DefaultInterval, cfg.Reconcile.Interval)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  addr: ":9090"
storage:
  driver: sqlite
sqlite:
  path: ":memory:"
policy:
  redeem_radius_meters: 50
reconcile:
  interval: 5s
redis:
  ttl: 1m
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("COUPON_POLICY_VIEW_RADIUS_METERS", "2500")
	t.Setenv("COUPON_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, ":memory:", cfg.SQLite.Path)
	assert.Equal(t, 50.0, cfg.Policy.RedeemRadiusMeters)
	assert.Equal(t, 2500.0, cfg.Policy.ViewRadiusMeters)
	assert.Equal(t, 5*time.Second, cfg.Reconcile.Interval)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("COUPON_STORAGE_DRIVER", "cassandra")
		_, err := Load(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("mysql without dsn", func(t *testing.T) {
		t.Setenv("COUPON_STORAGE_DRIVER", "mysql")
		_, err := Load(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("redeem radius beyond view radius", func(t *testing.T) {
		t.Setenv("COUPON_POLICY_REDEEM_RADIUS_METERS", "2000")
		_, err := Load(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(&Config{Log: LogConfig{Level: "warn", Development: true}})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	_, err = NewLogger(&Config{Log: LogConfig{Level: "loud"}})
	assert.Error(t, err)
}

func TestProvideGate(t *testing.T) {
	gate := ProvideGate(&Config{Policy: PolicyConfig{RedeemRadiusMeters: 30, ViewRadiusMeters: 500}})
	assert.Equal(t, 30.0, gate.RedeemRadius)
	assert.Equal(t, 500.0, gate.ViewRadius)
}

func TestProvideStorageSQLite(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Driver: DriverSQLite}, SQLite: SQLiteConfig{Path: ":memory:"}}
	st, cleanup, err := ProvideStorage(cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, st.Coupons)
	assert.NotNil(t, st.Records)
}

func TestProvideWithoutRedis(t *testing.T) {
	cfg := &Config{}
	client, cleanup, err := ProvideRedisClient(cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, client)

	_, isMemory := ProvideCouponCache(cfg, client, ProvideClock(), zap.NewNop()).(*cache.MemoryCouponCache)
	assert.True(t, isMemory)

	sink, ok := ProvideRemovalSink(cfg, client, zap.NewNop()).(reconcile.MultiSink)
	require.True(t, ok)
	assert.Len(t, sink, 1)
}
