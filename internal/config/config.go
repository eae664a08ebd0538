package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Cheertaboi/flash-coupon-service/internal/proximity"
	"github.com/Cheertaboi/flash-coupon-service/internal/reconcile"
	"github.com/Cheertaboi/flash-coupon-service/pkg/db"
)

const (
	DefaultConfigFile = "./config.yaml"
	EnvPrefix         = "COUPON"
)

type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Storage   StorageConfig     `mapstructure:"storage"`
	Postgres  db.PostgresConfig `mapstructure:"postgres"`
	SQLite    SQLiteConfig      `mapstructure:"sqlite"`
	MySQL     MySQLConfig       `mapstructure:"mysql"`
	Redis     RedisConfig       `mapstructure:"redis"`
	Policy    PolicyConfig      `mapstructure:"policy"`
	Reconcile ReconcileConfig   `mapstructure:"reconcile"`
	Log       LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Channel  string        `mapstructure:"channel"`
}

type PolicyConfig struct {
	RedeemRadiusMeters float64 `mapstructure:"redeem_radius_meters"`
	ViewRadiusMeters   float64 `mapstructure:"view_radius_meters"`
}

type ReconcileConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("storage.driver", DriverMemory)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "coupons")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("sqlite.path", "coupons.db")
	v.SetDefault("mysql.dsn", "")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)
	v.SetDefault("redis.channel", "coupons:removed")

	v.SetDefault("policy.redeem_radius_meters", proximity.DefaultRedeemRadiusMeters)
	v.SetDefault("policy.view_radius_meters", proximity.DefaultViewRadiusMeters)

	v.SetDefault("reconcile.interval", reconcile.DefaultInterval)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads .env (if present), then the yaml file at path (if present), and
// lets COUPON_* environment variables override both.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverPostgres, DriverSQLite, DriverMySQL:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == DriverMySQL && c.MySQL.DSN == "" {
		return errors.New("mysql.dsn is required for the mysql driver")
	}
	if c.Policy.RedeemRadiusMeters <= 0 || c.Policy.ViewRadiusMeters <= 0 {
		return errors.New("policy radii must be positive")
	}
	if c.Policy.RedeemRadiusMeters > c.Policy.ViewRadiusMeters {
		return errors.New("policy.redeem_radius_meters must not exceed policy.view_radius_meters")
	}
	return nil
}
