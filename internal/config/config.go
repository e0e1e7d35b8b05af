// Package config loads service configuration from a YAML file plus
// EXCHANGE_-prefixed environment variables, following the teacher's
// viper-based loader.
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the root configuration tree.
type Config struct {
	Server struct {
		Host            string        `mapstructure:"host"`
		Port            int           `mapstructure:"port"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"database"`

	Engine struct {
		MailboxSize      int           `mapstructure:"mailbox_size"`
		WorkerPoolSize   int           `mapstructure:"worker_pool_size"`
		SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`
		SnapshotDir      string        `mapstructure:"snapshot_dir"`
	} `mapstructure:"engine"`

	RateLimit struct {
		HTTPRequestsPerMinute int `mapstructure:"http_requests_per_minute"`
		OrdersPerSecondPerUser float64 `mapstructure:"orders_per_second_per_user"`
	} `mapstructure:"rate_limit"`

	Monitoring struct {
		LogLevel       string `mapstructure:"log_level"`
		PrometheusPort int    `mapstructure:"prometheus_port"`
	} `mapstructure:"monitoring"`
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads configuration from configPath (directory containing
// config.yaml), falling back to defaults and environment variables.
func Load(configPath string) (*Config, error) {
	var err error
	once.Do(func() {
		cfg = &Config{}
		setDefaults()

		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if configPath != "" {
			v.AddConfigPath(configPath)
		} else {
			v.AddConfigPath(".")
			v.AddConfigPath("./config")
			v.AddConfigPath("/etc/exchange-core")
		}

		v.AutomaticEnv()
		v.SetEnvPrefix("EXCHANGE")

		if readErr := v.ReadInConfig(); readErr != nil {
			if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
				err = fmt.Errorf("read config: %w", readErr)
				return
			}
		}

		if unmarshalErr := v.Unmarshal(cfg); unmarshalErr != nil {
			err = fmt.Errorf("unmarshal config: %w", unmarshalErr)
			return
		}
	})
	return cfg, err
}

func setDefaults() {
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Server.ShutdownTimeout = 10 * time.Second

	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Name = "exchange"
	cfg.Database.SSLMode = "disable"

	cfg.Engine.MailboxSize = 256
	cfg.Engine.WorkerPoolSize = 64
	cfg.Engine.SnapshotInterval = 30 * time.Second
	cfg.Engine.SnapshotDir = "./data/snapshots"

	cfg.RateLimit.HTTPRequestsPerMinute = 600
	cfg.RateLimit.OrdersPerSecondPerUser = 20

	cfg.Monitoring.LogLevel = "info"
	cfg.Monitoring.PrometheusPort = 9090
}

// DSN builds a postgres connection string from the database section.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password,
		c.Database.Name, c.Database.SSLMode)
}

// NewLogger builds a zap logger matching Monitoring.LogLevel.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	switch cfg.Monitoring.LogLevel {
	case "debug":
		return zap.NewDevelopment()
	default:
		return zap.NewProduction()
	}
}
