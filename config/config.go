package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"restlab/logutils"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"
)

type Config struct {
	App struct {
		Name    string `mapstructure:"name"`
		Env     string `mapstructure:"env"`
		Port    int    `mapstructure:"port"`
		Version string `mapstructure:"version"`
	} `mapstructure:"app"`
	Postgres struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		DBName   string `mapstructure:"dbname"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		SSLMode  string `mapstructure:"sslmode"`
		TimeZone string `mapstructure:"timezone"`
	} `mapstructure:"postgres"`
	Database struct {
		Driver       string        `mapstructure:"driver"` // postgres or sqlite
		SQLitePath   string        `mapstructure:"sqlite_path"`
		MaxIdleConns int           `mapstructure:"max_idle_conns"`
		MaxOpenConns int           `mapstructure:"max_open_conns"`
		MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
		LogLevel     string        `mapstructure:"log_level"`
	} `mapstructure:"database"`
	Auth struct {
		SecretKey      string        `mapstructure:"secret_key"`
		TokenTTL       time.Duration `mapstructure:"token_ttl"`
		BcryptCost     int           `mapstructure:"bcrypt_cost"`
		LoginRate      int           `mapstructure:"login_rate"` // attempts per LoginWindow
		LoginWindow    time.Duration `mapstructure:"login_window"`
		RevokeInRedis  bool          `mapstructure:"revoke_in_redis"`
		RevokeKeyspace string        `mapstructure:"revoke_keyspace"`
	} `mapstructure:"auth"`
	Pagination struct {
		PerPage    int `mapstructure:"per_page"`
		MaxPerPage int `mapstructure:"max_per_page"`
	} `mapstructure:"pagination"`
	Upload struct {
		Dir               string   `mapstructure:"dir"`
		AllowedExtensions []string `mapstructure:"allowed_extensions"`
		MaxSize           int64    `mapstructure:"max_size"`
	} `mapstructure:"upload"`
	Log struct {
		Level      string `mapstructure:"level"`
		Format     string `mapstructure:"format"`
		File       string `mapstructure:"file"`
		MaxSize    int    `mapstructure:"max_size"`
		MaxBackups int    `mapstructure:"max_backups"`
		MaxAge     int    `mapstructure:"max_age"`
	} `mapstructure:"log"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	HTTP struct {
		AllowOrigins    []string      `mapstructure:"allow_origins"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"http"`
	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"metrics"`
}

var (
	once   sync.Once
	config *Config
)

// GetConfig returns the process wide configuration, loading it on first use.
func GetConfig() *Config {
	once.Do(func() {
		if config == nil {
			config = initConfig()
		}
	})
	return config
}

// SetConfig replaces the process wide configuration. Used by tests and the CLI.
func SetConfig(c *Config) {
	once.Do(func() {})
	config = c
}

func initConfig() *Config {
	c, err := Load("")
	if err != nil {
		logutils.Log.Error("init config: ", err)
		panic(err)
	}
	return c
}

// Load reads the config file (./etc/config.yaml unless path is given), then
// RESTLAB_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./etc")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("RESTLAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
		logutils.Log.Warn("no config file found, using defaults and environment")
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Default returns a config holding only the built-in defaults.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	c := &Config{}
	_ = v.Unmarshal(c)
	return c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "restlab")
	v.SetDefault("app.env", EnvDevelopment)
	v.SetDefault("app.port", 5000)
	v.SetDefault("app.version", "v1")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.dbname", "restlab")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "UTC")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.sqlite_path", "restlab.db")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("auth.secret_key", "")
	v.SetDefault("auth.token_ttl", 30*time.Minute)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.login_rate", 10)
	v.SetDefault("auth.login_window", time.Minute)
	v.SetDefault("auth.revoke_in_redis", false)
	v.SetDefault("auth.revoke_keyspace", "restlab:revoked:")

	v.SetDefault("pagination.per_page", 5)
	v.SetDefault("pagination.max_per_page", 100)

	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.allowed_extensions", []string{"jpg", "jpeg", "png", "gif"})
	v.SetDefault("upload.max_size", 8<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("http.allow_origins", []string{"*"})
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Auth.SecretKey == "" && c.App.Env != EnvTesting {
		return errors.New("auth.secret_key must be set (RESTLAB_AUTH_SECRET_KEY)")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Pagination.PerPage < 1 {
		return errors.New("pagination.per_page must be positive")
	}
	if c.Pagination.MaxPerPage < c.Pagination.PerPage {
		c.Pagination.MaxPerPage = c.Pagination.PerPage
	}
	return nil
}

// PostgresDSN builds the libpq connection string.
func (c *Config) PostgresDSN() string {
	p := c.Postgres
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		p.Host, p.User, p.Password, p.DBName, p.Port, p.SSLMode, p.TimeZone)
}

// APIPrefix is the mount point of every versioned route, e.g. /api/v1.
func (c *Config) APIPrefix() string {
	return "/api/" + c.App.Version
}

// ConfigureLogging applies the log section to the shared logger.
func (c *Config) ConfigureLogging() error {
	return logutils.Configure(logutils.Options{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		File:       c.Log.File,
		MaxSize:    c.Log.MaxSize,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAge,
	})
}
