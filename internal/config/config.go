package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gookit/validate"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Credits  CreditsConfig
	Catalog  CatalogConfig
	Suggest  SuggestConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Host            string        `validate:"required"`
	Port            int           `validate:"required|int|min:1|max:65535"`
	ShutdownTimeout time.Duration `validate:"required|min:1"`
}

type DatabaseConfig struct {
	Host        string `validate:"required"`
	Port        int    `validate:"required|int|min:1|max:65535"`
	User        string `validate:"required"`
	Password    string
	Name        string `validate:"required"`
	SSLMode     string `validate:"required|in:disable,allow,prefer,require,verify-ca,verify-full"`
	MaxConns    int32  `validate:"required|min:1"`
	MinConns    int32  `validate:"min:0"`
	AutoMigrate bool
}

// DSN renders the connection string for pgxpool.
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

type LoggerConfig struct {
	Level  string `validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Format string `validate:"required|in:json,text"`
}

type CreditsConfig struct {
	DefaultBalance int `validate:"min:0"`
}

type CatalogConfig struct {
	DefaultPageSize int           `validate:"required|min:1"`
	MaxPageSize     int           `validate:"required|min:1"`
	CursorCacheSize int           `validate:"required|min:524288"`
	CursorTTL       time.Duration `validate:"required|min:1"`
}

type SuggestConfig struct {
	URL          string        `validate:"required"`
	Timeout      time.Duration `validate:"required|min:1"`
	CacheSize    int           `validate:"required|min:524288"`
	CacheTTL     time.Duration `validate:"required|min:1"`
	ExcludedType string
	UserAgent    string `validate:"required"`
}

type MetricsConfig struct {
	Enabled bool
	Path    string `validate:"required"`
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("DATABASE_NAME", "map_catalog")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_CONNS", 10)
	v.SetDefault("DATABASE_MIN_CONNS", 1)
	v.SetDefault("DATABASE_AUTO_MIGRATE", true)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("CREDITS_DEFAULT_BALANCE", 5)
	v.SetDefault("CATALOG_DEFAULT_PAGE_SIZE", 20)
	v.SetDefault("CATALOG_MAX_PAGE_SIZE", 100)
	v.SetDefault("CATALOG_CURSOR_CACHE_SIZE", 16*1024*1024)
	v.SetDefault("CATALOG_CURSOR_TTL", "10m")
	v.SetDefault("SUGGEST_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("SUGGEST_TIMEOUT", "5s")
	v.SetDefault("SUGGEST_CACHE_SIZE", 8*1024*1024)
	v.SetDefault("SUGGEST_CACHE_TTL", "1h")
	v.SetDefault("SUGGEST_EXCLUDED_TYPE", "village")
	v.SetDefault("SUGGEST_USER_AGENT", "map-catalog-service/1.0")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_PATH", "/metrics")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DATABASE_HOST"),
			Port:        v.GetInt("DATABASE_PORT"),
			User:        v.GetString("DATABASE_USER"),
			Password:    v.GetString("DATABASE_PASSWORD"),
			Name:        v.GetString("DATABASE_NAME"),
			SSLMode:     v.GetString("DATABASE_SSLMODE"),
			MaxConns:    v.GetInt32("DATABASE_MAX_CONNS"),
			MinConns:    v.GetInt32("DATABASE_MIN_CONNS"),
			AutoMigrate: v.GetBool("DATABASE_AUTO_MIGRATE"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Credits: CreditsConfig{
			DefaultBalance: v.GetInt("CREDITS_DEFAULT_BALANCE"),
		},
		Catalog: CatalogConfig{
			DefaultPageSize: v.GetInt("CATALOG_DEFAULT_PAGE_SIZE"),
			MaxPageSize:     v.GetInt("CATALOG_MAX_PAGE_SIZE"),
			CursorCacheSize: v.GetInt("CATALOG_CURSOR_CACHE_SIZE"),
			CursorTTL:       v.GetDuration("CATALOG_CURSOR_TTL"),
		},
		Suggest: SuggestConfig{
			URL:          v.GetString("SUGGEST_URL"),
			Timeout:      v.GetDuration("SUGGEST_TIMEOUT"),
			CacheSize:    v.GetInt("SUGGEST_CACHE_SIZE"),
			CacheTTL:     v.GetDuration("SUGGEST_CACHE_TTL"),
			ExcludedType: v.GetString("SUGGEST_EXCLUDED_TYPE"),
			UserAgent:    v.GetString("SUGGEST_USER_AGENT"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
			Path:    v.GetString("METRICS_PATH"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section against its struct tags.
func (c *Config) Validate() error {
	sections := []struct {
		name string
		data any
	}{
		{"server", &c.Server},
		{"database", &c.Database},
		{"logger", &c.Logger},
		{"credits", &c.Credits},
		{"catalog", &c.Catalog},
		{"suggest", &c.Suggest},
		{"metrics", &c.Metrics},
	}
	for _, s := range sections {
		v := validate.Struct(s.data)
		if !v.Validate() {
			return fmt.Errorf("invalid %s config: %s", s.name, v.Errors.One())
		}
	}
	if c.Catalog.DefaultPageSize > c.Catalog.MaxPageSize {
		return fmt.Errorf("invalid catalog config: default page size %d exceeds max %d",
			c.Catalog.DefaultPageSize, c.Catalog.MaxPageSize)
	}
	return nil
}
