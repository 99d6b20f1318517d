package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"neo-platform/pkg/database"
	"neo-platform/pkg/logging"
)

// EnvPrefix namespaces every environment override, e.g. NEO_DATABASE_HOST
const EnvPrefix = "NEO"

// Config is the complete runtime configuration shared by the CLI, ingester and API server
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Export   ExportConfig   `mapstructure:"export"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DataConfig locates the NASA catalog files
type DataConfig struct {
	NEOPath string `mapstructure:"neo_path"`
	CADPath string `mapstructure:"cad_path"`
}

// ExportConfig controls query result limits
type ExportConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// PostgresConfig converts the settings for database.NewPostgresDB
func (d DatabaseConfig) PostgresConfig() *database.Config {
	return &database.Config{
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		Database:        d.Database,
		SSLMode:         d.SSLMode,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
	}
}

// Address returns the host:port the API server listens on
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`

	// RateLimit is the per-client request rate in requests per second; 0 disables limiting
	RateLimit      float64  `mapstructure:"rate_limit"`
	RateBurst      int      `mapstructure:"rate_burst"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.neo_path", "data/neos.csv")
	v.SetDefault("data.cad_path", "data/cad.json")

	v.SetDefault("export.default_limit", 0)
	v.SetDefault("export.max_limit", 1000)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "neo")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "neo_catalog")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.conn_max_idle_time", "5m")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("logging.level", "info")
}

// LoadConfig reads neo.yaml from . or ./config when present, then applies NEO_* environment overrides
// A .env file in the working directory is loaded first; variables already set take precedence
func LoadConfig() (*Config, error) {
	return Load("")
}

// Load reads configuration from an explicit file, or searches the default locations when path is empty
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("neo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings every entrypoint relies on
func (c *Config) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Export.DefaultLimit < 0 {
		errs = append(errs, fmt.Errorf("export.default_limit must not be negative, got %d", c.Export.DefaultLimit))
	}
	if c.Export.MaxLimit < 1 {
		errs = append(errs, fmt.Errorf("export.max_limit must be positive, got %d", c.Export.MaxLimit))
	}

	return errors.Join(errs...)
}

// ValidateCatalog checks that both catalog files are configured
func (c *Config) ValidateCatalog() error {
	var errs []error
	if strings.TrimSpace(c.Data.NEOPath) == "" {
		errs = append(errs, errors.New("data.neo_path is required"))
	}
	if strings.TrimSpace(c.Data.CADPath) == "" {
		errs = append(errs, errors.New("data.cad_path is required"))
	}
	return errors.Join(errs...)
}

// ValidateDatabase checks the PostgreSQL settings used by the ingester and API server
func (c *Config) ValidateDatabase() error {
	var errs []error
	d := c.Database

	if d.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Errorf("database.port out of range: %d", d.Port))
	}
	if d.Database == "" {
		errs = append(errs, errors.New("database.database is required"))
	}
	if d.MaxOpenConns < 1 {
		errs = append(errs, fmt.Errorf("database.max_open_conns must be positive, got %d", d.MaxOpenConns))
	}
	if d.MaxIdleConns < 0 || d.MaxIdleConns > d.MaxOpenConns {
		errs = append(errs, fmt.Errorf("database.max_idle_conns must be between 0 and max_open_conns, got %d", d.MaxIdleConns))
	}

	return errors.Join(errs...)
}

// ValidateServer checks the HTTP listener settings
func (c *Config) ValidateServer() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must not be negative, got %g", c.Server.RateLimit))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("server.rate_burst must be positive when rate limiting, got %d", c.Server.RateBurst))
	}
	return errors.Join(errs...)
}

// LogLevel returns the configured level, falling back to info
func (c *Config) LogLevel() logging.LogLevel {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return logging.InfoLevel
	}
	return level
}
