package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jonesrussell/north-cloud/interlinker/internal/injector"
	"github.com/jonesrussell/north-cloud/interlinker/internal/logger"
)

// Defaults.
const (
	DefaultServiceName     = "interlinker"
	DefaultPort            = 8090
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxBodyBytes    = 8 << 20
	DefaultLogFormat       = "json"
	maxPort                = 65535
)

// Config is the full interlinker configuration.
type Config struct {
	Service   ServiceConfig    `yaml:"service"`
	Server    ServerConfig     `yaml:"server"`
	Logging   LoggingConfig    `yaml:"logging"`
	Injection injector.Options `yaml:"injection"`
}

// ServiceConfig identifies the running service.
type ServiceConfig struct {
	Name    string `env:"SERVICE_NAME" yaml:"name"`
	Version string `env:"SERVICE_VERSION" yaml:"version"`
	Debug   bool   `env:"APP_DEBUG" yaml:"debug"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" yaml:"host"`
	Port            int           `env:"SERVER_PORT" yaml:"port"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" yaml:"read_timeout"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" yaml:"write_timeout"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `env:"SERVER_MAX_BODY_BYTES" yaml:"max_body_bytes"`
}

// Address returns host:port.
func (c *ServerConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Logger converts c to a logger configuration.
func (c *LoggingConfig) Logger() logger.Config {
	return logger.Config{Level: c.Level, Development: c.Format == "console"}
}

// Load reads path (optional), applies defaults and environment overrides,
// and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := LoadInto(path, cfg, (*Config).SetDefaults); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// SetDefaults fills every zero field.
func (c *Config) SetDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = DefaultServiceName
	}
	c.Server.SetDefaults()
	if c.Logging.Level == "" {
		c.Logging.Level = logger.DefaultLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	c.Injection = c.Injection.WithDefaults()
}

// SetDefaults fills zero server fields.
func (c *ServerConfig) SetDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return &ValidationError{Field: "server.port", Message: "must be between 1 and 65535"}
	}
	if c.Server.MaxBodyBytes < 0 {
		return &ValidationError{Field: "server.max_body_bytes", Message: "must not be negative"}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return &ValidationError{Field: "logging.level", Message: "must be one of: debug, info, warn, error, fatal"}
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return &ValidationError{Field: "logging.format", Message: "must be one of: json, console"}
	}
	if err := c.Injection.Validate(); err != nil {
		return &ValidationError{Field: "injection", Message: err.Error(), Err: err}
	}
	return nil
}
