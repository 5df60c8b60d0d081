package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config defines uptime server configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"UPTIME_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"UPTIME_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"UPTIME_REDIS_ADDR"`
		Password string `yaml:"password" env:"UPTIME_REDIS_PASSWORD"`
		TTL      int    `yaml:"ttlSeconds" env:"UPTIME_REDIS_TTL"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret string `yaml:"jwtSecret" env:"UPTIME_JWT_SECRET"`
	} `yaml:"auth"`
	Engine struct {
		Workers int `yaml:"workers" env:"UPTIME_ENGINE_WORKERS"`
	} `yaml:"engine"`
	WS struct {
		WriteTimeout int `yaml:"writeTimeoutSeconds" env:"UPTIME_WS_WRITE_TIMEOUT"`
		PingInterval int `yaml:"pingIntervalSeconds" env:"UPTIME_WS_PING_INTERVAL"`
	} `yaml:"ws"`
}

// Load reads configuration via the shared loader and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8085"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.TTL = 3600

	if err := loadInto(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil, errors.New("config: redis addr required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8085"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// CacheTTL returns the redis entry lifetime as a duration.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return time.Hour
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// WSWriteTimeout returns the websocket write deadline.
func (c *Config) WSWriteTimeout() time.Duration {
	if c.WS.WriteTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.WS.WriteTimeout) * time.Second
}

// WSPingInterval returns the keepalive ping period.
func (c *Config) WSPingInterval() time.Duration {
	if c.WS.PingInterval <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.WS.PingInterval) * time.Second
}
