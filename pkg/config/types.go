package config

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Config is the main configuration struct.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Security SecurityConfig `yaml:"security"`
	OAuth    OAuthConfig    `yaml:"oauth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds http, storage and tls settings.
type ServerConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
	DBPath  string `yaml:"db_path"`
	// CacheSize is the Pebble block cache size, human-readable
	// (e.g. "64MB"). Empty keeps the engine default.
	CacheSize string    `yaml:"cache_size"`
	TLS       TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate configuration.
type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// SecurityConfig holds security related settings.
type SecurityConfig struct {
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	// BootstrapAdmins lists external user ids promoted to admin when
	// they log in. This is how the first admin account comes to exist.
	BootstrapAdmins []uint64 `yaml:"bootstrap_admins"`
}

// OAuthConfig identifies this deployment to the external identity
// provider.
type OAuthConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	port := c.Server.Port
	if port == 0 {
		port = 3000
	}
	return fmt.Sprintf("%s:%d", c.Server.Address, port)
}

// CacheBytes parses the configured cache size. Zero means "engine
// default".
func (c *Config) CacheBytes() (int64, error) {
	if c.Server.CacheSize == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(c.Server.CacheSize)
	if err != nil {
		return 0, fmt.Errorf("invalid cache_size %q: %w", c.Server.CacheSize, err)
	}
	return int64(n), nil
}
