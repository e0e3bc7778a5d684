package client

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for a vCenter search client. It is typically
// populated by the hosting application; LoadConfig parses the equivalent
// YAML document.
type Config struct {
	// Server is the vCenter address. A bare host is accepted; the https
	// scheme and SDK path are applied during normalization.
	Server string `yaml:"server"`

	// Username for authentication.
	Username string `yaml:"username"`

	// Password for authentication. Treated as a secret: escaped before
	// embedding in XML and redacted from debug logs.
	Password string `yaml:"password"`

	// Insecure disables TLS certificate verification entirely. Lab use only.
	Insecure bool `yaml:"insecure"`

	// CACertPEM is an optional custom trust anchor, honored while
	// verification stays enabled.
	CACertPEM string `yaml:"ca_cert"`

	// TimeoutMS is the per-request timeout in milliseconds. Zero selects
	// the default; negative values are invalid.
	TimeoutMS int `yaml:"timeout_ms"`

	// Debug enables instance-scoped debug logging and traversal
	// diagnostics.
	Debug bool `yaml:"debug"`
}

// DefaultTimeout applies when TimeoutMS is zero.
const DefaultTimeout = 30 * time.Second

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server == "" {
		return errors.New("server is required")
	}
	if c.Username == "" {
		return errors.New("username is required")
	}
	if c.Password == "" {
		return errors.New("password is required")
	}
	if c.TimeoutMS < 0 {
		return fmt.Errorf("timeout_ms must be positive, got %d", c.TimeoutMS)
	}
	return nil
}

// Timeout returns the configured request timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutMS == 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// LoadConfig parses a YAML configuration document and validates it.
func LoadConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
