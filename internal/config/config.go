// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

// Package config loads server configuration from a YAML file and the
// environment. Every key can be overridden with a PASSWORDLESS_ variable,
// e.g. PASSWORDLESS_SERVER_PORT or PASSWORDLESS_CEREMONY_RP_ID.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JohanEkblad/passwordless/pkg/ceremony"
)

// Config represents the complete server configuration.
type Config struct {
	Server   ServerConfig    `yaml:"server" json:"server" mapstructure:"server"`
	Logging  LoggingConfig   `yaml:"logging" json:"logging" mapstructure:"logging"`
	Metrics  MetricsConfig   `yaml:"metrics" json:"metrics" mapstructure:"metrics"`
	Ceremony ceremony.Config `yaml:"ceremony" json:"ceremony" mapstructure:"ceremony"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host" json:"host" mapstructure:"host"`
	Port            int           `yaml:"port" json:"port" mapstructure:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" mapstructure:"level"`
	Format string `yaml:"format" json:"format" mapstructure:"format"`
}

// NewLogger builds a slog logger per the configuration.
func (l LoggingConfig) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(l.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(l.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" json:"path" mapstructure:"path"`
}

// Load reads configuration from the given file path. An empty path falls
// back to passwordless.yaml in the working directory or /etc/passwordless,
// and a missing fallback file is not an error. Environment variables with
// the PASSWORDLESS_ prefix override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PASSWORDLESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("passwordless")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/passwordless")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Ceremony.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration is usable for serving.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if err := c.Ceremony.Validate(); err != nil {
		return fmt.Errorf("ceremony: %w", err)
	}
	return nil
}

// setDefaults registers a default for every key so environment overrides
// bind even without a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("ceremony.rp_id", "")
	v.SetDefault("ceremony.rp_display_name", "")
	v.SetDefault("ceremony.rp_origin", "")
	v.SetDefault("ceremony.account_domain", "")
	v.SetDefault("ceremony.user_id_salt", "")
	v.SetDefault("ceremony.ceremony_timeout", time.Minute)
	v.SetDefault("ceremony.require_user_verification", false)
	v.SetDefault("ceremony.session_secret", "")
	v.SetDefault("ceremony.session_ttl", 24*time.Hour)
	v.SetDefault("ceremony.token_issuer", "passwordless")
}
