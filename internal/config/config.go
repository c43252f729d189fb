// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package config

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/holocron-dev/holocron/internal/store"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// EnvPrefix is prepended to every environment override, e.g.
// HOLOCRON_STORAGE_PATH.
const EnvPrefix = "HOLOCRON"

// Config is the top-level Holocron configuration.
type Config struct {
	Storage    StorageConfig    `mapstructure:"storage"`
	Networking NetworkingConfig `mapstructure:"networking"`
	Log        LogConfig        `mapstructure:"log"`
	Query      QueryConfig      `mapstructure:"query"`
	Snapshot   SnapshotConfig   `mapstructure:"snapshot"`
}

// StorageConfig selects the entity store backend and its location.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// NetworkingConfig controls how the HTTP API listens.
type NetworkingConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// LogConfig picks the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// QueryConfig tunes the relationship query service.
type QueryConfig struct {
	HydrationWorkers int `mapstructure:"hydration_workers"`
}

// SnapshotConfig names a snapshot imported when the server boots.
type SnapshotConfig struct {
	Path string `mapstructure:"path"`
}

// StoreConfig converts the storage section for store.Open.
func (c *Config) StoreConfig() *store.StorageConfig {
	return &store.StorageConfig{Backend: c.Storage.Backend, Path: c.Storage.Path}
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", store.DefaultPath)
	v.SetDefault("networking.listen", "127.0.0.1:8087")
	v.SetDefault("networking.cors_origins", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("query.hydration_workers", 4)
	v.SetDefault("snapshot.path", "")
}

// New returns a viper instance with defaults and environment overrides
// (prefix HOLOCRON_) applied. Callers may bind flags before passing it to
// LoadWith.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides.
func Load(path string) (*Config, error) {
	return LoadWith(New(), path)
}

// LoadWith reads path into v (when set), then unmarshals and validates.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var parseErr viper.ConfigParseError
			if errors.As(err, &parseErr) {
				return nil, holoerr.Errorf(holoerr.CodeConfigParseInvalidFormat, "parsing config %s: %w", path, err)
			}
			return nil, holoerr.Errorf(holoerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, holoerr.Errorf(holoerr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, holoerr.Errorf(holoerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateNetworking()...)
	errs = append(errs, c.validateLog()...)
	errs = append(errs, c.validateQuery()...)

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	validBackends := map[string]bool{"sqlite": true}
	if !validBackends[c.Storage.Backend] {
		errs = append(errs, holoerr.Errorf(holoerr.CodeConfigValidateInvalidValue,
			"config: storage.backend must be one of [sqlite], got %q",
			c.Storage.Backend,
		))
	}

	if strings.TrimSpace(c.Storage.Path) == "" {
		errs = append(errs, holoerr.Errorf(holoerr.CodeConfigValidateInvalidValue, "config: storage.path must not be empty"))
	}

	return errs
}

func (c *Config) validateNetworking() []error {
	var errs []error

	if c.Networking.Listen == "" {
		errs = append(errs, holoerr.Errorf(holoerr.CodeConfigValidateInvalidValue, "config: networking.listen must not be empty"))
	} else {
		_, portStr, err := net.SplitHostPort(c.Networking.Listen)
		if err != nil {
			errs = append(errs, holoerr.Errorf(holoerr.CodeConfigValidateInvalidValue,
				"config: networking.listen must be a valid host:port address, got %q: %w",
				c.Networking.Listen, err,
			))
		} else {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				errs = append(errs, holoerr.Errorf(holoerr.CodeConfigValidateInvalidValue,
					"config: networking.listen port must be a number, got %q",
					portStr,
				))
			} else if port < 1 || port > 65535 {
				errs = append(errs, holoerr.Errorf(holoerr.CodeConfigValidateInvalidValue,
					"config: networking.listen port must be between 1 and 65535, got %d",
					port,
				))
			}
		}
	}

	for i, origin := range c.Networking.CORSOrigins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, holoerr.Errorf(holoerr.CodeConfigValidateInvalidValue,
				"config: networking.cors_origins[%d] must be an absolute origin or \"*\", got %q",
				i, origin,
			))
		}
	}

	return errs
}

func (c *Config) validateLog() []error {
	var errs []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, holoerr.Errorf(holoerr.CodeConfigValidateInvalidValue,
			"config: log.level must be one of [debug, info, warn, error], got %q",
			c.Log.Level,
		))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, holoerr.Errorf(holoerr.CodeConfigValidateInvalidValue,
			"config: log.format must be one of [text, json], got %q",
			c.Log.Format,
		))
	}

	return errs
}

func (c *Config) validateQuery() []error {
	var errs []error

	if c.Query.HydrationWorkers <= 0 {
		errs = append(errs, holoerr.Errorf(holoerr.CodeConfigValidateInvalidValue,
			"config: query.hydration_workers must be greater than 0, got %d",
			c.Query.HydrationWorkers,
		))
	}

	return errs
}
