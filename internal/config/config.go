// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package config loads the settings of the sqlproj commands from an optional
// sqlproj.yaml file and the environment.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// FileName is the base name of the optional configuration file.
const FileName = "sqlproj"

// Config holds the settings of a sqlproj command. Environment variables take
// precedence over the configuration file, which takes precedence over
// Default.
type Config struct {
	// Driver is the database/sql driver name: sqlite3, sqlite, pgx or
	// dqlite.
	Driver string `mapstructure:"driver" env:"SQLPROJ_DRIVER"`
	// DSN is the data source name passed to the driver. SQLite drivers use a
	// fresh in-memory database when it is empty.
	DSN string `mapstructure:"dsn" env:"SQLPROJ_DSN"`
	// OTELEndpoint is the OTLP/HTTP collector URL. Tracing is disabled when
	// it is empty.
	OTELEndpoint string `mapstructure:"otel_endpoint" env:"SQLPROJ_OTEL_ENDPOINT"`
	ServiceName  string `mapstructure:"service_name" env:"SQLPROJ_SERVICE_NAME"`
}

func Default() Config {
	return Config{
		Driver:      "sqlite3",
		ServiceName: "sqlproj",
	}
}

// Load reads sqlproj.yaml from dir, if present, over the defaults and then
// applies environment overrides. An empty dir skips the file.
func Load(dir string) (Config, error) {
	cfg := Default()

	if dir != "" {
		v := viper.New()
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("cannot read config: %w", err)
			}
		} else if err := v.Unmarshal(&cfg); err != nil {
			return Config{}, fmt.Errorf("cannot decode config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Driver == "" {
		return Config{}, fmt.Errorf("no database driver configured")
	}
	return cfg, nil
}
