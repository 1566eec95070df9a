// Package config loads the storefront settings with viper: defaults, then an
// optional config file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the process settings.
type Config struct {
	AppPort         string
	AppEnv          string
	LogLevel        string
	BackendURL      string
	SessionDBDriver string
	SessionDBDSN    string
	RabbitMQURL     string
	CatalogPageSize int
	AdminPageSize   int
	RelatedLimit    int
}

// IsDevelopment reports whether human-readable logs should be used.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BACKEND_URL", "http://localhost:5000")
	v.SetDefault("SESSION_DB_DRIVER", "sqlite")
	v.SetDefault("SESSION_DB_DSN", "storefront.db")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("CATALOG_PAGE_SIZE", 12)
	v.SetDefault("ADMIN_PAGE_SIZE", 4)
	v.SetDefault("RELATED_LIMIT", 4)
}

// Load reads the configuration. file may be empty.
func Load(file string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort:         v.GetString("APP_PORT"),
		AppEnv:          v.GetString("APP_ENV"),
		LogLevel:        strings.ToLower(v.GetString("LOG_LEVEL")),
		BackendURL:      strings.TrimRight(v.GetString("BACKEND_URL"), "/"),
		SessionDBDriver: v.GetString("SESSION_DB_DRIVER"),
		SessionDBDSN:    v.GetString("SESSION_DB_DSN"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		CatalogPageSize: v.GetInt("CATALOG_PAGE_SIZE"),
		AdminPageSize:   v.GetInt("ADMIN_PAGE_SIZE"),
		RelatedLimit:    v.GetInt("RELATED_LIMIT"),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var errs []error
	if c.BackendURL == "" {
		errs = append(errs, errors.New("BACKEND_URL is required"))
	}
	if c.SessionDBDSN == "" {
		errs = append(errs, errors.New("SESSION_DB_DSN is required"))
	}
	if c.CatalogPageSize < 1 {
		errs = append(errs, fmt.Errorf("CATALOG_PAGE_SIZE must be positive, got %d", c.CatalogPageSize))
	}
	if c.AdminPageSize < 1 {
		errs = append(errs, fmt.Errorf("ADMIN_PAGE_SIZE must be positive, got %d", c.AdminPageSize))
	}
	if c.RelatedLimit < 0 {
		errs = append(errs, fmt.Errorf("RELATED_LIMIT must not be negative, got %d", c.RelatedLimit))
	}
	return errors.Join(errs...)
}
