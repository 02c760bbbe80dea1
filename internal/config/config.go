// Package config loads apipager configuration from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/paged-api-client/pkg/pagination"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. APIPAGER_API_BASE_URL.
const EnvPrefix = "APIPAGER"

type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Log        LogConfig        `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	UserAgent string        `mapstructure:"user_agent" validate:"required"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type AuthConfig struct {
	// AccessToken is sent as bearer token when set.
	AccessToken string `mapstructure:"access_token"`
	// RedisAddr enables the shared token store when set.
	RedisAddr string `mapstructure:"redis_addr" validate:"omitempty,hostname_port"`
	TokenName string `mapstructure:"token_name"`
}

type PaginationConfig struct {
	MaxLimit    int           `mapstructure:"max_limit" validate:"gt=0"`
	Interval    time.Duration `mapstructure:"interval" validate:"gte=0"`
	Concurrency int           `mapstructure:"concurrency" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads path (optional, empty means environment and defaults only) and
// validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, fmt.Errorf("invalid config: %s", verrs.Error())
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Aggregator returns the pagination settings as an aggregator configuration.
func (c *Config) Aggregator() pagination.Config {
	return pagination.Config{
		MaxLimit: c.Pagination.MaxLimit,
		Interval: c.Pagination.Interval,
	}
}

// Every key needs a default so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.user_agent", "apipager/0.1.0")
	v.SetDefault("api.timeout", 30*time.Second)

	v.SetDefault("auth.access_token", "")
	v.SetDefault("auth.redis_addr", "")
	v.SetDefault("auth.token_name", "apipager")

	v.SetDefault("pagination.max_limit", pagination.DefaultMaxLimit)
	v.SetDefault("pagination.interval", pagination.DefaultInterval)
	v.SetDefault("pagination.concurrency", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}
