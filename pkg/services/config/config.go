// Package config loads the service configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/seo-tools/keyword-gap/pkg/models/domain"
)

type Server struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Database holds the Postgres connection settings. The URL is not
// required here because the CLI runs without a database; the server
// rejects an empty URL when it connects.
type Database struct {
	URL string `mapstructure:"url"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Provider struct {
	BaseURL  string `mapstructure:"base_url"`
	Login    string `mapstructure:"login" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	// RateLimit is requests per second against the provider API.
	RateLimit   float64       `mapstructure:"rate_limit"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

type Config struct {
	Server     Server              `mapstructure:"server"`
	Database   Database            `mapstructure:"database"`
	Redis      Redis               `mapstructure:"redis"`
	Provider   Provider            `mapstructure:"provider"`
	Score      domain.ScoreWeights `mapstructure:"score"`
	RunTimeout time.Duration       `mapstructure:"run_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("redis.addr", "localhost:6379")
	// Empty defaults register the keys so AutomaticEnv can fill them.
	v.SetDefault("database.url", "")
	v.SetDefault("provider.login", "")
	v.SetDefault("provider.password", "")
	v.SetDefault("provider.base_url", "https://api.dataforseo.com")
	v.SetDefault("provider.rate_limit", 5.0)
	v.SetDefault("provider.max_attempts", 3)
	v.SetDefault("provider.retry_delay", time.Second)
	v.SetDefault("run_timeout", 5*time.Minute)

	weights := domain.DefaultScoreWeights()
	v.SetDefault("score.volume_weight", weights.VolumeWeight)
	v.SetDefault("score.difficulty_weight", weights.DifficultyWeight)
	v.SetDefault("score.missing_position_penalty", weights.MissingPositionPenalty)
}

// LoadConfig reads the config file at path. Environment variables
// prefixed with KEYWORDGAP_ override file values, e.g.
// KEYWORDGAP_DATABASE_URL overrides database.url.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("KEYWORDGAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
