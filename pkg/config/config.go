package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const EnvPrefix = "FLEET_ATLAS"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	AWS     AWSConfig     `mapstructure:"aws"`
	Refresh RefreshConfig `mapstructure:"refresh"`
	Pricing PricingConfig `mapstructure:"pricing"`
	History HistoryConfig `mapstructure:"history"`
	Advisor FeatureConfig `mapstructure:"advisor"`
	Spend   FeatureConfig `mapstructure:"spend"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type AWSConfig struct {
	CredentialsFile string   `mapstructure:"credentials_file"`
	Regions         []string `mapstructure:"regions"`
}

type RefreshConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	PoolSize int           `mapstructure:"pool_size"`
}

type PricingConfig struct {
	// Source is a local path or an s3://bucket/key URL; empty prices everything at zero.
	Source string `mapstructure:"source"`
}

type HistoryConfig struct {
	DbPath string `mapstructure:"db_path"`
}

type FeatureConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func (l LogConfig) ZerologLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil || l.Level == "" {
		return zerolog.InfoLevel
	}
	return level
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 4567)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("aws.credentials_file", filepath.Join(home, ".aws", "credentials"))
	v.SetDefault("aws.regions", []string{})
	v.SetDefault("refresh.interval", 15*time.Minute)
	v.SetDefault("refresh.pool_size", 10)
	v.SetDefault("pricing.source", "")
	v.SetDefault("history.db_path", "fleet-atlas.db")
	v.SetDefault("advisor.enabled", true)
	v.SetDefault("spend.enabled", false)
	v.SetDefault("log.level", "info")
}

// LoadConfig reads the YAML file at path, if any, over the defaults.
// FLEET_ATLAS_* environment variables override both, e.g.
// FLEET_ATLAS_SERVER_PORT for server.port.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Refresh.PoolSize <= 0 {
		return nil, fmt.Errorf("refresh.pool_size must be positive, got %d", cfg.Refresh.PoolSize)
	}
	return &cfg, nil
}
