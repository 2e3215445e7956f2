package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string `mapstructure:"PORT"`
	Env              string `mapstructure:"ENV"`
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	DBMaxConns       int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns       int32  `mapstructure:"DB_MIN_CONNS"`
	DocumentRoot     string `mapstructure:"DOCUMENT_ROOT"`
	InboxDir         string `mapstructure:"INBOX_DIR"`
	AdminTokenSecret string `mapstructure:"ADMIN_TOKEN_SECRET"`
	DefaultFacility  string `mapstructure:"DEFAULT_FACILITY"`
	Timezone         string `mapstructure:"TIMEZONE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DOCUMENT_ROOT", "./documents")
	v.SetDefault("INBOX_DIR", "./inbox")
	v.SetDefault("TIMEZONE", "UTC")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("DOCUMENT_ROOT")
	v.BindEnv("INBOX_DIR")
	v.BindEnv("ADMIN_TOKEN_SECRET")
	v.BindEnv("DEFAULT_FACILITY")
	v.BindEnv("TIMEZONE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. The admin trigger
// server refuses to start in non-development modes without a token secret.
func (c *Config) Validate() error {
	if c.IsProduction() && c.AdminTokenSecret == "" {
		return fmt.Errorf("ADMIN_TOKEN_SECRET is required in production")
	}
	if c.AdminTokenSecret != "" && len(c.AdminTokenSecret) < 32 {
		return fmt.Errorf("ADMIN_TOKEN_SECRET must be at least 32 characters, got %d", len(c.AdminTokenSecret))
	}
	if strings.TrimSpace(c.DocumentRoot) == "" {
		return fmt.Errorf("DOCUMENT_ROOT must not be empty")
	}
	return nil
}
