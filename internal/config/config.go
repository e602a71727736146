// Package config loads client settings from checklist.yml, an optional
// checklist.local.yml beside it, and CHECKLIST_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gookit/config/v2"
	"github.com/gookit/config/v2/yaml"
)

const (
	EnvDir         = "CHECKLIST_CONFIG_DIR"
	EnvEndpoint    = "CHECKLIST_ENDPOINT"
	EnvAdminSecret = "CHECKLIST_ADMIN_SECRET"
	EnvLogLevel    = "CHECKLIST_LOG_LEVEL"

	DefaultTimeout = 10 * time.Second
)

type Config struct {
	Endpoint       string `config:"endpoint" validate:"required,url"`
	AdminSecret    string `config:"admin_secret"`
	RequestTimeout string `config:"request_timeout"`
	LogLevel       string `config:"log_level" validate:"oneof=debug info warn error"`
	LogFile        string `config:"log_file"`
	Theme          string `config:"theme" validate:"oneof=classic neon mono"`
	Group          bool   `config:"group"`
}

func defaults() Config {
	return Config{
		RequestTimeout: DefaultTimeout.String(),
		LogLevel:       "info",
		Theme:          "classic",
	}
}

// Load reads dir/checklist.yml and dir/checklist.local.yml, both optional,
// then applies environment overrides. An empty dir falls back to
// $CHECKLIST_CONFIG_DIR and then the working directory.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = os.Getenv(EnvDir)
	}

	c := config.New("checklist")
	c.WithOptions(func(opt *config.Options) {
		opt.ParseEnv = true
		opt.DecoderConfig.TagName = "config"
	})
	c.AddDriver(yaml.Driver)

	files := []string{
		filepath.Join(dir, "checklist.yml"),
		filepath.Join(dir, "checklist.local.yml"),
	}
	if err := c.LoadExists(files...); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg := defaults()
	if len(c.Data()) > 0 {
		if err := c.BindStruct("", &cfg); err != nil {
			return nil, fmt.Errorf("bind config: %w", err)
		}
	}

	cfg.Endpoint = getEnv(EnvEndpoint, cfg.Endpoint)
	cfg.AdminSecret = getEnv(EnvAdminSecret, cfg.AdminSecret)
	cfg.LogLevel = getEnv(EnvLogLevel, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.parseTimeout(); err != nil {
		return fmt.Errorf("invalid config: request_timeout: %w", err)
	}
	return nil
}

// Timeout is the per-request deadline. Zero disables it.
func (c *Config) Timeout() time.Duration {
	d, err := c.parseTimeout()
	if err != nil {
		return DefaultTimeout
	}
	return d
}

func (c *Config) parseTimeout() (time.Duration, error) {
	if c.RequestTimeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
