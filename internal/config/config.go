package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
	Provider string `mapstructure:"provider" yaml:"provider"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`

	// Remote tool classification
	RouterModel       string  `mapstructure:"router_model" yaml:"router_model"`
	RouterTemperature float64 `mapstructure:"router_temperature" yaml:"router_temperature"`
	RouterTimeoutSec  int     `mapstructure:"router_timeout_sec" yaml:"router_timeout_sec"`

	// Column assistant
	AssistEnabled  bool   `mapstructure:"assist_enabled" yaml:"assist_enabled"`
	AssistProvider string `mapstructure:"assist_provider" yaml:"assist_provider"`
	AssistModel    string `mapstructure:"assist_model" yaml:"assist_model"`
	OllamaHost     string `mapstructure:"ollama_host" yaml:"ollama_host"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Analysis
	MaxRows           int    `mapstructure:"max_rows" yaml:"max_rows"`
	PieMaxSlices      int    `mapstructure:"pie_max_slices" yaml:"pie_max_slices"`
	SubgroupMaxUnique int    `mapstructure:"subgroup_max_unique" yaml:"subgroup_max_unique"`
	ChartsDir         string `mapstructure:"charts_dir" yaml:"charts_dir"`

	// HTTP shell
	ListenAddr  string   `mapstructure:"listen_addr" yaml:"listen_addr"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// RouterTimeout is RouterTimeoutSec as a duration.
func (c *Global) RouterTimeout() time.Duration {
	return time.Duration(c.RouterTimeoutSec) * time.Second
}

// HTTPTimeout is HTTPTimeoutSec as a duration.
func (c *Global) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// RetryDelays returns the base and maximum backoff.
func (c *Global) RetryDelays() (base, max time.Duration) {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond, time.Duration(c.RetryMaxDelayMs) * time.Millisecond
}

// MaskedKey shows the first and last four characters of the API key.
func (c *Global) MaskedKey() string {
	k := c.APIKey
	switch {
	case k == "":
		return "(not set)"
	case len(k) <= 8:
		return "****"
	}
	return k[:4] + "****" + k[len(k)-4:]
}

// DefaultPath is ~/.csvask/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".csvask", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.csvask/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LoadDotEnv loads .env from the working directory. A missing file is fine;
// variables already set in the environment win.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. cfgFile overrides the default
// file location.
func Load(cfgFile string) (*Global, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetEnvPrefix("CSVASK")
	v.AutomaticEnv()
	// Legacy variable name for the classification key.
	if err := v.BindEnv("api_key", "CSVASK_API_KEY", "GEMMA_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	v.SetDefault("api_key", "")
	v.SetDefault("provider", "openrouter")
	v.SetDefault("base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("router_model", "google/gemma-3-27b-it")
	v.SetDefault("router_temperature", 0.7)
	v.SetDefault("router_timeout_sec", 15)
	v.SetDefault("assist_enabled", false)
	v.SetDefault("assist_provider", "ollama")
	v.SetDefault("assist_model", "gemma:2b")
	v.SetDefault("ollama_host", "http://127.0.0.1:11434")
	// HTTP/retry defaults; retries apply to the column assistant, the router
	// always makes a single attempt
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 1)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("max_rows", 0)
	v.SetDefault("pie_max_slices", 10)
	v.SetDefault("subgroup_max_unique", 20)
	v.SetDefault("charts_dir", "")
	v.SetDefault("listen_addr", ":8005")
	v.SetDefault("cors_origins", []string{"http://localhost:3000"})

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".csvask"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
