// Package config loads the service configuration from an optional YAML file
// and the environment. A .env file in the working directory is loaded first.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"gopkg.in/yaml.v3"
)

const (
	TransportREST = "rest"
	TransportSDK  = "sdk"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port          int    `yaml:"port"`
	AppEnv        string `yaml:"app_env"`
	SessionSecret string `yaml:"session_secret"`
}

type GeminiConfig struct {
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url"`
	Transport string        `yaml:"transport"`
	Timeout   time.Duration `yaml:"timeout"`
}

type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxRequests int           `yaml:"max_requests"`
}

// IsProduction reports whether APP_ENV is "production".
func (s ServerConfig) IsProduction() bool {
	return s.AppEnv == "production"
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:   8080,
			AppEnv: "development",
		},
		Gemini: GeminiConfig{
			Model:     "gemini-2.5-flash",
			BaseURL:   "https://generativelanguage.googleapis.com/v1beta",
			Transport: TransportREST,
			Timeout:   60 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Window:      15 * time.Minute,
			MaxRequests: 20,
		},
	}
}

// Load starts from Default, applies the YAML file at path when path is not
// empty, then applies environment overrides:
//
//	PORT, APP_ENV, SESSION_SECRET,
//	GEMINI_API_KEY, GEMINI_MODEL, GEMINI_API_URL, GEMINI_TRANSPORT, GEMINI_TIMEOUT,
//	RATE_LIMIT_WINDOW, RATE_LIMIT_MAX
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Server.AppEnv = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.Server.SessionSecret = v
	}

	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("GEMINI_API_URL"); v != "" {
		cfg.Gemini.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("GEMINI_TRANSPORT"); v != "" {
		cfg.Gemini.Transport = strings.ToLower(v)
	}
	if v := os.Getenv("GEMINI_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GEMINI_TIMEOUT: %w", err)
		}
		cfg.Gemini.Timeout = d
	}

	if v := os.Getenv("RATE_LIMIT_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_WINDOW: %w", err)
		}
		cfg.RateLimit.Window = d
	}
	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_MAX: %w", err)
		}
		cfg.RateLimit.MaxRequests = n
	}

	return nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Gemini.Model == "" {
		return fmt.Errorf("gemini.model is required")
	}
	if c.Gemini.Transport != TransportREST && c.Gemini.Transport != TransportSDK {
		return fmt.Errorf("gemini.transport must be %q or %q, got %q", TransportREST, TransportSDK, c.Gemini.Transport)
	}
	if c.Gemini.Timeout <= 0 {
		return fmt.Errorf("gemini.timeout must be positive")
	}
	if c.RateLimit.Window <= 0 || c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit.window and rate_limit.max_requests must be positive")
	}
	return nil
}
