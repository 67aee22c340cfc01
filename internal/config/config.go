package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Translate TranslateConfig `yaml:"translate"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// TailscaleConfig makes the server listen on the tailnet instead of a TCP port.
type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// TranslateConfig configures the translation provider. Translation is
// disabled when OpenAIAPIKey is empty.
type TranslateConfig struct {
	OpenAIAPIKey      string   `yaml:"openai_api_key"`
	BaseURL           string   `yaml:"base_url"`
	Model             string   `yaml:"model"`
	CacheSize         int      `yaml:"cache_size"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	Languages         []string `yaml:"languages"`
}

// Enabled reports whether a provider is configured.
func (t TranslateConfig) Enabled() bool {
	return t.OpenAIAPIKey != ""
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	return u.String()
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix COACHDESK_ and underscore-separated paths:
//
//	COACHDESK_SERVER_HOST, COACHDESK_SERVER_PORT,
//	COACHDESK_DB_HOST, COACHDESK_DB_PORT, COACHDESK_DB_NAME,
//	COACHDESK_DB_USER, COACHDESK_DB_PASSWORD, COACHDESK_DB_SSLMODE,
//	COACHDESK_AUTH_API_KEY,
//	COACHDESK_TAILSCALE_ENABLED, COACHDESK_TAILSCALE_HOSTNAME,
//	COACHDESK_TAILSCALE_STATE_DIR,
//	COACHDESK_OPENAI_API_KEY, COACHDESK_TRANSLATE_BASE_URL,
//	COACHDESK_TRANSLATE_MODEL, COACHDESK_TRANSLATE_LANGUAGES (comma-separated)
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COACHDESK_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("COACHDESK_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("COACHDESK_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("COACHDESK_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("COACHDESK_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("COACHDESK_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("COACHDESK_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("COACHDESK_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("COACHDESK_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("COACHDESK_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("COACHDESK_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("COACHDESK_TAILSCALE_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
	if v := os.Getenv("COACHDESK_OPENAI_API_KEY"); v != "" {
		cfg.Translate.OpenAIAPIKey = v
	}
	if v := os.Getenv("COACHDESK_TRANSLATE_BASE_URL"); v != "" {
		cfg.Translate.BaseURL = v
	}
	if v := os.Getenv("COACHDESK_TRANSLATE_MODEL"); v != "" {
		cfg.Translate.Model = v
	}
	if v := os.Getenv("COACHDESK_TRANSLATE_LANGUAGES"); v != "" {
		cfg.Translate.Languages = splitList(v)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "coachdesk"
	}
	if cfg.Tailscale.StateDir == "" {
		cfg.Tailscale.StateDir = "tsnet-state"
	}
	if cfg.Translate.CacheSize == 0 {
		cfg.Translate.CacheSize = 1024
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Translate.CacheSize < 0 {
		return fmt.Errorf("translate.cache_size must not be negative")
	}
	if c.Translate.RequestsPerSecond < 0 {
		return fmt.Errorf("translate.requests_per_second must not be negative")
	}
	return nil
}
