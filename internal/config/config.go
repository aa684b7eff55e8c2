package config

import (
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	AI       AIConfig       `yaml:"ai"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Prompts  PromptsConfig  `yaml:"prompts"`
	Admin    AdminConfig    `yaml:"admin"`
}

type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	// RevalidateSeconds is how long a rendered page is served from cache.
	RevalidateSeconds int `yaml:"revalidate_seconds"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
	// RenderRetentionDays bounds how long render log entries are kept.
	RenderRetentionDays int `yaml:"render_retention_days"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// AIConfig seeds the provider configuration. API keys come from the environment.
type AIConfig struct {
	Provider          string `yaml:"provider"`
	Model             string `yaml:"model"`
	BaseURL           string `yaml:"base_url"`
	MaxCallsPerMinute int    `yaml:"max_calls_per_minute"`
}

type DatasetConfig struct {
	SeedPath string `yaml:"seed_path"`
}

type PromptsConfig struct {
	PresetsPath string `yaml:"presets_path"`
}

type AdminConfig struct {
	// PasswordHash is a bcrypt hash. When empty the update endpoints are open.
	PasswordHash string `yaml:"password_hash"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                8080,
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 120,
			RevalidateSeconds:   3600,
		},
		Database: DatabaseConfig{
			Path:                "./reelhouse.db",
			RenderRetentionDays: 30,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		AI: AIConfig{
			Provider:          "gemini",
			MaxCallsPerMinute: 30,
		},
		Dataset: DatasetConfig{
			SeedPath: "./data/films.json",
		},
		Prompts: PromptsConfig{
			PresetsPath: "./presets.yaml",
		},
	}
}

// Load reads a YAML config file and merges it over defaults.
// If the file does not exist, defaults are returned without error.
// Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
		slog.Info("No config file found, using defaults", "path", path)
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("REELHOUSE_PROVIDER")); v != "" {
		c.AI.Provider = v
	}
	if v := strings.TrimSpace(os.Getenv("REELHOUSE_MODEL")); v != "" {
		c.AI.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("REELHOUSE_BASE_URL")); v != "" {
		c.AI.BaseURL = v
	}
}

// APIKey returns the credential for the given provider from the environment.
func APIKey(provider string) string {
	switch provider {
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	case "openai", "openai-compatible":
		return os.Getenv("OPENAI_API_KEY")
	}
	return ""
}
