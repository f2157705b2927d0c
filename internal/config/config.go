// Package config loads runtime configuration from an optional YAML file,
// environment variables prefixed REAGENT_, and built-in defaults, in that
// ascending order of precedence for env over file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Addr   string `mapstructure:"addr"`
	APIKey string `mapstructure:"api_key"`
}

type LLMConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	Temperature    float64 `mapstructure:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	CacheSize      int     `mapstructure:"cache_size"`
}

type AgentConfig struct {
	MaxIterations int `mapstructure:"max_iterations"`
}

type ToolsConfig struct {
	WorkspaceDir          string `mapstructure:"workspace_dir"`
	CommandTimeoutSeconds int    `mapstructure:"command_timeout_seconds"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	LLM    LLMConfig    `mapstructure:"llm"`
	Agent  AgentConfig  `mapstructure:"agent"`
	Tools  ToolsConfig  `mapstructure:"tools"`
	Log    LogConfig    `mapstructure:"log"`
}

// Timeout returns the LLM request timeout as a duration.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CommandTimeout returns the default shell command budget as a duration.
func (c ToolsConfig) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutSeconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.api_key", "")
	v.SetDefault("llm.base_url", "http://localhost:8000/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "mistralai/Mistral-7B-Instruct-v0.2")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.timeout_seconds", 120)
	v.SetDefault("llm.cache_size", 8)
	v.SetDefault("agent.max_iterations", 10)
	v.SetDefault("tools.workspace_dir", "")
	v.SetDefault("tools.command_timeout_seconds", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration. path may be empty, in which case only defaults
// and REAGENT_* environment variables apply (e.g. REAGENT_LLM_MODEL).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("REAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
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
	return &cfg, nil
}
