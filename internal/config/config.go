// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the assistant server's configuration from defaults,
// a YAML file, and environment variables, in that order of increasing
// priority.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultConfigFileName is the base name (without extension) viper
// searches for.
const DefaultConfigFileName = "loom-assistant"

// Config holds every configuration concern of the server.
type Config struct {
	Server  ServerConfig   `mapstructure:"server"`
	LLM     LLMConfig      `mapstructure:"llm"`
	DB      DatabaseConfig `mapstructure:"database"`
	Auth    AuthConfig     `mapstructure:"auth"`
	Logging LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds transport-level server settings.
type ServerConfig struct {
	// URL is the client-facing address clients are told to connect to.
	// Bound from SERVER_URL (no LOOM_ prefix).
	URL string `mapstructure:"url"`

	HTTPAddr              string `mapstructure:"http_addr"`
	TimeoutSeconds        int    `mapstructure:"timeout_seconds"`
	Verbose               bool   `mapstructure:"verbose"`
	SessionIdleTTLSeconds int    `mapstructure:"session_idle_ttl_seconds"`
	EnableCORS            bool   `mapstructure:"enable_cors"`

	// WorkspaceRoot is the directory under which each session's primary
	// workspace gets its own subdirectory.
	WorkspaceRoot string `mapstructure:"workspace_root"`
}

// LLMConfig holds provider selection and model routing.
type LLMConfig struct {
	ActiveProvider   string `mapstructure:"active_provider"`
	ProviderEndpoint string `mapstructure:"provider_endpoint"`
	APIKey           string `mapstructure:"api_key"`
	ModelName        string `mapstructure:"model_name"`
	FastModel        string `mapstructure:"fast_model"`
	UtilityModel     string `mapstructure:"utility_model"`
	BedrockRegion    string `mapstructure:"bedrock_region"`

	// ToolFormat selects how tool calls are encoded/decoded for providers
	// that don't speak native tool_use blocks. One of openai, json, xml.
	ToolFormat string `mapstructure:"tool_format"`

	// MemoryContextLimit bounds how many recalled memories the Prompt
	// Assembler may include per turn (wired to chatengine.Config.RecallTopK).
	MemoryContextLimit int `mapstructure:"memory_context_limit"`

	// DocumentContextLimit is loaded from configuration
	// (DOCUMENT_CONTEXT_LIMIT), but no component reads it: the Prompt
	// Assembler applies no per-turn limit on workspace file excerpts.
	DocumentContextLimit int `mapstructure:"document_context_limit"`
}

// DatabaseConfig holds the persistence store's SQLite file location.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig holds the HTTP API's authentication mode. This gates access
// to the server itself and is independent of LLM.APIKey, which
// authenticates the server to its upstream model provider.
type AuthConfig struct {
	// Mode is "api_key" (default) or "jwt".
	Mode      string `mapstructure:"mode"`
	APIKey    string `mapstructure:"api_key"`
	JWTSecret string `mapstructure:"jwt_secret"`
	DevMode   bool   `mapstructure:"dev_mode"`
}

// LoggingConfig holds zap logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from defaults, then cfgFile (if non-empty) or
// the standard search paths otherwise, then environment variables, in
// ascending priority order (env overrides file, file overrides defaults).
//
// Two environment variable namespaces are recognized, one per trust
// boundary:
//   - Unprefixed names for client-facing settings (SERVER_URL, API_KEY,
//     TIMEOUT_SECONDS, VERBOSE, MEMORY_CONTEXT_LIMIT, DOCUMENT_CONTEXT_LIMIT,
//     ACTIVE_PROVIDER, PROVIDER_ENDPOINT, MODEL_NAME, FAST_MODEL,
//     UTILITY_MODEL, TOOL_FORMAT).
//   - LOOM_-prefixed names for everything server-internal (ports, db path,
//     auth mode, session idle TTL), formed from the key with dots replaced
//     by underscores (LOOM_AUTH_MODE, LOOM_DATABASE_PATH).
func Load(cfgFile string) (*Config, error) {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/loom-assistant/")
		viper.SetConfigName(DefaultConfigFileName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading %s: %w", viper.ConfigFileUsed(), err)
		}
	}

	bindUnprefixedEnv()
	viper.SetEnvPrefix("LOOM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// bindUnprefixedEnv binds the client-facing env vars directly, bypassing
// the LOOM_ prefix AutomaticEnv otherwise applies to every key.
func bindUnprefixedEnv() {
	bindings := map[string]string{
		"server.url":                 "SERVER_URL",
		"llm.api_key":                "API_KEY",
		"server.timeout_seconds":     "TIMEOUT_SECONDS",
		"server.verbose":             "VERBOSE",
		"llm.memory_context_limit":   "MEMORY_CONTEXT_LIMIT",
		"llm.document_context_limit": "DOCUMENT_CONTEXT_LIMIT",
		"llm.active_provider":        "ACTIVE_PROVIDER",
		"llm.provider_endpoint":      "PROVIDER_ENDPOINT",
		"llm.model_name":             "MODEL_NAME",
		"llm.fast_model":             "FAST_MODEL",
		"llm.utility_model":          "UTILITY_MODEL",
		"llm.tool_format":            "TOOL_FORMAT",
	}
	for key, env := range bindings {
		_ = viper.BindEnv(key, env)
	}
}

func setDefaults() {
	viper.SetDefault("server.url", "http://localhost:8080")
	viper.SetDefault("server.http_addr", ":8080")
	viper.SetDefault("server.timeout_seconds", 60)
	viper.SetDefault("server.verbose", false)
	viper.SetDefault("server.session_idle_ttl_seconds", 1800)
	viper.SetDefault("server.enable_cors", true)
	viper.SetDefault("server.workspace_root", defaultWorkspaceRoot())

	viper.SetDefault("llm.active_provider", "anthropic")
	viper.SetDefault("llm.model_name", "claude-sonnet-4-5-20250929")
	viper.SetDefault("llm.bedrock_region", "us-west-2")
	viper.SetDefault("llm.tool_format", "openai")
	viper.SetDefault("llm.memory_context_limit", 5)
	viper.SetDefault("llm.document_context_limit", 10)

	viper.SetDefault("database.path", defaultDBPath())

	viper.SetDefault("auth.mode", "api_key")
	viper.SetDefault("auth.api_key", "")
	viper.SetDefault("auth.jwt_secret", "")
	viper.SetDefault("auth.dev_mode", false)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "loom-assistant.db"
	}
	return filepath.Join(home, ".loom-assistant", "loom-assistant.db")
}

func defaultWorkspaceRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "loom-assistant-workspaces"
	}
	return filepath.Join(home, ".loom-assistant", "workspaces")
}

// Validate reports a descriptive error for any configuration combination
// the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: server.timeout_seconds must be positive")
	}
	if c.DB.Path == "" {
		return fmt.Errorf("config: database.path is required")
	}

	switch c.LLM.ActiveProvider {
	case "anthropic":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("config: API_KEY is required for the anthropic provider")
		}
	case "bedrock":
		if c.LLM.BedrockRegion == "" {
			return fmt.Errorf("config: llm.bedrock_region is required for the bedrock provider")
		}
	default:
		return fmt.Errorf("config: unsupported ACTIVE_PROVIDER %q (must be anthropic or bedrock)", c.LLM.ActiveProvider)
	}

	switch c.Auth.Mode {
	case "api_key":
		if c.Auth.APIKey == "" && !c.Auth.DevMode {
			return fmt.Errorf("config: auth.mode=api_key requires auth.api_key (LOOM_AUTH_API_KEY), or LOOM_AUTH_DEV_MODE=1")
		}
	case "jwt":
		if c.Auth.JWTSecret == "" && !c.Auth.DevMode {
			return fmt.Errorf("config: auth.mode=jwt requires auth.jwt_secret (LOOM_AUTH_JWT_SECRET)")
		}
	default:
		return fmt.Errorf("config: unsupported auth.mode %q (must be api_key or jwt)", c.Auth.Mode)
	}

	return nil
}
