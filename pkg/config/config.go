// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads AgentDeck settings from defaults, an optional YAML
// file, an optional profile overlay, AGENTDECK_* environment variables and
// --set command-line overrides, in that order.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "AGENTDECK_"

type Config struct {
	Log        LogConfig        `koanf:"log"`
	Validation ValidationConfig `koanf:"validation"`
	API        APIConfig        `koanf:"api"`
	Server     ServerConfig     `koanf:"server"`
	Audit      AuditConfig      `koanf:"audit"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	MCP        MCPConfig        `koanf:"mcp"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

// ValidationConfig selects the optional checks and extra node types.
type ValidationConfig struct {
	// Strict enables every optional check.
	Strict        bool `koanf:"strict"`
	DuplicateIDs  bool `koanf:"duplicate_ids"`
	ConfigTypes   bool `koanf:"config_types"`
	DocumentTypes bool `koanf:"document_types"`
	// Catalog is a YAML file with node types added to the built-in ones.
	Catalog string `koanf:"catalog"`
}

// APIConfig points at the agent platform.
type APIConfig struct {
	BaseURL        string `koanf:"base_url"`
	Token          string `koanf:"token"`
	TimeoutSeconds int    `koanf:"timeout_seconds"`
	Retries        int    `koanf:"retries"`
}

// Timeout returns the request timeout as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type AuditConfig struct {
	Enabled bool   `koanf:"enabled"`
	Driver  string `koanf:"driver"` // memory, sqlite
	DSN     string `koanf:"dsn"`
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // none, stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

type MCPConfig struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`
}

var defaults = map[string]any{
	"log.level":               "info",
	"log.format":              "text",
	"validation.strict":       false,
	"api.base_url":            "http://localhost:8000",
	"api.timeout_seconds":     30,
	"api.retries":             3,
	"server.addr":             ":8080",
	"audit.enabled":           false,
	"audit.driver":            "memory",
	"audit.dsn":               "agentdeck-audit.db",
	"telemetry.exporter":      "none",
	"telemetry.otlp_insecure": false,
	"mcp.name":                "agentdeck",
	"mcp.version":             "0.1.0",
}

// Load reads configuration from defaults, the file at path (optional) and
// the environment.
func Load(path string) (*Config, error) {
	return load(path, "", nil)
}

// LoadWithProfile also applies the profile overlay next to path, such as
// config.dev.yaml for profile "dev", when it exists.
func LoadWithProfile(path, profile string) (*Config, error) {
	return load(path, profile, nil)
}

func load(path, profile string, sets []override) (*Config, error) {
	k := koanf.New(".")
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, err
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		if overlay := profileConfigPath(path, profile); overlay != "" {
			if err := k.Load(file.Provider(overlay), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load profile %s: %w", overlay, err)
			}
		}
	}

	// AGENTDECK_API_BASE_URL -> api.base_url: the first underscore after the
	// prefix separates the section from the key.
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	for _, o := range sets {
		if err := k.Set(o.key, o.value); err != nil {
			return nil, fmt.Errorf("apply --set %s: %w", o.key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, found := strings.Cut(key, "_")
	if !found {
		return key
	}
	return section + "." + rest
}

// Validate rejects settings no component can work with.
func (c *Config) Validate() error {
	switch c.Telemetry.Exporter {
	case "", "none", "stdout":
	case "otlp":
		if c.Telemetry.OTLPEndpoint == "" {
			return fmt.Errorf("telemetry.otlp_endpoint is required for the otlp exporter")
		}
	default:
		return fmt.Errorf("unknown telemetry.exporter %q", c.Telemetry.Exporter)
	}
	switch c.Audit.Driver {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("unknown audit.driver %q", c.Audit.Driver)
	}
	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("api.timeout_seconds must not be negative")
	}
	if c.API.Retries < 0 {
		return fmt.Errorf("api.retries must not be negative")
	}
	return nil
}

// profileConfigPath returns the overlay file for profile, or "" when there
// is none on disk.
func profileConfigPath(base, profile string) string {
	if base == "" || profile == "" {
		return ""
	}
	ext := filepath.Ext(base)
	candidate := strings.TrimSuffix(base, ext) + "." + profile + ext
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	return candidate
}

type override struct {
	key   string
	value any
}

type cliOptions struct {
	path    string
	profile string
}

// LoadWithCLI loads configuration honoring --config, --profile and
// repeated --set key=value flags found in args. Other arguments are
// ignored so the full command line can be passed through.
func LoadWithCLI(args []string) (*Config, error) {
	opts, sets, err := parseCLIOverrides(args)
	if err != nil {
		return nil, err
	}
	return load(opts.path, opts.profile, sets)
}

// ConfigPath returns the --config value in args, if any.
func ConfigPath(args []string) string {
	opts, _, err := parseCLIOverrides(args)
	if err != nil {
		return ""
	}
	return opts.path
}

func parseCLIOverrides(args []string) (cliOptions, []override, error) {
	var (
		opts cliOptions
		sets []override
	)
	for i := 0; i < len(args); i++ {
		name, value, hasValue := strings.Cut(args[i], "=")
		switch name {
		case "--config", "--profile", "--set":
		default:
			continue
		}
		if !hasValue {
			if i+1 >= len(args) {
				return opts, nil, fmt.Errorf("%s requires a value", name)
			}
			i++
			value = args[i]
		}
		switch name {
		case "--config":
			opts.path = value
		case "--profile":
			opts.profile = value
		case "--set":
			o, err := parseSet(value)
			if err != nil {
				return opts, nil, err
			}
			sets = append(sets, o)
		}
	}
	return opts, sets, nil
}

// parseSet splits key=value. JSON scalars, arrays and objects are decoded;
// anything else is kept as a string.
func parseSet(raw string) (override, error) {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return override{}, fmt.Errorf("invalid --set %q: expected key=value", raw)
	}
	var decoded any
	if err := json.Unmarshal([]byte(value), &decoded); err == nil {
		return override{key: key, value: decoded}, nil
	}
	return override{key: key, value: value}, nil
}
