package mirage

import (
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	defaults "github.com/Paranoid-AF/mirage/default"
)

// DefaultEndpoint is the completion endpoint of a llama.cpp-style server
// running on the same host.
const DefaultEndpoint = "http://localhost:8080/completion"

// Config represents the mirage configuration file.
type Config struct {
	Version    int              `toml:"version"`
	Completion CompletionConfig `toml:"completion"`
	Server     ServerConfig     `toml:"server"`
}

// CompletionConfig holds settings for the completion service.
type CompletionConfig struct {
	Endpoint string `toml:"endpoint"`
	// Seed is sent with every request so identical model state yields
	// identical output.
	Seed int64 `toml:"seed"`
	// Timeout bounds one completion call. Zero leaves the HTTP transport
	// defaults in place.
	Timeout time.Duration `toml:"timeout"`
}

// ServerConfig holds settings for the mirage-serve daemon.
type ServerConfig struct {
	Listen string `toml:"listen"`
}

// ConfigDir returns the config directory path.
// Resolution order: $MIRAGE_CONFIG_DIR > $XDG_CONFIG_HOME/mirage > ~/.config/mirage
func ConfigDir() string {
	if dir := os.Getenv("MIRAGE_CONFIG_DIR"); dir != "" {
		return dir
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "mirage")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "mirage-config")
	}
	return filepath.Join(home, ".config", "mirage")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// PromptPath returns the custom prompt template path.
func PromptPath() string {
	return filepath.Join(ConfigDir(), "prompt.txt")
}

// DefaultConfig returns the default configuration from the embedded default_config.toml.
func DefaultConfig() *Config {
	var cfg Config
	if err := toml.Unmarshal(defaults.DefaultConfigTOML, &cfg); err != nil {
		panic("mirage: invalid embedded default_config.toml: " + err.Error())
	}
	return &cfg
}

// LoadConfig loads config from disk or returns defaults if not found.
func LoadConfig() (*Config, error) {
	return LoadConfigFile(ConfigPath())
}

// LoadConfigFile loads config from path, filling unset fields with defaults.
func LoadConfigFile(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	// Apply defaults for missing fields
	defaults := DefaultConfig()
	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}
	if cfg.Completion.Endpoint == "" {
		cfg.Completion.Endpoint = defaults.Completion.Endpoint
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = defaults.Server.Listen
	}

	return &cfg, nil
}

// ValidateConfig checks configuration for potential issues and returns warnings.
func ValidateConfig(cfg *Config) []string {
	var warnings []string
	if cfg == nil {
		return warnings
	}
	u, err := url.Parse(ResolveCompletionEndpoint(cfg))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		warnings = append(warnings, "completion endpoint is not an absolute http(s) URL; every search will fail")
	}
	if cfg.Completion.Timeout < 0 {
		warnings = append(warnings, "completion timeout is negative and will be ignored")
	}
	return warnings
}

// ResolveCompletionEndpoint returns the completion endpoint URL.
// Priority: $MIRAGE_COMPLETION_ENDPOINT env > config value > DefaultEndpoint.
func ResolveCompletionEndpoint(cfg *Config) string {
	if endpoint := os.Getenv("MIRAGE_COMPLETION_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	if cfg != nil && cfg.Completion.Endpoint != "" {
		return cfg.Completion.Endpoint
	}
	return DefaultEndpoint
}

// ResolveListenAddr returns the daemon listen address.
// Priority: $MIRAGE_LISTEN_ADDR env > config value.
func ResolveListenAddr(cfg *Config) string {
	if addr := os.Getenv("MIRAGE_LISTEN_ADDR"); addr != "" {
		return addr
	}
	if cfg != nil {
		return cfg.Server.Listen
	}
	return ""
}
